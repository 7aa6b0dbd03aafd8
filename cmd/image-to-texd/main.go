package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/converter"
	"github.com/joseph-ayodele/image-to-tex/internal/history"
	"github.com/joseph-ayodele/image-to-tex/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv, err := converter.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize converter", "error", err)
		os.Exit(1)
	}

	store, err := history.Open(ctx, cfg.History.DSN, logger)
	if err != nil {
		logger.Warn("history disabled", "dsn", cfg.History.DSN, "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	svc := server.NewService(conv, store, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http.serving", "addr", cfg.Server.Addr, "version", common.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	fmt.Println("stopped.")
}
