package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/converter"
	"github.com/joseph-ayodele/image-to-tex/internal/export"
	"github.com/joseph-ayodele/image-to-tex/internal/history"
	"github.com/joseph-ayodele/image-to-tex/internal/imagefile"
	"github.com/joseph-ayodele/image-to-tex/internal/ingest"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
)

const usage = `usage: image-to-tex <command> [flags]

commands:
  convert  convert an image file to LaTeX
  info     show image metadata
  watch    watch directories and convert new images
  export   export conversion history to XLSX
  version  print version
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printError("%s", usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "version":
		fmt.Printf("image-to-tex %s\n", common.Version)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		printError("unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		printError("Error: %v\n", err)
		if errors.Is(err, common.ErrNoCredentials) {
			printError("Set ANTHROPIC_API_KEY or OPENAI_API_KEY in the environment or a .env file.\n")
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	// Logs go to stderr so stdout stays clean for LaTeX output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var (
		out        = fs.String("o", "", "output .tex file (default: stdout)")
		typ        = fs.String("t", "auto", "content type: auto|equation|table|diagram|document")
		inline     = fs.Bool("inline", false, "wrap equations as inline math")
		caption    = fs.String("caption", "", "table caption")
		title      = fs.String("title", "", "document title")
		author     = fs.String("author", "", "document author")
		noValidate = fs.Bool("no-validate", false, "skip structural validation of the output")
		verbose    = fs.Bool("v", false, "verbose logging")
	)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("convert requires exactly one image path")
	}
	imagePath := fs.Arg(0)

	logger := newLogger(*verbose)
	cfg := common.LoadConfig()

	conv, err := converter.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if *noValidate {
		conv.SetValidateOutput(false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var code string
	switch strings.ToLower(*typ) {
	case "equation":
		code, err = conv.ConvertEquation(ctx, imagePath, *inline)
	case "table":
		code, err = conv.ConvertTable(ctx, imagePath, *caption)
	case "document":
		code, err = conv.ConvertToDocument(ctx, imagePath, *title, *author)
	case "diagram":
		var result *converter.Result
		result, err = conv.Convert(ctx, imagePath, latex.Diagram, false)
		if result != nil {
			code = result.LaTeXCode
		}
	case "auto", "":
		var result *converter.Result
		result, err = conv.Convert(ctx, imagePath, latex.Unknown, true)
		if result != nil {
			code = result.LaTeXCode
			if !result.IsValid {
				printError("Warning: output failed validation: %s\n", result.ValidationError)
			}
		}
	default:
		return fmt.Errorf("unsupported content type %q", *typ)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(code)
		return nil
	}
	if err := os.WriteFile(*out, []byte(code+"\n"), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("info requires exactly one image path")
	}

	cfg := common.LoadConfig()
	meta, err := imagefile.Info(fs.Arg(0), imagefile.Limits{MaxSizeMB: cfg.Image.MaxSizeMB})
	if err != nil {
		return err
	}
	fmt.Printf("Path:   %s\n", meta.Path)
	fmt.Printf("Format: %s\n", meta.Format)
	fmt.Printf("Size:   %dx%d (%.2f MB)\n", meta.Width, meta.Height, meta.SizeMB())
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var (
		scan    = fs.Bool("scan", false, "convert images already present at startup")
		verbose = fs.Bool("v", false, "verbose logging")
	)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("watch requires at least one directory")
	}

	logger := newLogger(*verbose)
	cfg := common.LoadConfig()

	conv, err := converter.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := history.Open(ctx, cfg.History.DSN, logger)
	if err != nil {
		logger.Warn("history disabled", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       fs.Args(),
		InitialScan: *scan,
	}, logger)
	if err != nil {
		return err
	}
	go func() {
		for werr := range errCh {
			logger.Error("watch.error", "error", werr)
		}
	}()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", strings.Join(fs.Args(), ", "))
	ingest.NewProcessor(conv, store, logger).Run(ctx, evCh)
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		out   = fs.String("o", "conversions.xlsx", "output XLSX file")
		limit = fs.Int("limit", 0, "max rows to export (0 = all)")
	)
	_ = fs.Parse(args)

	logger := newLogger(false)
	cfg := common.LoadConfig()

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.History.DSN, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	data, err := export.NewService(store, logger).ExportConversionsXLSX(ctx, *limit)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}
