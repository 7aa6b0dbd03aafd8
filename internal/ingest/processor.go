package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/image-to-tex/internal/converter"
	"github.com/joseph-ayodele/image-to-tex/internal/history"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
)

// Processor converts files emitted by the watcher and writes the resulting
// LaTeX alongside each image as <stem>.tex. Failures are logged and the loop
// keeps going; a watch run never stops on a single bad file.
type Processor struct {
	conv   *converter.Converter
	store  history.Store // optional
	logger *slog.Logger
}

func NewProcessor(conv *converter.Converter, store history.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{conv: conv, store: store, logger: logger}
}

// Run consumes paths until the channel closes or ctx is done.
func (p *Processor) Run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			p.processOne(ctx, path)
		}
	}
}

func (p *Processor) processOne(ctx context.Context, path string) {
	start := time.Now()
	p.logger.Info("ingest.convert.start", "path", path)

	result, err := p.conv.Convert(ctx, path, latex.Unknown, true)
	if err != nil {
		p.logger.Error("ingest.convert.failed", "path", path, "error", err)
		return
	}

	outPath := texPath(path)
	if err := os.WriteFile(outPath, []byte(result.LaTeXCode+"\n"), 0o644); err != nil {
		p.logger.Error("ingest.write.failed", "path", outPath, "error", err)
		return
	}

	if p.store != nil {
		rec := history.Record{
			ID:              result.ID,
			ImagePath:       path,
			ContentType:     string(result.ContentType),
			LaTeXCode:       result.LaTeXCode,
			RawResponse:     result.RawResponse,
			IsValid:         result.IsValid,
			ValidationError: result.ValidationError,
			Provider:        result.Provider,
			DurationMS:      result.Elapsed.Milliseconds(),
		}
		if err := p.store.Save(ctx, rec); err != nil {
			p.logger.Warn("ingest.history.save_failed", "path", path, "error", err)
		}
	}

	p.logger.Info("ingest.convert.ok",
		"path", path,
		"output", outPath,
		"content_type", result.ContentType,
		"is_valid", result.IsValid,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

func texPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".tex"
}
