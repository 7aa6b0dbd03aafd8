// Package vision routes image-analysis requests to vendor clients with a
// primary/fallback policy: at most one call to the primary and, on failure,
// at most one call to a distinct fallback. No backoff, no retry loop.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/imagefile"
)

// Gateway dispatches to configured providers. Clients are built once at
// construction and reused for the gateway's lifetime.
type Gateway struct {
	providers map[ModelProvider]Provider
	primary   ModelProvider
	fallback  ModelProvider
	logger    *slog.Logger
}

// New builds a gateway over pre-constructed providers. Fails with
// common.ErrNoCredentials when none are given.
func New(primary, fallback ModelProvider, providers []Provider, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or OPENAI_API_KEY", common.ErrNoCredentials)
	}

	byName := make(map[ModelProvider]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &Gateway{
		providers: byName,
		primary:   primary,
		fallback:  fallback,
		logger:    logger,
	}, nil
}

// Configured reports which providers have an active client, keyed by name.
func (g *Gateway) Configured() map[string]bool {
	out := map[string]bool{
		string(ProviderClaude): false,
		string(ProviderOpenAI): false,
	}
	for name := range g.providers {
		out[string(name)] = true
	}
	return out
}

// Primary returns the configured primary provider selector.
func (g *Gateway) Primary() ModelProvider { return g.primary }

// Analyze encodes the image and runs the primary/fallback policy. The
// returned error wraps common.ErrVisionGateway and, when both attempts ran,
// describes both failures.
func (g *Gateway) Analyze(ctx context.Context, imageBytes []byte, prompt string, allowFallback bool) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	req := Request{
		ImageBase64: base64.StdEncoding.EncodeToString(imageBytes),
		MediaType:   imagefile.DetectMediaType(imageBytes),
		Prompt:      prompt,
	}

	g.logger.Info("vision.analyze.start",
		"req_id", rid,
		"primary", g.primary,
		"fallback", g.fallback,
		"allow_fallback", allowFallback,
		"media_type", req.MediaType,
		"image_bytes", len(imageBytes),
	)

	text, primaryErr := g.call(ctx, g.primary, req)
	if primaryErr == nil {
		g.logger.Info("vision.analyze.ok",
			"req_id", rid, "provider", g.primary,
			"elapsed_ms", time.Since(start).Milliseconds())
		return text, nil
	}

	g.logger.Warn("vision.analyze.primary_failed",
		"req_id", rid, "provider", g.primary, "error", primaryErr)

	if !allowFallback || g.fallback == ProviderNone || g.fallback == g.primary {
		return "", fmt.Errorf("%w: primary model (%s) failed and no fallback configured: %v",
			common.ErrVisionGateway, g.primary, primaryErr)
	}

	g.logger.Info("vision.analyze.fallback", "req_id", rid, "provider", g.fallback)

	text, fallbackErr := g.call(ctx, g.fallback, req)
	if fallbackErr == nil {
		g.logger.Info("vision.analyze.ok",
			"req_id", rid, "provider", g.fallback, "fellback", true,
			"elapsed_ms", time.Since(start).Milliseconds())
		return text, nil
	}

	g.logger.Error("vision.analyze.exhausted",
		"req_id", rid,
		"primary_error", primaryErr,
		"fallback_error", fallbackErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return "", fmt.Errorf("%w: both models failed: primary (%s): %v; fallback (%s): %v",
		common.ErrVisionGateway, g.primary, primaryErr, g.fallback, fallbackErr)
}

func (g *Gateway) call(ctx context.Context, name ModelProvider, req Request) (string, error) {
	p, ok := g.providers[name]
	if !ok {
		return "", fmt.Errorf("provider %s is not configured", name)
	}
	return p.Analyze(ctx, req)
}
