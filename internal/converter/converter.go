// Package converter orchestrates one image-to-LaTeX conversion: image gate,
// vision call, extraction, classification, structural validation.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/imagefile"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
	"github.com/joseph-ayodele/image-to-tex/internal/vision"
	"github.com/joseph-ayodele/image-to-tex/internal/vision/anthropic"
	"github.com/joseph-ayodele/image-to-tex/internal/vision/openai"
)

// VisionAnalyzer is the gateway contract the orchestrator depends on.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, prompt string, allowFallback bool) (string, error)
	Configured() map[string]bool
	Primary() vision.ModelProvider
}

// Result bundles the outcome of a single conversion. A structurally invalid
// result is still returned with best-effort LaTeX; invalidity is reported as
// data, never as an error.
type Result struct {
	ID              uuid.UUID
	ImagePath       string
	LaTeXCode       string
	ContentType     latex.ContentType
	RawResponse     string
	IsValid         bool
	ValidationError string
	Provider        string
	Elapsed         time.Duration
}

// Converter is safe for concurrent use; it holds no per-call state.
type Converter struct {
	gateway        VisionAnalyzer
	limits         imagefile.Limits
	maxDimension   int // longest edge sent to providers; 0 disables downscaling
	validateOutput bool
	logger         *slog.Logger
}

// New builds a converter over an existing gateway. Output validation is on
// by default; SetValidateOutput(false) disables it.
func New(gateway VisionAnalyzer, limits imagefile.Limits, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxSizeMB <= 0 {
		limits = imagefile.DefaultLimits
	}
	return &Converter{
		gateway:        gateway,
		limits:         limits,
		validateOutput: true,
		logger:         logger,
	}
}

// NewFromConfig wires provider clients from configuration, activating one
// client per present credential, and builds the converter on top.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) (*Converter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := vision.ParseModelProvider(cfg.Vision.PrimaryModel)
	if err != nil {
		return nil, err
	}
	fallback, err := vision.ParseModelProvider(cfg.Vision.FallbackModel)
	if err != nil {
		return nil, err
	}

	var providers []vision.Provider
	if cfg.Vision.AnthropicAPIKey != "" {
		providers = append(providers, anthropic.NewClient(anthropic.Config{
			APIKey:  cfg.Vision.AnthropicAPIKey,
			Model:   cfg.Vision.ClaudeModel,
			Timeout: cfg.Vision.Timeout,
		}, logger))
	}
	if cfg.Vision.OpenAIAPIKey != "" {
		providers = append(providers, openai.NewClient(openai.Config{
			APIKey:  cfg.Vision.OpenAIAPIKey,
			Model:   cfg.Vision.OpenAIModel,
			Timeout: cfg.Vision.Timeout,
		}, logger))
	}

	gateway, err := vision.New(primary, fallback, providers, logger)
	if err != nil {
		return nil, err
	}

	conv := New(gateway, imagefile.Limits{MaxSizeMB: cfg.Image.MaxSizeMB}, logger)
	conv.maxDimension = cfg.Image.MaxDimension
	return conv, nil
}

// SetMaxDimension caps the longest edge of images sent to providers; larger
// inputs are downscaled to a sibling copy first. Zero disables downscaling.
func (c *Converter) SetMaxDimension(d int) { c.maxDimension = d }

// SetValidateOutput toggles structural validation of extracted LaTeX.
func (c *Converter) SetValidateOutput(v bool) { c.validateOutput = v }

// Configured reports provider availability, for health checks.
func (c *Converter) Configured() map[string]bool { return c.gateway.Configured() }

// Convert runs the full pipeline for one image. contentType may be
// latex.Unknown to request auto-detection; when autoDetect is false and a
// known type was supplied, the declared type is trusted as-is.
func (c *Converter) Convert(ctx context.Context, imagePath string, contentType latex.ContentType, autoDetect bool) (*Result, error) {
	rid := uuid.New()
	start := time.Now()

	if err := imagefile.Validate(imagePath, c.limits); err != nil {
		return nil, fmt.Errorf("%w: image validation failed: %w", common.ErrConversion, err)
	}

	prompt := promptFor(contentType)
	if contentType != latex.Unknown && contentType != "" {
		c.logger.Info("convert.prompt.typed", "req_id", rid, "content_type", contentType)
	} else {
		c.logger.Info("convert.prompt.general", "req_id", rid)
	}

	sendPath := imagePath
	if c.maxDimension > 0 {
		processed, perr := imagefile.Preprocess(imagePath, c.maxDimension)
		switch {
		case perr != nil:
			// Oversized originals still go out as-is; providers reject them
			// with a clearer message than we could synthesize here.
			c.logger.Warn("convert.preprocess.failed", "req_id", rid, "error", perr)
		case processed != imagePath:
			c.logger.Info("convert.preprocess.downscaled", "req_id", rid, "path", processed)
			sendPath = processed
		}
	}

	imageBytes, err := os.ReadFile(sendPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", common.ErrConversion, err)
	}

	rawResponse, err := c.gateway.Analyze(ctx, imageBytes, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("%w: vision model failed: %w", common.ErrConversion, err)
	}
	c.logger.Info("convert.response.received", "req_id", rid, "chars", len(rawResponse))

	latexCode := latex.ExtractCode(rawResponse)

	detected := contentType
	if autoDetect || contentType == latex.Unknown || contentType == "" {
		detected = latex.DetectContentType(latexCode)
		c.logger.Info("convert.type.detected", "req_id", rid, "content_type", detected)
	}

	isValid := true
	validationError := ""
	if c.validateOutput {
		isValid, validationError = latex.Validate(latexCode)
		if !isValid {
			c.logger.Warn("convert.validation.failed", "req_id", rid, "error", validationError)
		}
	}

	return &Result{
		ID:              rid,
		ImagePath:       imagePath,
		LaTeXCode:       latexCode,
		ContentType:     detected,
		RawResponse:     rawResponse,
		IsValid:         isValid,
		ValidationError: validationError,
		Provider:        string(c.gateway.Primary()),
		Elapsed:         time.Since(start),
	}, nil
}

// ConvertEquation converts and wraps the result as inline or display math.
func (c *Converter) ConvertEquation(ctx context.Context, imagePath string, inline bool) (string, error) {
	result, err := c.Convert(ctx, imagePath, latex.Equation, true)
	if err != nil {
		return "", err
	}
	return latex.WrapEquation(result.LaTeXCode, inline), nil
}

// ConvertTable converts and wraps the result in a table environment.
func (c *Converter) ConvertTable(ctx context.Context, imagePath string, caption string) (string, error) {
	result, err := c.Convert(ctx, imagePath, latex.Table, true)
	if err != nil {
		return "", err
	}
	return latex.WrapTable(result.LaTeXCode, caption), nil
}

// ConvertToDocument converts and wraps the result as a complete document.
func (c *Converter) ConvertToDocument(ctx context.Context, imagePath string, title, author string) (string, error) {
	result, err := c.Convert(ctx, imagePath, latex.Document, true)
	if err != nil {
		return "", err
	}
	return latex.CreateFullDocument(result.LaTeXCode, title, author, "article"), nil
}
