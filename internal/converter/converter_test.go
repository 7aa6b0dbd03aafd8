package converter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/imagefile"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
	"github.com/joseph-ayodele/image-to-tex/internal/vision"
)

type stubGateway struct {
	response   string
	err        error
	lastPrompt string
	lastImage  []byte
	calls      int
}

func (s *stubGateway) Analyze(_ context.Context, imageBytes []byte, prompt string, _ bool) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastImage = imageBytes
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGateway) Configured() map[string]bool {
	return map[string]bool{"claude": true, "openai": false}
}

func (s *stubGateway) Primary() vision.ModelProvider { return vision.ProviderClaude }

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return path
}

func TestConvertExtractsAndValidates(t *testing.T) {
	gw := &stubGateway{response: "Here is the LaTeX code:\n```latex\n\\frac{a}{b}\n```"}
	c := New(gw, imagefile.DefaultLimits, nil)

	result, err := c.Convert(context.Background(), testImage(t), latex.Unknown, true)
	require.NoError(t, err)

	assert.Equal(t, `\frac{a}{b}`, result.LaTeXCode)
	assert.Equal(t, latex.Equation, result.ContentType)
	assert.Equal(t, gw.response, result.RawResponse)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.ValidationError)
	assert.Equal(t, "claude", result.Provider)
	assert.Equal(t, 1, gw.calls)
}

func TestConvertReportsInvalidLatexAsData(t *testing.T) {
	gw := &stubGateway{response: `\frac{a}{b`}
	c := New(gw, imagefile.DefaultLimits, nil)

	result, err := c.Convert(context.Background(), testImage(t), latex.Unknown, true)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.ValidationError, "Unbalanced braces")
	// best-effort LaTeX is still returned
	assert.Equal(t, `\frac{a}{b`, result.LaTeXCode)
}

func TestConvertValidationDisabled(t *testing.T) {
	gw := &stubGateway{response: `\frac{a}{b`}
	c := New(gw, imagefile.DefaultLimits, nil)
	c.SetValidateOutput(false)

	result, err := c.Convert(context.Background(), testImage(t), latex.Unknown, true)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.ValidationError)
}

func TestConvertDeclaredTypeTrusted(t *testing.T) {
	// response classifies as equation, but the declared type wins when
	// auto-detect is off
	gw := &stubGateway{response: `$x^2$`}
	c := New(gw, imagefile.DefaultLimits, nil)

	result, err := c.Convert(context.Background(), testImage(t), latex.Table, false)
	require.NoError(t, err)
	assert.Equal(t, latex.Table, result.ContentType)
	assert.Equal(t, prompts[latex.Table], gw.lastPrompt)
}

func TestConvertUsesGeneralPromptForUnknown(t *testing.T) {
	gw := &stubGateway{response: `$x$`}
	c := New(gw, imagefile.DefaultLimits, nil)

	_, err := c.Convert(context.Background(), testImage(t), latex.Unknown, true)
	require.NoError(t, err)
	assert.Equal(t, generalPrompt, gw.lastPrompt)
}

func TestConvertImageValidationFailure(t *testing.T) {
	gw := &stubGateway{response: "$x$"}
	c := New(gw, imagefile.DefaultLimits, nil)

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.png"), latex.Unknown, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConversion)
	assert.Equal(t, 0, gw.calls)
}

func TestConvertGatewayFailure(t *testing.T) {
	gw := &stubGateway{err: errors.New("both models failed")}
	c := New(gw, imagefile.DefaultLimits, nil)

	_, err := c.Convert(context.Background(), testImage(t), latex.Unknown, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConversion)
	assert.Contains(t, err.Error(), "vision model failed")
}

func TestConvertEquationWraps(t *testing.T) {
	gw := &stubGateway{response: "E = mc^2"}
	c := New(gw, imagefile.DefaultLimits, nil)

	got, err := c.ConvertEquation(context.Background(), testImage(t), true)
	require.NoError(t, err)
	assert.Equal(t, "$E = mc^2$", got)
	assert.Equal(t, prompts[latex.Equation], gw.lastPrompt)
}

func TestConvertTableWraps(t *testing.T) {
	gw := &stubGateway{response: `\begin{tabular}{cc} a & b \\ \end{tabular}`}
	c := New(gw, imagefile.DefaultLimits, nil)

	got, err := c.ConvertTable(context.Background(), testImage(t), "Results")
	require.NoError(t, err)
	assert.Contains(t, got, `\begin{table}[htbp]`)
	assert.Contains(t, got, `\caption{Results}`)
}

func TestConvertToDocumentWraps(t *testing.T) {
	gw := &stubGateway{response: `\section{Intro} Text.`}
	c := New(gw, imagefile.DefaultLimits, nil)

	got, err := c.ConvertToDocument(context.Background(), testImage(t), "T", "A")
	require.NoError(t, err)
	assert.Contains(t, got, `\documentclass{article}`)
	assert.Contains(t, got, `\title{T}`)
	assert.Contains(t, got, `\author{A}`)
	assert.Contains(t, got, `\end{document}`)
}

func TestConvertDownscalesOversizedImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 400, 100))))
	require.NoError(t, f.Close())

	gw := &stubGateway{response: "$x$"}
	c := New(gw, imagefile.DefaultLimits, nil)
	c.SetMaxDimension(200)

	_, err = c.Convert(context.Background(), path, latex.Unknown, true)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(gw.lastImage))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	// the original is untouched; the copy sits alongside it
	_, err = os.Stat(filepath.Join(dir, "wide_processed.png"))
	assert.NoError(t, err)
}

func TestNewFromConfigNoCredentials(t *testing.T) {
	cfg := common.LoadConfig()
	cfg.Vision.AnthropicAPIKey = ""
	cfg.Vision.OpenAIAPIKey = ""

	_, err := NewFromConfig(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoCredentials)
}
