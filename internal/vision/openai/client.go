// Package openai implements GPT-4 Vision chat/completions as a
// vision.Provider.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/image-to-tex/internal/vision"
)

// Config for the OpenAI client.
type Config struct {
	APIKey    string
	BaseURL   string        // default https://api.openai.com/v1
	Model     string        // e.g. "gpt-4-vision-preview"
	MaxTokens int           // default 4096
	Timeout   time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4-vision-preview"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

func (c *Client) Name() vision.ModelProvider { return vision.ProviderOpenAI }

// Analyze sends the image as a data URL through chat/completions and returns
// the first choice's message content.
func (c *Client) Analyze(ctx context.Context, req vision.Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}

	c.log.Info("openai.analyze.start", "model", c.cfg.Model, "media_type", req.MediaType)

	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MediaType, req.ImageBase64)
	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "text",
						"text": req.Prompt,
					},
					{
						"type":      "image_url",
						"image_url": map[string]any{"url": dataURL},
					},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	raw, status, err := vision.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		return "", fmt.Errorf("openai http error: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("openai status %d: %s", status, string(raw))
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
