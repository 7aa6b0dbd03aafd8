// Package anthropic implements the Claude messages API as a vision.Provider.
package anthropic

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

const apiVersion = "2023-06-01"

// Config for the Anthropic client.
type Config struct {
	APIKey    string
	BaseURL   string        // default https://api.anthropic.com
	Model     string        // e.g. "claude-sonnet-4-5-20250929"
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
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
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

func (c *Client) Name() vision.ModelProvider { return vision.ProviderClaude }

// Analyze sends one image plus prompt through the messages endpoint and
// returns the first text block of the completion.
func (c *Client) Analyze(ctx context.Context, req vision.Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("anthropic api key not configured")
	}

	c.log.Info("anthropic.analyze.start", "model", c.cfg.Model, "media_type", req.MediaType)

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image",
						"source": map[string]any{
							"type":       "base64",
							"media_type": req.MediaType,
							"data":       req.ImageBase64,
						},
					},
					{
						"type": "text",
						"text": req.Prompt,
					},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}

	raw, status, err := vision.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		return "", fmt.Errorf("anthropic http error: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("anthropic status %d: %s", status, string(raw))
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}
