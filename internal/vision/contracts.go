package vision

import (
	"context"
	"fmt"
	"strings"
)

// ModelProvider identifies a vision model vendor.
type ModelProvider string

const (
	ProviderClaude ModelProvider = "claude"
	ProviderOpenAI ModelProvider = "openai"
	ProviderNone   ModelProvider = "none"
)

// ParseModelProvider maps a configuration value to a ModelProvider.
func ParseModelProvider(s string) (ModelProvider, error) {
	switch ModelProvider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderClaude:
		return ProviderClaude, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderNone, "":
		return ProviderNone, nil
	default:
		return ProviderNone, fmt.Errorf("unknown model provider: %q", s)
	}
}

// Request carries one encoded image plus the instruction prompt.
type Request struct {
	ImageBase64 string
	MediaType   string
	Prompt      string
}

// Provider is the single-call contract every vendor client satisfies.
type Provider interface {
	Name() ModelProvider
	Analyze(ctx context.Context, req Request) (string, error)
}
