// Package insight wraps the LLM vendors used for portfolio commentary behind a
// single Provider interface.
package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider.
var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-5",
}

const (
	requestTimeout  = 2 * time.Minute
	maxOutputTokens = 4096
	temperature     = 0.2
)

// ErrMissingAPIKey is returned by NewProvider when no key is configured.
var ErrMissingAPIKey = errors.New("api key required")

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the vendor endpoint, e.g. for proxies.
	BaseURL    string
	HTTPClient *http.Client
}

// Prompt is a system + user message pair.
type Prompt struct {
	System string
	User   string
}

// Completion is the text a provider returned.
type Completion struct {
	Model   string
	Content string
}

// Provider generates a completion for a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// NewProvider validates cfg and returns the matching provider.
func NewProvider(cfg Config) (Provider, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	fallback, ok := defaultModels[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q (want one of %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = fallback
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	}

	switch cfg.Provider {
	case ProviderGemini:
		return &geminiProvider{cfg: cfg}, nil
	case ProviderOpenAI:
		return newOpenAIProvider(cfg), nil
	default:
		return newAnthropicProvider(cfg), nil
	}
}

func emptyResponse(provider string) error {
	return fmt.Errorf("%s: response content is empty", provider)
}
