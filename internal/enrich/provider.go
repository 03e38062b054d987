package enrich

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ProviderConfig selects and configures a model backend.
type ProviderConfig struct {
	Provider        string // "anthropic" or "openai"
	Timeout         time.Duration
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIURL       string
}

// NewProvider builds the configured backend. It returns ErrNoProvider when the
// selected provider has no API key.
func NewProvider(cfg ProviderConfig, opts ...ClientOption) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = anthropicProviderName
		if strings.TrimSpace(cfg.AnthropicAPIKey) == "" && strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			name = openAIProviderName
		}
	}

	switch name {
	case anthropicProviderName:
		if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrNoProvider)
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicURL,
			Timeout: cfg.Timeout,
		}, opts...), nil
	case openAIProviderName:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNoProvider)
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIURL,
			Timeout: cfg.Timeout,
		}, opts...), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want anthropic or openai)", cfg.Provider)
	}
}

var extensionMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MediaType guesses an image's media type from its content, then its file
// extension, defaulting to image/jpeg.
func MediaType(path string, data []byte) string {
	if len(data) > 0 {
		if detected := http.DetectContentType(data); strings.HasPrefix(detected, "image/") {
			return detected
		}
	}
	if mt, ok := extensionMediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "image/jpeg"
}
