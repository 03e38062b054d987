package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIVersion     = "2023-06-01"
	defaultAnthropicURL     = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultMaxTokens        = 1000
	webSearchToolType       = "web_search_20250305"
	webSearchToolName       = "web_search"
	anthropicProviderName   = "anthropic"
	maxErrorBodySnippetSize = 512
)

var errEmptyReply = errors.New("empty reply")

// AnthropicConfig configures the Anthropic Messages API client.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	cfg        AnthropicConfig
	httpClient *http.Client
	retry      retryPolicy
}

// NewAnthropicClient creates a client; empty config fields take defaults.
func NewAnthropicClient(cfg AnthropicConfig, opts ...ClientOption) *AnthropicClient {
	o := defaultClientOptions(cfg.Timeout)
	for _, opt := range opts {
		opt(&o)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Model = strings.TrimSpace(cfg.Model); cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.BaseURL = strings.TrimSpace(cfg.BaseURL); cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &AnthropicClient{cfg: cfg, httpClient: o.httpClient, retry: o.retry}
}

// Name identifies the provider.
func (c *AnthropicClient) Name() string {
	return anthropicProviderName
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicTool struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ReadLabel sends the label image with the extraction prompt.
func (c *AnthropicClient) ReadLabel(ctx context.Context, image []byte, mediaType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("anthropic read label: image required")
	}
	req := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicBlock{
				{
					Type: "image",
					Source: &anthropicSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: labelPrompt()},
			},
		}},
	}
	return c.retry.do(ctx, "anthropic read label", func() (string, error) {
		return c.send(ctx, req)
	})
}

// ResearchWindow asks for the drink window with web search enabled.
func (c *AnthropicClient) ResearchWindow(ctx context.Context, q WindowQuery) (string, error) {
	req := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Tools:     []anthropicTool{{Type: webSearchToolType, Name: webSearchToolName}},
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicBlock{{Type: "text", Text: windowPrompt(q)}},
		}},
	}
	return c.retry.do(ctx, "anthropic research window", func() (string, error) {
		return c.send(ctx, req)
	})
}

func (c *AnthropicClient) send(ctx context.Context, payload anthropicRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("api key required")
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBodySnippetSize {
			snippet = snippet[:maxErrorBodySnippetSize]
		}
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       snippet,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("JSON decode error: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(result.Error.Message))
	}

	var texts []string
	for _, block := range result.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			texts = append(texts, block.Text)
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("%w (stop_reason=%q)", errEmptyReply, result.StopReason)
	}
	return strings.Join(texts, "\n"), nil
}
