package enrich

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	openAIProviderName = "openai"
)

// OpenAIConfig configures the OpenAI chat completions client.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIClient reads labels through OpenAI vision models. Drink-window
// research runs without web search.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	hasKey    bool
	retry     retryPolicy
}

// NewOpenAIClient creates a client; empty config fields take defaults.
func NewOpenAIClient(cfg OpenAIConfig, opts ...ClientOption) *OpenAIClient {
	o := defaultClientOptions(cfg.Timeout)
	for _, opt := range opts {
		opt(&o)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	config := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		config.BaseURL = base
	}
	config.HTTPClient = o.httpClient

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: maxTokens,
		hasKey:    apiKey != "",
		retry:     o.retry,
	}
}

// Name identifies the provider.
func (c *OpenAIClient) Name() string {
	return openAIProviderName
}

// ReadLabel sends the label image as a data URL with the extraction prompt.
func (c *OpenAIClient) ReadLabel(ctx context.Context, image []byte, mediaType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("openai read label: image required")
	}
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image)
	req := openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
				},
				{Type: openai.ChatMessagePartTypeText, Text: labelPrompt()},
			},
		}},
	}
	return c.retry.do(ctx, "openai read label", func() (string, error) {
		return c.complete(ctx, req)
	})
}

// ResearchWindow asks for the drink window from the model's own knowledge.
func (c *OpenAIClient) ResearchWindow(ctx context.Context, q WindowQuery) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: windowPrompt(q)},
		},
	}
	return c.retry.do(ctx, "openai research window", func() (string, error) {
		return c.complete(ctx, req)
	})
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if !c.hasKey {
		return "", errors.New("api key required")
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w (no choices)", errEmptyReply)
	}
	var texts []string
	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("%w (finish_reason=%q)", errEmptyReply, resp.Choices[0].FinishReason)
	}
	return strings.Join(texts, "\n"), nil
}
