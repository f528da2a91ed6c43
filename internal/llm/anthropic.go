package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	defaultAnthropicURL   = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
)

// AnthropicProvider calls the Anthropic Messages API
type AnthropicProvider struct {
	messages jsonEndpoint
	config   Config
}

type anthropicMessages struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicReply struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewAnthropicProvider creates an Anthropic provider. An API key is required.
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic API key is required (ANTHROPIC_API_KEY)")
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{
		messages: jsonEndpoint{
			client: newHTTPClient(config, defaultHostedTimeout),
			url:    baseURL + "/v1/messages",
			header: header,
			detail: anthropicErrorDetail,
		},
		config: config,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a ten-token message
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	ping := anthropicMessages{
		Model:     p.config.model(GenerateRequest{}, defaultAnthropicModel),
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 10,
	}
	var reply anthropicReply
	return p.messages.post(ctx, ping, &reply) == nil
}

// Generate sends one user message. The API has no JSON mode; req.JSON is
// carried by the prompt alone.
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body := anthropicMessages{
		Model:       p.config.model(req, defaultAnthropicModel),
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   p.config.maxTokens(req),
		Temperature: req.Temperature,
	}

	var reply anthropicReply
	if err := p.messages.post(ctx, body, &reply); err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &GenerateResponse{
		Text:       text.String(),
		Model:      reply.Model,
		TokensUsed: reply.Usage.InputTokens + reply.Usage.OutputTokens,
	}, nil
}

func anthropicErrorDetail(body []byte) string {
	var reply struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &reply); err != nil || reply.Error.Message == "" {
		return ""
	}
	return reply.Error.Type + ": " + reply.Error.Message
}
