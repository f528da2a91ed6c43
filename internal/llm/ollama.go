package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultOllamaURL = "http://localhost:11434"

	// Local models can take minutes on a long article
	ollamaTimeout = 180 * time.Second
)

// OllamaProvider runs prompts against a local Ollama server
type OllamaProvider struct {
	baseURL  string
	generate jsonEndpoint
	config   Config
}

type ollamaGenerate struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaReply struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	// Only set on the final chunk
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

// NewOllamaProvider creates an Ollama provider; BaseURL defaults to the
// local daemon
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	return &OllamaProvider{
		baseURL: baseURL,
		generate: jsonEndpoint{
			client: newHTTPClient(config, ollamaTimeout),
			url:    baseURL + "/api/generate",
			detail: func(body []byte) string {
				var reply struct {
					Error string `json:"error"`
				}
				_ = json.Unmarshal(body, &reply)
				return reply.Error
			},
		},
		config: config,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that the server lists its models
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	return reachable(ctx, p.generate.client, p.baseURL+"/api/tags")
}

// Generate runs a single non-streaming completion. A JSON request sets
// the server's json format.
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.config.model(req, "")
	if model == "" {
		return nil, errors.New("ollama needs a model name, e.g. llama3.1:8b")
	}

	body := ollamaGenerate{
		Model:  model,
		Prompt: req.Prompt,
		System: req.System,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  p.config.maxTokens(req),
		},
	}
	if req.JSON {
		body.Format = "json"
	}

	var reply ollamaReply
	if err := p.generate.post(ctx, body, &reply); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	tokens := reply.PromptEvalCount + reply.EvalCount
	if tokens == 0 {
		// roughly four characters per token
		tokens = (len(req.Prompt) + len(reply.Response)) / 4
	}

	return &GenerateResponse{
		Text:       reply.Response,
		Model:      reply.Model,
		TokensUsed: tokens,
	}, nil
}
