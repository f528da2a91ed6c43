package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/skeptic/internal/model"
)

// defaultHostedTimeout applies to hosted APIs when no timeout is configured
const defaultHostedTimeout = 90 * time.Second

// NewProvider creates a provider from configuration. An empty or "none"
// provider disables AI analysis and returns nil, nil.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "gemini", "google":
		return NewGeminiProvider(ctx, config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into provider config.
// Proxy settings are shared with the page fetcher.
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	config := Config{
		Provider:        llmConfig.Provider,
		Model:           llmConfig.Model,
		APIKey:          llmConfig.APIKey,
		BaseURL:         llmConfig.BaseURL,
		Timeout:         llmConfig.Timeout,
		MaxTokens:       llmConfig.MaxTokens,
		Temperature:     llmConfig.Temperature,
		MaxRetries:      llmConfig.MaxRetries,
		MaxContentChars: llmConfig.MaxContentChars,
		HTTPProxy:       httpConfig.HTTPProxy,
		HTTPSProxy:      httpConfig.HTTPSProxy,
		NoProxy:         httpConfig.NoProxy,
	}
	if config.APIKey == "" {
		config.APIKey = APIKeyFromEnv(config.Provider)
	}
	return config
}

// APIKeyFromEnv returns the conventional API key variable for a provider
func APIKeyFromEnv(provider string) string {
	var names []string
	switch strings.ToLower(provider) {
	case "gemini", "google":
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "openai":
		names = []string{"OPENAI_API_KEY"}
	case "anthropic", "claude":
		names = []string{"ANTHROPIC_API_KEY"}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
