package llm

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/skeptic/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{"", "", "", false},
		{"none", "", "", false},
		{"gemini", "k", "gemini", false},
		{"Google", "k", "gemini", false},
		{"openai", "k", "openai", false},
		{"claude", "k", "anthropic", false},
		{"ollama", "", "ollama", false},
		{"openai", "", "", true},
		{"mystery", "k", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.apiKey, func(t *testing.T) {
			p, err := NewProvider(context.Background(), Config{Provider: tt.provider, APIKey: tt.apiKey})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantName == "" {
				if p != nil {
					t.Errorf("Expected nil provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Errorf("Expected provider %s, got %v", tt.wantName, p)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	cfg := ConfigFromModel(model.LLMConfig{
		Provider:        "anthropic",
		Model:           "claude-x",
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		MaxContentChars: 100,
	}, model.HTTPConfig{HTTPSProxy: "http://proxy:3128"})

	if cfg.APIKey != "env-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.APIKey)
	}
	if cfg.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("Expected proxy to carry over, got %q", cfg.HTTPSProxy)
	}
	if cfg.MaxRetries != 2 || cfg.MaxContentChars != 100 || cfg.Timeout != 10*time.Second {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestAPIKeyFromEnv_GeminiFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	if got := APIKeyFromEnv("gemini"); got != "google-key" {
		t.Errorf("Expected GOOGLE_API_KEY fallback, got %q", got)
	}
	if got := APIKeyFromEnv("ollama"); got != "" {
		t.Errorf("Expected no key for ollama, got %q", got)
	}
}
