package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/skeptic/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults: %v", err)
	}
	v.SetEnvPrefix("SKEPTIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := decodeConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.HTTP.Timeout != want.HTTP.Timeout {
		t.Errorf("expected timeout %v, got %v", want.HTTP.Timeout, cfg.HTTP.Timeout)
	}
	if cfg.LLM.Provider != want.LLM.Provider || cfg.LLM.Model != want.LLM.Model {
		t.Errorf("expected %s/%s, got %s/%s", want.LLM.Provider, want.LLM.Model, cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.Analysis != want.Analysis {
		t.Errorf("expected analysis %+v, got %+v", want.Analysis, cfg.Analysis)
	}
	if cfg.Cache.TTL != want.Cache.TTL {
		t.Errorf("expected cache ttl %v, got %v", want.Cache.TTL, cfg.Cache.TTL)
	}
}

func TestDecodeConfigEnvOverrides(t *testing.T) {
	t.Setenv("SKEPTIC_LLM_PROVIDER", "openai")
	t.Setenv("SKEPTIC_HTTP_TIMEOUT", "10s")
	t.Setenv("SKEPTIC_HTTP_HTTPS_PROXY", "http://proxy.internal:3128")
	t.Setenv("SKEPTIC_ANALYSIS_INCLUDE_COUNTER_NARRATIVE", "false")
	t.Setenv("SKEPTIC_CONCURRENCY_WORKERS", "9")

	cfg, err := decodeConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", cfg.LLM.Provider)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.HTTPSProxy != "http://proxy.internal:3128" {
		t.Errorf("expected https proxy from env, got %q", cfg.HTTP.HTTPSProxy)
	}
	if cfg.Analysis.IncludeCounterNarrative {
		t.Error("expected counter narrative disabled")
	}
	if !cfg.Analysis.IncludeEntityAnalysis {
		t.Error("expected entity analysis to keep its default")
	}
	if cfg.Concurrency.Workers != 9 {
		t.Errorf("expected 9 workers, got %d", cfg.Concurrency.Workers)
	}
}

func TestDecodeConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `llm:
  provider: ollama
  model: llama3
cache:
  ttl: 5m
rate_limiting:
  domains:
    - domain: www.reuters.com
      requests_per_second: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := newTestViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("expected ollama/llama3, got %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %v", cfg.Cache.TTL)
	}
	if len(cfg.RateLimiting.Domains) != 1 || cfg.RateLimiting.Domains[0].Domain != "www.reuters.com" ||
		cfg.RateLimiting.Domains[0].RequestsPerSecond != 0.5 {
		t.Errorf("unexpected domain rates: %+v", cfg.RateLimiting.Domains)
	}
	if cfg.RateLimiting.RequestsPerSecond != model.DefaultConfig().RateLimiting.RequestsPerSecond {
		t.Errorf("expected default rate to survive, got %v", cfg.RateLimiting.RequestsPerSecond)
	}
	if cfg.HTTP.UserAgent != model.DefaultConfig().HTTP.UserAgent {
		t.Errorf("expected default user agent, got %q", cfg.HTTP.UserAgent)
	}
}

func TestCommonFlagsApply(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var f commonFlags
	f.register(cmd)

	for name, value := range map[string]string{
		"provider":   "none",
		"no-counter": "true",
		"no-cache":   "true",
		"insecure":   "true",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	cfg := model.DefaultConfig()
	f.apply(cmd, cfg)

	if cfg.LLM.Provider != "none" || cfg.LLM.Model != "" {
		t.Errorf("expected provider none with default model, got %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.Analysis.IncludeCounterNarrative {
		t.Error("expected counter narrative disabled")
	}
	if !cfg.Analysis.IncludeSourceCheck {
		t.Error("expected source check unchanged")
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled")
	}
	if !cfg.HTTP.InsecureTLS {
		t.Error("expected insecure TLS")
	}
	if cfg.HTTP.UserAgent != model.DefaultConfig().HTTP.UserAgent {
		t.Error("unset flag should not change user agent")
	}
}

func TestWriteDefaultConfigRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDefaultConfig(&buf); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# skeptic configuration file") {
		t.Errorf("missing header: %q", buf.String()[:40])
	}

	var cfg model.Config
	if err := yaml.Unmarshal(buf.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal written config: %v", err)
	}
	want := model.DefaultConfig()
	if cfg.HTTP.Timeout != want.HTTP.Timeout || cfg.LLM.Provider != want.LLM.Provider || cfg.Server.Addr != want.Server.Addr {
		t.Errorf("written config does not match defaults: %+v", cfg)
	}
}

func TestInitConfigFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := initConfigFile(path); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := initConfigFile(path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/news/story", "example.com-news-story"},
		{"http://example.org/a?b=c&d=e", "example.org-a-b-c-d-e"},
		{"https://", "article"},
		{"https://example.com/" + strings.Repeat("x", 200), ("example.com-" + strings.Repeat("x", 200))[:100]},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	if got := newLogger(model.OutputConfig{LogLevel: "warn"}).GetLevel().String(); got != "warn" {
		t.Errorf("expected warn, got %s", got)
	}
	if got := newLogger(model.OutputConfig{LogLevel: "bogus"}).GetLevel().String(); got != "info" {
		t.Errorf("expected info fallback, got %s", got)
	}
	if got := newLogger(model.OutputConfig{LogLevel: "error", Verbose: true}).GetLevel().String(); got != "debug" {
		t.Errorf("expected debug when verbose, got %s", got)
	}
}

func TestCommented(t *testing.T) {
	got := commented("first\n  indented\n")
	want := "# first\n#   indented\n#\n"
	if got != want {
		t.Errorf("commented() = %q, want %q", got, want)
	}
}
