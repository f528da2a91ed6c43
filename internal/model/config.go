package model

import "time"

// Config holds the full skeptic configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Analysis     AnalysisOptions    `yaml:"analysis" mapstructure:"analysis"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ExtractionConfig controls the strategy chain
type ExtractionConfig struct {
	StrategyTimeout time.Duration `yaml:"strategy_timeout" mapstructure:"strategy_timeout"`
	Browser         bool          `yaml:"browser" mapstructure:"browser"` // Enable headless Chrome fallback
	BrowserTimeout  time.Duration `yaml:"browser_timeout" mapstructure:"browser_timeout"`
	Disabled        []string      `yaml:"disabled,omitempty" mapstructure:"disabled"` // Strategy names to skip
	Enrich          bool          `yaml:"enrich" mapstructure:"enrich"`               // Fill missing title/author from page metadata
}

// LLMConfig selects and tunes the AI analysis provider
type LLMConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model           string        `yaml:"model" mapstructure:"model"`
	APIKey          string        `yaml:"-" mapstructure:"api_key"` // From env only
	BaseURL         string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens       int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float32       `yaml:"temperature" mapstructure:"temperature"`
	MaxRetries      int           `yaml:"max_retries" mapstructure:"max_retries"`
	MaxContentChars int           `yaml:"max_content_chars" mapstructure:"max_content_chars"`
}

// CacheConfig controls the in-memory response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-domain request pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Domains overrides the pace for individual hosts
	Domains []DomainRate `yaml:"domains,omitempty" mapstructure:"domains"`
}

// DomainRate paces one host. Viper splits map keys on dots, so hosts are
// listed rather than keyed.
type DomainRate struct {
	Domain            string  `yaml:"domain" mapstructure:"domain"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size,omitempty" mapstructure:"burst_size"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr    string `yaml:"addr" mapstructure:"addr"`
	Metrics bool   `yaml:"metrics" mapstructure:"metrics"`
}

// OutputConfig controls reporting and logging
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	LogLevel      string `yaml:"log_level" mapstructure:"log_level"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Mozilla/5.0 (compatible; Skeptic/0.1; +https://github.com/ppiankov/skeptic)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Extraction: ExtractionConfig{
			StrategyTimeout: 20 * time.Second,
			Browser:         false,
			BrowserTimeout:  45 * time.Second,
			Enrich:          true,
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			Timeout:         90 * time.Second,
			MaxTokens:       8192,
			Temperature:     0.1,
			MaxRetries:      3,
			MaxContentChars: 50000,
		},
		Analysis: DefaultAnalysisOptions(),
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Server: ServerConfig{
			Addr:    ":8000",
			Metrics: true,
		},
		Output: OutputConfig{
			LogLevel:      "info",
			IncludeFooter: true,
		},
	}
}
