package cli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skeptic/internal/model"
)

// commonFlags are the overrides shared by commands that build a pipeline
type commonFlags struct {
	provider    string
	model       string
	httpTimeout time.Duration
	userAgent   string
	httpProxy   string
	httpsProxy  string
	insecureTLS bool
	noRobots    bool
	browser     bool
	noCache     bool
	noFooter    bool

	noCounter  bool
	noEntities bool
	noSource   bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	// AI flags
	flags.StringVar(&f.provider, "provider", "", "AI provider (gemini, openai, anthropic, ollama, none)")
	flags.StringVar(&f.model, "model", "", "AI model name")

	// HTTP flags
	flags.DurationVar(&f.httpTimeout, "http-timeout", 0, "timeout for each page fetch")
	flags.StringVar(&f.userAgent, "ua", "", "HTTP User-Agent")
	flags.StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.BoolVar(&f.insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	flags.BoolVar(&f.noRobots, "no-robots", false, "ignore robots.txt")
	flags.BoolVar(&f.browser, "browser", false, "enable headless Chrome extraction fallback")

	// Output flags
	flags.BoolVar(&f.noCache, "no-cache", false, "disable response cache")
	flags.BoolVar(&f.noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Analysis flags
	flags.BoolVar(&f.noCounter, "no-counter", false, "skip counter-narrative generation")
	flags.BoolVar(&f.noEntities, "no-entities", false, "skip entity analysis")
	flags.BoolVar(&f.noSource, "no-source-check", false, "skip source credibility lookup")
}

// apply copies flags the user set onto cfg
func (f *commonFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	changed := cmd.Flags().Changed

	if changed("provider") {
		cfg.LLM.Provider = f.provider
		cfg.LLM.APIKey = ""
		if !changed("model") {
			cfg.LLM.Model = ""
		}
	}
	if changed("model") {
		cfg.LLM.Model = f.model
	}
	if changed("http-timeout") {
		cfg.HTTP.Timeout = f.httpTimeout
	}
	if changed("ua") {
		cfg.HTTP.UserAgent = f.userAgent
	}
	if changed("http-proxy") {
		cfg.HTTP.HTTPProxy = f.httpProxy
	}
	if changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = f.httpsProxy
	}
	if changed("insecure") {
		cfg.HTTP.InsecureTLS = f.insecureTLS
	}
	if changed("no-robots") {
		cfg.HTTP.RespectRobots = !f.noRobots
	}
	if changed("browser") {
		cfg.Extraction.Browser = f.browser
	}
	if changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if changed("no-footer") {
		cfg.Output.IncludeFooter = !f.noFooter
	}
	if changed("no-counter") {
		cfg.Analysis.IncludeCounterNarrative = !f.noCounter
	}
	if changed("no-entities") {
		cfg.Analysis.IncludeEntityAnalysis = !f.noEntities
	}
	if changed("no-source-check") {
		cfg.Analysis.IncludeSourceCheck = !f.noSource
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

// buildConfig loads configuration and applies command flags
func (f *commonFlags) buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}
