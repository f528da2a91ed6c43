package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skeptic/internal/pipeline"
	"github.com/ppiankov/skeptic/internal/server"
	"github.com/ppiankov/skeptic/internal/validate"
)

// providerCheckTimeout bounds the AI provider check at startup
const providerCheckTimeout = 15 * time.Second

var (
	serveFlags commonFlags
	serveAddr  string
	noMetrics  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes article analysis over HTTP:

  POST /analyze        {"url": "..."} -> Markdown report
  POST /analyze-full   URL plus analysis options -> full JSON response
  GET  /analyze/{url}  Markdown report for a URL
  GET  /report/{url}   report as text/markdown
  GET  /test/{url}     URL accessibility diagnostics
  GET  /health         service health
  GET  /metrics        Prometheus metrics

Example:
  skeptic serve --addr :8000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveFlags.buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("no-metrics") {
		cfg.Server.Metrics = !noMetrics
	}
	logger := newLogger(cfg.Output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewPipeline(ctx, cfg, pipeline.WithLogger(logger))
	prober := validate.NewProber(cfg.HTTP.Timeout, cfg.Concurrency.Workers, cfg.HTTP.UserAgent,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	srv := server.New(p, prober,
		server.WithLogger(logger),
		server.WithVersion(Version),
		server.WithDefaults(cfg.Analysis),
		server.WithCacheEnabled(cfg.Cache.Enabled),
		server.WithMetricsEndpoint(cfg.Server.Metrics),
	)

	if err := p.ProviderError(); err != nil {
		logger.Error().Err(err).Msg("analyses will fail until the AI provider is configured")
	} else if p.ProviderName() != pipeline.ProviderHeuristic {
		checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
		if !p.ProviderAvailable(checkCtx) {
			logger.Warn().Str("provider", p.ProviderName()).Msg("AI provider did not answer; analyses will fail until it does")
		}
		cancel()
	}

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("provider", p.ProviderName()).
		Bool("cache", cfg.Cache.Enabled).
		Msg("starting skeptic API")

	if err := srv.Start(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
