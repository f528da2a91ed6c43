package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skeptic/internal/pipeline"
	"github.com/ppiankov/skeptic/internal/worker"
)

var (
	batchFlags   commonFlags
	concurrency  int
	outputDir    string
	feedURL      string
	feedLimit    int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Analyze many articles in parallel",
	Long: `Batch analyzes multiple articles concurrently:
- Read URLs from a file (one per line, # comments allowed) or an RSS/Atom feed
- Analyze them with a configurable number of workers
- Write a Markdown and a JSON report for each article

Example:
  skeptic batch urls.txt
  skeptic batch urls.txt --concurrency 8 --output-dir ./reports
  skeptic batch --feed https://feeds.bbci.co.uk/news/rss.xml --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchFlags.register(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./skeptic-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&feedURL, "feed", "", "read article URLs from an RSS or Atom feed")
	batchCmd.Flags().IntVar(&feedLimit, "limit", 20, "maximum number of feed items to analyze")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (feedURL == "") {
		return errors.New("provide either a URL file or --feed, not both")
	}

	cfg, err := batchFlags.buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	workers := cfg.Concurrency.Workers
	logger := newLogger(cfg.Output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	source := feedURL
	if len(args) == 1 {
		source = args[0]
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Skeptic Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", source)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", orNone(cfg.LLM.Provider))
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(ctx, cfg, pipeline.WithLogger(logger))
	if err := p.ProviderError(); err != nil {
		return err
	}
	renderer := p.Renderer()

	processor := worker.NewBatchProcessor(p, workers, cfg.Analysis)
	processor.OnResult(func(r *worker.AnalyzeResult) {
		if err := r.GetError(); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, err)
			return
		}
		fmt.Fprintf(os.Stderr, "✓ %s (credibility %.0f%%, bias %.0f%%)\n", r.URL,
			r.Response.Result.OverallCredibility*100, r.Response.Result.BiasConfidence*100)
	})

	var results []*worker.AnalyzeResult
	if feedURL != "" {
		fmt.Fprintf(os.Stderr, "⚙️  Reading feed...\n")
		urls, err := worker.ReadURLsFromFeed(ctx, feedURL, cfg.HTTP.UserAgent, feedLimit)
		if err != nil {
			return fmt.Errorf("read feed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Loaded %d URLs\n\n⚙️  Analyzing with %d workers...\n\n", len(urls), workers)
		results = processor.ProcessURLs(ctx, urls)
	} else {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing URLs from %s with %d workers...\n\n", source, workers)
		results, err = processor.ProcessFile(ctx, source)
		if err != nil {
			return err
		}
	}
	if len(results) == 0 {
		return errors.New("no URLs to analyze")
	}

	for i, result := range results {
		if result.GetError() != nil {
			continue
		}
		base := filepath.Join(outputDir, fmt.Sprintf("%03d-%s", i+1, sanitizeFilename(result.URL)))
		if err := writeOutputs(renderer, result.Response, base+".json", base+".md"); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, err)
		}
	}

	succeeded, failed := worker.Summary(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename turns a URL into a short filesystem-safe name
func sanitizeFilename(rawURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	s = strings.TrimPrefix(s, "www.")
	s = unsafeFilenameChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")

	if len(s) > 100 {
		s = strings.TrimRight(s[:100], "-.")
	}
	if s == "" {
		s = "article"
	}
	return s
}
