package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skeptic/internal/pipeline"
	"github.com/ppiankov/skeptic/internal/validate"
)

var (
	probeFlags   commonFlags
	probeJSON    bool
	previewFlags commonFlags
	previewJSON  bool
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <url> [url...]",
	Short: "Check whether URLs can be fetched and analyzed",
	Long: `Probe sends a HEAD request to each URL and reports status, content type,
whether the host looks like a news site, and recommendations.

Example:
  skeptic probe https://www.bbc.com/news/some-story
  skeptic probe https://a.example/x https://b.example/y --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Show what extraction yields for a URL without analyzing it",
	Long: `Preview runs only the extraction chain and reports title, author,
length, extraction method, quality score and issues that would weaken an
analysis.

Example:
  skeptic preview https://example.com/news/story`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(previewCmd)

	probeFlags.register(probeCmd)
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "print diagnostics as JSON")

	previewFlags.register(previewCmd)
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "print the preview as JSON")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := probeFlags.buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	prober := validate.NewProber(cfg.HTTP.Timeout, cfg.Concurrency.Workers, cfg.HTTP.UserAgent,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	results := prober.ProbeAll(ctx, args)

	if probeJSON {
		return printJSON(os.Stdout, results)
	}
	for _, diag := range results {
		printDiagnostics(os.Stdout, diag)
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := previewFlags.buildConfig(cmd)
	if err != nil {
		return err
	}
	// Preview never calls the AI provider
	cfg.LLM.Provider = "none"
	logger := newLogger(cfg.Output)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	p := pipeline.NewPipeline(ctx, cfg, pipeline.WithLogger(logger))
	preview := p.Preview(ctx, args[0])

	if previewJSON {
		return printJSON(os.Stdout, preview)
	}
	printPreview(os.Stdout, preview)
	return nil
}

func printDiagnostics(w io.Writer, diag validate.Diagnostics) {
	status := "✓"
	if !diag.Accessible {
		status = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", status, diag.URL)
	if diag.StatusCode > 0 {
		fmt.Fprintf(w, "  Status:        %d\n", diag.StatusCode)
	}
	if diag.ContentType != "" {
		fmt.Fprintf(w, "  Content type:  %s\n", diag.ContentType)
	}
	if diag.FinalURL != "" && diag.FinalURL != diag.URL {
		fmt.Fprintf(w, "  Final URL:     %s\n", diag.FinalURL)
	}
	fmt.Fprintf(w, "  News site:     %v\n", diag.IsNewsSite)
	if diag.Error != "" {
		fmt.Fprintf(w, "  Error:         %s\n", diag.Error)
	}
	for _, rec := range diag.Recommendations {
		fmt.Fprintf(w, "  → %s\n", rec)
	}
	fmt.Fprintln(w)
}

func printPreview(w io.Writer, preview *pipeline.Preview) {
	fmt.Fprintf(w, "%s\n\n", preview.URL)
	if preview.ExtractionMethod != "" {
		fmt.Fprintf(w, "  Title:       %s\n", orDash(preview.Title))
		fmt.Fprintf(w, "  Author:      %s\n", orDash(preview.Author))
		fmt.Fprintf(w, "  Published:   %s\n", orDash(preview.PublishDate))
		fmt.Fprintf(w, "  Domain:      %s\n", preview.Domain)
		fmt.Fprintf(w, "  Length:      %d chars\n", preview.EstimatedLength)
		fmt.Fprintf(w, "  Extraction:  %s (quality %.2f)\n\n", preview.ExtractionMethod, preview.QualityScore)
		fmt.Fprintf(w, "%s\n\n", preview.ContentPreview)
	}
	if len(preview.Issues) == 0 {
		fmt.Fprintf(w, "✓ No issues found\n")
		return
	}
	fmt.Fprintf(w, "Issues:\n")
	for _, issue := range preview.Issues {
		fmt.Fprintf(w, "  ⚠️  %s\n", issue)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
