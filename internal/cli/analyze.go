package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/pipeline"
)

var (
	analyzeFlags   commonFlags
	outJSON        string
	outMD          string
	outFormat      string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a news article and print a critical analysis report",
	Long: `Analyze fetches a news article and produces a critical analysis report:
- Core claims with evidence quality and verifiability
- Tone, loaded language and persuasive techniques
- Structural red flags such as anonymous sourcing or missing citations
- Verification questions with research tips
- Key entities, alternative perspectives and source credibility

Without an AI provider (--provider none) the report is built from
heuristics alone.

Example:
  skeptic analyze https://www.reuters.com/world/some-story
  skeptic analyze https://example.com/news --format json --md report.md
  skeptic analyze https://example.com/news --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeFlags.register(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outFormat, "format", "markdown", "stdout format (markdown, json, summary)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "also write the full JSON response to this path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "also write the Markdown report to this path")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url := args[0]

	switch outFormat {
	case "markdown", "json", "summary":
	default:
		return fmt.Errorf("unknown format %q (supported: markdown, json, summary)", outFormat)
	}

	cfg, err := analyzeFlags.buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", url)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", analyzeTimeout)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", orNone(cfg.LLM.Provider))
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(ctx, cfg, pipeline.WithLogger(logger))
	if err := p.ProviderError(); err != nil {
		return err
	}
	resp := p.Analyze(ctx, url, cfg.Analysis)
	if !resp.Success {
		return errors.New(resp.Error)
	}

	if err := writeOutputs(p.Renderer(), resp, outJSON, outMD); err != nil {
		return err
	}

	renderer := p.Renderer()
	switch outFormat {
	case "json":
		data, err := renderer.RenderJSON(resp)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Println(string(data))
	case "summary":
		renderer.RenderSummary(os.Stdout, resp.Result)
	default:
		fmt.Print(resp.MarkdownReport)
	}

	if cfg.Output.Verbose && outFormat != "summary" {
		renderer.RenderSummary(os.Stderr, resp.Result)
		fmt.Fprintf(os.Stderr, "  Processed in %.2fs (request %s)\n\n", resp.ProcessingTime, resp.RequestID)
	}

	return nil
}

// writeOutputs writes the optional JSON and Markdown files
func writeOutputs(r *pipeline.Renderer, resp *model.AnalysisResponse, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.WriteJSON(jsonPath, resp); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report written to %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := r.WriteMarkdown(mdPath, resp.MarkdownReport); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report written to %s\n", mdPath)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
