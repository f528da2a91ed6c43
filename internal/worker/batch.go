package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

// Analyzer analyzes a single article URL
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string, opts model.AnalysisOptions) *model.AnalysisResponse
}

// AnalyzeJob represents one article analysis
type AnalyzeJob struct {
	URL      string
	Options  model.AnalysisOptions
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	resp := j.Analyzer.Analyze(ctx, j.URL, j.Options)
	return &AnalyzeResult{
		URL:      j.URL,
		Response: resp,
	}
}

// AnalyzeResult is the outcome of one batch item
type AnalyzeResult struct {
	URL      string
	Response *model.AnalysisResponse
}

// GetError returns the failure reported by the response, if any
func (r *AnalyzeResult) GetError() error {
	if r.Response == nil {
		return errors.New("no response")
	}
	if !r.Response.Success {
		return errors.New(r.Response.Error)
	}
	return nil
}

// BatchProcessor processes multiple URLs concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	options     model.AnalysisOptions
	onResult    func(*AnalyzeResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, opts model.AnalysisOptions) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		options:     opts,
	}
}

// OnResult registers a progress callback invoked as each URL finishes
func (b *BatchProcessor) OnResult(fn func(*AnalyzeResult)) {
	b.onResult = fn
}

// ProcessURLs analyzes the URLs concurrently and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*AnalyzeResult {
	if len(urls) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	if b.onResult != nil {
		pool.OnResult(func(r Result) { b.onResult(r.(*AnalyzeResult)) })
	}
	pool.Start()

	for _, u := range urls {
		pool.Submit(&AnalyzeJob{
			URL:      u,
			Options:  b.options,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Wait()

	out := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		out[i] = result.(*AnalyzeResult)
	}
	return out
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// Summary counts successes and failures in a batch
func Summary(results []*AnalyzeResult) (succeeded, failed int) {
	for _, r := range results {
		if r.GetError() == nil {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
