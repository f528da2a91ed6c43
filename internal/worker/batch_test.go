package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/skeptic/internal/model"
)

// MockAnalyzer implements Analyzer
type MockAnalyzer struct {
	FailURLs map[string]bool
	Delay    func(url string) time.Duration

	mu   sync.Mutex
	seen []model.AnalysisOptions
}

func (m *MockAnalyzer) Analyze(ctx context.Context, url string, opts model.AnalysisOptions) *model.AnalysisResponse {
	m.mu.Lock()
	m.seen = append(m.seen, opts)
	m.mu.Unlock()

	if m.Delay != nil {
		time.Sleep(m.Delay(url))
	}
	if m.FailURLs[url] {
		return &model.AnalysisResponse{Success: false, Error: "Analysis failed: boom"}
	}
	return &model.AnalysisResponse{
		Success: true,
		Result: &model.AnalysisResult{
			Article: model.ArticleContent{URL: url},
		},
	}
}

func writeURLFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	analyzer := &MockAnalyzer{}
	opts := model.AnalysisOptions{IncludeSourceCheck: true}
	processor := NewBatchProcessor(analyzer, 2, opts)

	urls := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	results := processor.ProcessURLs(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if err := res.GetError(); err != nil {
			t.Errorf("unexpected error for %s: %v", res.URL, err)
		}
		if res.Response.Result == nil {
			t.Error("expected result for successful analysis")
		}
	}
	for _, seen := range analyzer.seen {
		if seen != opts {
			t.Errorf("expected options %+v to be forwarded, got %+v", opts, seen)
		}
	}
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	// Earlier URLs take longer so they finish last
	analyzer := &MockAnalyzer{Delay: func(url string) time.Duration {
		switch {
		case strings.HasSuffix(url, "/0"):
			return 40 * time.Millisecond
		case strings.HasSuffix(url, "/1"):
			return 20 * time.Millisecond
		default:
			return 0
		}
	}}
	processor := NewBatchProcessor(analyzer, 3, model.DefaultAnalysisOptions())

	var mu sync.Mutex
	var completion []string
	processor.OnResult(func(r *AnalyzeResult) {
		mu.Lock()
		completion = append(completion, r.URL)
		mu.Unlock()
	})

	urls := []string{"https://example.com/0", "https://example.com/1", "https://example.com/2"}
	results := processor.ProcessURLs(context.Background(), urls)

	for i, res := range results {
		if res.URL != urls[i] {
			t.Errorf("result %d: expected %s, got %s", i, urls[i], res.URL)
		}
	}
	if len(completion) != 3 {
		t.Fatalf("expected 3 progress callbacks, got %d", len(completion))
	}
	if completion[0] != "https://example.com/2" {
		t.Errorf("expected fastest URL to report first, got %v", completion)
	}
}

func TestBatchProcessor_ProcessURLs_Failures(t *testing.T) {
	analyzer := &MockAnalyzer{FailURLs: map[string]bool{"https://example.com/bad": true}}
	processor := NewBatchProcessor(analyzer, 2, model.DefaultAnalysisOptions())

	results := processor.ProcessURLs(context.Background(), []string{"https://example.com/ok", "https://example.com/bad"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if err := results[1].GetError(); err == nil || err.Error() != "Analysis failed: boom" {
		t.Errorf("expected analysis failure, got %v", err)
	}

	ok, failed := Summary(results)
	if ok != 1 || failed != 1 {
		t.Errorf("expected 1/1, got %d/%d", ok, failed)
	}
}

func TestBatchProcessor_ProcessURLs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2, model.DefaultAnalysisOptions())

	results := processor.ProcessURLs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	tests := []struct {
		name    string
		resp    *model.AnalysisResponse
		wantErr string
	}{
		{"success", &model.AnalysisResponse{Success: true}, ""},
		{"failure", &model.AnalysisResponse{Error: "Analysis failed: x"}, "Analysis failed: x"},
		{"missing", nil, "no response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&AnalyzeResult{URL: "https://example.com", Response: tt.resp}).GetError()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := writeURLFile(t, "https://example.com/a\n# comment\nhttps://example.com/b\n   \nhttps://example.com/c   ")

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	expected := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d", len(expected), len(urls))
	}
	for i, url := range urls {
		if url != expected[i] {
			t.Errorf("expected URL %s at index %d, got %s", expected[i], i, url)
		}
	}
}

func TestReadURLsFromFile_Deduplication(t *testing.T) {
	urls, err := ReadURLsFromFile(writeURLFile(t, "https://example.com\nhttps://example.com\n"))
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("expected 1 URL after deduplication, got %d", len(urls))
	}
}

func TestReadURLsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadURLsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeURLFile(t, "https://example.com/a\nhttps://example.com/b\n# comment\n\nhttps://example.com/c\n")
	processor := NewBatchProcessor(&MockAnalyzer{}, 2, model.DefaultAnalysisOptions())

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
