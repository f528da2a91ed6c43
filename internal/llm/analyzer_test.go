package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/model"
)

// MockProvider implements the Provider interface for testing. It replays
// texts in order; once exhausted the last one repeats.
type MockProvider struct {
	name      string
	available bool
	texts     []string
	err       error

	mu       sync.Mutex
	calls    int
	requests []GenerateRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.texts) == 0 {
		return &GenerateResponse{Model: "mock"}, nil
	}
	i := m.calls - 1
	if i >= len(m.texts) {
		i = len(m.texts) - 1
	}
	return &GenerateResponse{Text: m.texts[i], Model: "mock-model", TokensUsed: 10}, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := analyzeSleepFunc
	analyzeSleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { analyzeSleepFunc = orig })
	return &slept
}

func testAnalyzer(p Provider, cfg Config) *Analyzer {
	return NewAnalyzerWithProvider(p, cfg, zerolog.Nop())
}

func TestAnalyzer_Disabled(t *testing.T) {
	analyzer, err := NewAnalyzer(context.Background(), Config{Provider: ""}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if analyzer.IsEnabled() {
		t.Error("Expected analyzer to be disabled")
	}
	if analyzer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	result, err := analyzer.Analyze(context.Background(), AnalysisRequest{Content: "text"})
	if err != nil || result != nil {
		t.Errorf("Expected nil, nil when disabled, got %v, %v", result, err)
	}
}

func TestAnalyzer_Success(t *testing.T) {
	slept := noSleep(t)
	mock := &MockProvider{name: "mock", available: true, texts: []string{sampleAnalysisJSON}}
	analyzer := testAnalyzer(mock, Config{MaxTokens: 512, Temperature: 0.1})

	result, err := analyzer.Analyze(context.Background(), AnalysisRequest{
		Content: "Article body",
		URL:     "https://news.example.com/a",
		Title:   "Transit plan",
		Domain:  "news.example.com",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Claims) != 1 || result.Claims[0].Claim != "Ridership rose 45% in one year" {
		t.Errorf("unexpected claims %+v", result.Claims)
	}
	if mock.calls != 1 || len(*slept) != 0 {
		t.Errorf("expected a single call without sleeping, got %d calls and %v", mock.calls, *slept)
	}

	req := mock.requests[0]
	if !req.JSON || req.System != SystemPrompt || req.MaxTokens != 512 {
		t.Errorf("unexpected request settings %+v", req)
	}
	for _, want := range []string{"Article body", "- URL: https://news.example.com/a", "- Title: Transit plan", "- Author: Unknown"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if analyzer.ProviderName() != "mock" || !analyzer.IsAvailable(context.Background()) {
		t.Error("expected provider name and availability to pass through")
	}
}

func TestAnalyzer_FencedResponse(t *testing.T) {
	noSleep(t)

	plain := testAnalyzer(&MockProvider{name: "mock", texts: []string{`{"core_claims": [], "bias_confidence": 0.2}`}}, Config{})
	fenced := testAnalyzer(&MockProvider{name: "mock", texts: []string{"```json\n{\"core_claims\": [], \"bias_confidence\": 0.2}\n```"}}, Config{})

	want, err := plain.Analyze(context.Background(), AnalysisRequest{Content: "x"})
	if err != nil {
		t.Fatalf("plain analyze failed: %v", err)
	}
	got, err := fenced.Analyze(context.Background(), AnalysisRequest{Content: "x"})
	if err != nil {
		t.Fatalf("fenced analyze failed: %v", err)
	}

	if got.BiasConfidence != want.BiasConfidence || len(got.Claims) != len(want.Claims) {
		t.Errorf("fenced result %+v differs from plain %+v", got, want)
	}
}

func TestAnalyzer_RetriesEmptyAndUnparseable(t *testing.T) {
	slept := noSleep(t)
	mock := &MockProvider{name: "mock", texts: []string{"", "not json", sampleAnalysisJSON}}
	analyzer := testAnalyzer(mock, Config{MaxRetries: 3})

	result, err := analyzer.Analyze(context.Background(), AnalysisRequest{Content: "x"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result == nil || mock.calls != 3 {
		t.Fatalf("expected success on third call, got %d calls", mock.calls)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("expected backoff %v, got %v", want, *slept)
	}
}

func TestAnalyzer_ExhaustsRetries(t *testing.T) {
	noSleep(t)
	mock := &MockProvider{name: "mock", texts: []string{"still thinking..."}}
	analyzer := testAnalyzer(mock, Config{MaxRetries: 3})

	_, err := analyzer.Analyze(context.Background(), AnalysisRequest{Content: "x"})
	if !errors.Is(err, model.ErrAnalysisProvider) {
		t.Fatalf("expected ErrAnalysisProvider, got %v", err)
	}
	if !errors.Is(err, errUnparseable) {
		t.Errorf("expected last parse error to be wrapped, got %v", err)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.calls)
	}
}

func TestAnalyzer_ProviderErrorNotRetried(t *testing.T) {
	slept := noSleep(t)
	providerErr := errors.New("permission denied")
	mock := &MockProvider{name: "mock", err: providerErr}
	analyzer := testAnalyzer(mock, Config{MaxRetries: 3})

	_, err := analyzer.Analyze(context.Background(), AnalysisRequest{Content: "x"})
	if !errors.Is(err, model.ErrAnalysisProvider) || !errors.Is(err, providerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if mock.calls != 1 || len(*slept) != 0 {
		t.Errorf("expected one call and no backoff, got %d calls, %v", mock.calls, *slept)
	}
}

func TestAnalyzer_CanceledContext(t *testing.T) {
	noSleep(t)
	mock := &MockProvider{name: "mock", texts: []string{sampleAnalysisJSON}}
	analyzer := testAnalyzer(mock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.Analyze(ctx, AnalysisRequest{Content: "x"})
	if !errors.Is(err, model.ErrAnalysisProvider) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled analysis error, got %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("expected no provider calls, got %d", mock.calls)
	}
}

func TestAnalyzer_TruncatesContent(t *testing.T) {
	noSleep(t)
	mock := &MockProvider{name: "mock", texts: []string{sampleAnalysisJSON}}
	analyzer := testAnalyzer(mock, Config{MaxContentChars: 5})

	if _, err := analyzer.Analyze(context.Background(), AnalysisRequest{Content: "héllo wörld"}); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	prompt := mock.requests[0].Prompt
	if !strings.Contains(prompt, "ARTICLE CONTENT:\nhéllo\n") {
		t.Errorf("expected content truncated to 5 runes, prompt starts %q", prompt[:80])
	}
	if strings.Contains(prompt, "wörld") {
		t.Error("expected content beyond the limit to be dropped")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 3, "abc"},
		{"abc", 0, "abc"},
		{"日本語テキスト", 2, "日本"},
	}

	for _, tt := range tests {
		got := truncateRunes(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateRunes(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
