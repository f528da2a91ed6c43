package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/analysis"
	"github.com/ppiankov/skeptic/internal/extract"
	"github.com/ppiankov/skeptic/internal/llm"
	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/score"
)

const articleURL = "https://news.example.com/2024/05/01/transit-expansion"

// transitArticle has three "sources say" phrases, three statistics without
// comparative context and no opposing-viewpoint words
func transitArticle() string {
	paragraphs := []string{
		"The regional transit authority reported a 45% increase in ridership this spring. " +
			"Sources say the agency plans to expand service to three new suburbs. " +
			"City planners contributed data for the new route maps.",
		"Officials approved $300 million in new spending for buses and trains. " +
			"Sources say construction could begin within a year. " +
			"Delays were 3 times higher on the oldest lines.",
		"The new trains will carry more passengers during peak hours. " +
			"Sources say the first stations will open near the river. " +
			"Riders in the eastern districts will see shorter waits.",
	}
	filler := "The plan includes new shelters, brighter lighting and updated signs at every stop. " +
		"Staff will hold public meetings in each district during the summer months. " +
		"Residents can submit written comments online or by mail."
	for i := 0; i < 7; i++ {
		paragraphs = append(paragraphs, filler)
	}
	return strings.Join(paragraphs, "\n\n")
}

const aiResponse = "```json\n" + `{
  "core_claims": [
    {"claim": "Ridership rose 45% in one year", "evidence_quality": "weak", "verifiable": true, "context": "Transit report", "confidence": 0.7}
  ],
  "language_analysis": {
    "tone": "persuasive",
    "bias_indicators": ["clearly"],
    "loaded_language": ["reckless gamble"],
    "emotional_words": ["outrage"],
    "persuasive_techniques": ["Appeal to fear"]
  },
  "red_flags": [
    {"type": "source_bias", "description": "Relies on anonymous sources", "severity": "high", "evidence": "sources say", "confidence": 0.8}
  ],
  "verification_questions": [
    {"question": "Who conducted the ridership count?", "category": "methodology", "priority": 4, "research_tips": ["Check the agency report"]}
  ],
  "bias_confidence": 0.6,
  "overall_credibility": 0.55
}` + "\n```"

type stubStrategy struct {
	result *extract.Result
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Extract(ctx context.Context, rawURL string) (*extract.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubProvider struct {
	text string
	err  error

	mu       sync.Mutex
	calls    int
	requests []llm.GenerateRequest
}

func (p *stubProvider) Name() string { return "mock" }

func (p *stubProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.GenerateResponse{Text: p.text, Model: "mock-model"}, nil
}

func (p *stubProvider) IsAvailable(ctx context.Context) bool { return true }

type stubTagger struct {
	panic bool
}

func (t stubTagger) Tag(text string) ([]extract.TaggedEntity, error) {
	if t.panic {
		panic("tagger exploded")
	}
	return []extract.TaggedEntity{
		{Text: "Regional Transit Authority", Label: "ORG", Sentence: "The regional transit authority reported a 45% increase."},
	}, nil
}

func transitStrategy() *stubStrategy {
	return &stubStrategy{result: &extract.Result{
		Text:        transitArticle(),
		Title:       "Transit expansion approved",
		Author:      "Jane Reporter",
		PublishDate: "2024-05-01",
	}}
}

func testPipeline(t *testing.T, strategy extract.Strategy, provider llm.Provider, opts ...Option) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = false

	analyzer := llm.NewAnalyzerWithProvider(provider, llm.Config{MaxRetries: 1, MaxContentChars: 50000}, zerolog.Nop())

	base := []Option{
		WithAnalyzer(analyzer),
		WithEntityTagger(stubTagger{}),
		WithoutEnrichment(),
	}
	if strategy != nil {
		base = append(base, WithStrategies(strategy))
	} else {
		base = append(base, WithStrategies())
	}
	return NewPipeline(context.Background(), cfg, append(base, opts...)...)
}

func TestAnalyze_TransitArticleWithAI(t *testing.T) {
	provider := &stubProvider{text: aiResponse}
	p := testPipeline(t, transitStrategy(), provider)

	resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if resp.RequestID == "" {
		t.Error("Expected a request ID")
	}
	if resp.ProcessingTime < 0 {
		t.Errorf("Expected non-negative processing time, got %f", resp.ProcessingTime)
	}

	result := resp.Result
	if result.Provider != "mock" {
		t.Errorf("Expected provider mock, got %q", result.Provider)
	}
	if result.OverallCredibility != 0.55 || result.BiasConfidence != 0.6 {
		t.Errorf("Expected AI scores 0.55/0.6, got %f/%f", result.OverallCredibility, result.BiasConfidence)
	}
	if result.LanguageAnalysis.Tone != model.TonePersuasive {
		t.Errorf("Expected AI tone, got %s", result.LanguageAnalysis.Tone)
	}
	if result.Article.ExtractionMethod != "stub" || result.Article.Title != "Transit expansion approved" {
		t.Errorf("Unexpected article: %+v", result.Article)
	}

	// Heuristic and AI flags are both kept
	var heuristicAnon, aiAnon bool
	for _, f := range result.RedFlags {
		if strings.HasPrefix(f.Description, "Multiple anonymous sources") {
			heuristicAnon = true
		}
		if f.Description == "Relies on anonymous sources" {
			aiAnon = true
		}
	}
	if !heuristicAnon || !aiAnon {
		t.Errorf("Expected heuristic and AI anonymous-source flags, got %+v", result.RedFlags)
	}
	if len(result.RedFlags) > model.MaxRedFlags {
		t.Errorf("Expected at most %d red flags, got %d", model.MaxRedFlags, len(result.RedFlags))
	}
	if result.RedFlags[0].Severity != model.SeverityHigh {
		t.Errorf("Expected high severity flag first, got %+v", result.RedFlags[0])
	}

	var has45 bool
	for _, c := range result.CoreClaims {
		if strings.Contains(c.Claim, "45%") {
			has45 = true
		}
	}
	if !has45 {
		t.Errorf("Expected a claim referencing 45%%, got %+v", result.CoreClaims)
	}
	if n := len(result.VerificationQuestions); n == 0 || n > model.MaxQuestions {
		t.Errorf("Expected 1..%d questions, got %d", model.MaxQuestions, n)
	}

	// Questions come from the generator alone; the AI's list is not merged in
	want := analysis.NewQuestionGenerator().Generate(result.CoreClaims, result.Entities, result.Article.Content, result.Article.Domain)
	if len(result.VerificationQuestions) != len(want) {
		t.Errorf("Expected %d generated questions, got %d", len(want), len(result.VerificationQuestions))
	}
	for _, q := range result.VerificationQuestions {
		if q.Question == "Who conducted the ridership count?" {
			t.Errorf("AI question leaked into verification questions: %+v", q)
		}
	}

	if len(result.Entities) != 1 || result.EntityRoles == nil {
		t.Errorf("Expected tagged entity and roles, got %+v / %+v", result.Entities, result.EntityRoles)
	}
	if result.SourceMetrics == nil || result.SourceMetrics.URLStructureScore == 0 {
		t.Errorf("Expected source metrics with URL structure score, got %+v", result.SourceMetrics)
	}
	if result.CounterNarrative == nil {
		t.Error("Expected counter narrative")
	}
	if result.NarrativeBalance == nil {
		t.Error("Expected narrative balance")
	}

	for _, want := range []string{
		"# Critical Analysis Report",
		"### Core Claims",
		"### Potential Red Flags",
		"### Verification Questions",
		"### Key Entities",
		"### Alternative Perspectives",
		"### Source Analysis",
		score.RecommendCaution,
	} {
		if !strings.Contains(resp.MarkdownReport, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}

	if provider.calls != 1 {
		t.Fatalf("Expected 1 provider call, got %d", provider.calls)
	}
	if !strings.Contains(provider.requests[0].Prompt, "Transit expansion approved") {
		t.Error("Expected article title in prompt")
	}
}

func TestAnalyze_CachedResponse(t *testing.T) {
	provider := &stubProvider{text: aiResponse}
	strategy := transitStrategy()
	p := testPipeline(t, strategy, provider)

	first := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	second := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())

	if !first.Success || !second.Success {
		t.Fatalf("Expected both to succeed: %q / %q", first.Error, second.Error)
	}
	if first.Cached || !second.Cached {
		t.Errorf("Expected only second response to be cached: %v / %v", first.Cached, second.Cached)
	}
	if first.RequestID == second.RequestID {
		t.Error("Expected a fresh request ID for the cached response")
	}
	if provider.calls != 1 || strategy.calls != 1 {
		t.Errorf("Expected one extraction and one provider call, got %d / %d", strategy.calls, provider.calls)
	}

	// Different options miss the cache
	opts := model.DefaultAnalysisOptions()
	opts.IncludeCounterNarrative = false
	third := p.Analyze(context.Background(), articleURL, opts)
	if third.Cached || third.Result.CounterNarrative != nil {
		t.Errorf("Expected uncached response without counter narrative, got cached=%v", third.Cached)
	}

	stats, ok := p.CacheStats()
	if !ok {
		t.Fatal("Expected cache stats with caching enabled")
	}
	if stats.Hits != 1 || stats.Misses != 2 || stats.Entries != 2 {
		t.Errorf("Unexpected cache stats: %+v", stats)
	}
}

// configPipeline builds the analyzer from cfg.LLM instead of injecting one
func configPipeline(t *testing.T, provider string, strategy extract.Strategy) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = false
	cfg.LLM.Provider = provider
	cfg.LLM.APIKey = ""

	return NewPipeline(context.Background(), cfg,
		WithStrategies(strategy),
		WithEntityTagger(stubTagger{}),
		WithoutEnrichment(),
	)
}

func TestAnalyze_ProviderUnavailable(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name     string
		provider string
	}{
		{"gemini without key", "gemini"},
		{"openai without key", "openai"},
		{"unknown provider", "watson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := transitStrategy()
			p := configPipeline(t, tt.provider, strategy)

			if !errors.Is(p.ProviderError(), model.ErrAnalysisProvider) {
				t.Fatalf("Expected provider error, got %v", p.ProviderError())
			}
			if p.ProviderName() != tt.provider {
				t.Errorf("Expected provider name %q, got %q", tt.provider, p.ProviderName())
			}

			resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
			if resp.Success {
				t.Fatalf("Expected failure without a working provider, got credibility %f", resp.Result.OverallCredibility)
			}
			if resp.Result != nil || resp.MarkdownReport != "" {
				t.Error("Expected no result without AI analysis")
			}
			if !strings.HasPrefix(resp.Error, "Analysis failed: ") || !strings.Contains(resp.Error, tt.provider) {
				t.Errorf("Unexpected error message %q", resp.Error)
			}
			if strategy.calls != 0 {
				t.Errorf("Expected no extraction, got %d calls", strategy.calls)
			}
		})
	}
}

func TestAnalyze_ProviderNone(t *testing.T) {
	p := configPipeline(t, "none", transitStrategy())
	if p.ProviderError() != nil {
		t.Fatalf("Unexpected provider error: %v", p.ProviderError())
	}
	if _, ok := p.CacheStats(); !ok {
		t.Error("Expected cache stats with the default config")
	}

	resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	if !resp.Success {
		t.Fatalf("Expected success, got %q", resp.Error)
	}

	result := resp.Result
	if result.Provider != ProviderHeuristic {
		t.Errorf("Expected heuristic provider, got %q", result.Provider)
	}

	est := score.NewScorer().Estimate(result.CoreClaims, result.RedFlags, result.LanguageAnalysis, result.SourceMetrics)
	if result.OverallCredibility != est.Credibility || result.BiasConfidence != est.BiasConfidence {
		t.Errorf("Expected heuristic estimate %f/%f, got %f/%f",
			est.Credibility, est.BiasConfidence, result.OverallCredibility, result.BiasConfidence)
	}
}

func TestPipeline_NoCacheStats(t *testing.T) {
	p := testPipeline(t, transitStrategy(), &stubProvider{text: aiResponse}, WithCache(nil))
	if _, ok := p.CacheStats(); ok {
		t.Error("Expected no cache stats without a cache")
	}
}

func TestAnalyze_NoStrategies(t *testing.T) {
	p := testPipeline(t, nil, &stubProvider{text: aiResponse})

	resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	if resp.Success {
		t.Fatal("Expected failure with no strategies")
	}
	if !strings.HasPrefix(resp.Error, "Analysis failed: ") {
		t.Errorf("Unexpected error message %q", resp.Error)
	}
	if resp.Result != nil || resp.MarkdownReport != "" {
		t.Error("Expected no result on failure")
	}
	if resp.ProcessingTime < 0 {
		t.Errorf("Expected non-negative processing time, got %f", resp.ProcessingTime)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		strategy *stubStrategy
		provider *stubProvider
		opts     []Option
		contains string
	}{
		{
			name:     "invalid URL",
			url:      "ftp://example.com/file",
			strategy: transitStrategy(),
			provider: &stubProvider{text: aiResponse},
			contains: "invalid input",
		},
		{
			name:     "extraction error",
			url:      articleURL,
			strategy: &stubStrategy{err: errors.New("connection refused")},
			provider: &stubProvider{text: aiResponse},
			contains: "connection refused",
		},
		{
			name:     "provider error",
			url:      articleURL,
			strategy: transitStrategy(),
			provider: &stubProvider{err: errors.New("quota exceeded")},
			contains: "analysis provider failed",
		},
		{
			name:     "unparseable AI reply",
			url:      articleURL,
			strategy: transitStrategy(),
			provider: &stubProvider{text: "I cannot help with that."},
			contains: "all 1 attempts failed",
		},
		{
			name:     "panicking step",
			url:      articleURL,
			strategy: transitStrategy(),
			provider: &stubProvider{text: aiResponse},
			opts:     []Option{WithEntityTagger(stubTagger{panic: true})},
			contains: "entities panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPipeline(t, tt.strategy, tt.provider, tt.opts...)
			resp := p.Analyze(context.Background(), tt.url, model.DefaultAnalysisOptions())
			if resp.Success {
				t.Fatal("Expected failure")
			}
			if !strings.HasPrefix(resp.Error, "Analysis failed: ") || !strings.Contains(resp.Error, tt.contains) {
				t.Errorf("Expected error containing %q, got %q", tt.contains, resp.Error)
			}
		})
	}
}

func TestAnalyze_FailureNotCached(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exceeded")}
	p := testPipeline(t, transitStrategy(), provider)

	_ = p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	provider.err = nil
	provider.text = aiResponse

	resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	if !resp.Success || resp.Cached {
		t.Errorf("Expected fresh success after failure, got success=%v cached=%v", resp.Success, resp.Cached)
	}
}

func TestAnalyze_ProcessingTime(t *testing.T) {
	p := testPipeline(t, transitStrategy(), &stubProvider{text: aiResponse})

	tick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time {
		tick = tick.Add(500 * time.Millisecond)
		return tick
	}

	resp := p.Analyze(context.Background(), articleURL, model.DefaultAnalysisOptions())
	if !resp.Success {
		t.Fatalf("Expected success, got %q", resp.Error)
	}
	if resp.ProcessingTime <= 0 {
		t.Errorf("Expected positive processing time, got %f", resp.ProcessingTime)
	}
	if resp.Result.AnalyzedAt == "" {
		t.Error("Expected analysis timestamp")
	}
}

func TestPreview(t *testing.T) {
	p := testPipeline(t, transitStrategy(), nil)

	preview := p.Preview(context.Background(), articleURL)
	if preview.ExtractionMethod != "stub" {
		t.Errorf("Expected stub method, got %q", preview.ExtractionMethod)
	}
	if !strings.HasSuffix(preview.ContentPreview, "...") || len([]rune(preview.ContentPreview)) != previewChars+3 {
		t.Errorf("Expected truncated preview, got %d runes", len([]rune(preview.ContentPreview)))
	}
	if preview.EstimatedLength < 1000 {
		t.Errorf("Expected full content length, got %d", preview.EstimatedLength)
	}
	if len(preview.Issues) != 0 {
		t.Errorf("Expected no issues, got %v", preview.Issues)
	}
}

func TestPreview_Issues(t *testing.T) {
	short := strings.Repeat("A short paragraph about local roads and bridges today.\n\n", 12)
	strategy := &stubStrategy{result: &extract.Result{Text: short}}
	p := testPipeline(t, strategy, nil)

	preview := p.Preview(context.Background(), articleURL)
	want := []string{
		"Article may be too short for meaningful analysis",
		"No title found",
		"No author information found",
	}
	for _, issue := range want {
		found := false
		for _, got := range preview.Issues {
			if got == issue {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected issue %q in %v", issue, preview.Issues)
		}
	}
}

func TestPreview_ExtractionFailure(t *testing.T) {
	p := testPipeline(t, nil, nil)

	preview := p.Preview(context.Background(), articleURL)
	if len(preview.Issues) != 1 || !strings.HasPrefix(preview.Issues[0], "Extraction failed: ") {
		t.Errorf("Expected single extraction failure issue, got %v", preview.Issues)
	}
}
