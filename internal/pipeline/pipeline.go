package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/skeptic/internal/analysis"
	"github.com/ppiankov/skeptic/internal/cache"
	"github.com/ppiankov/skeptic/internal/extract"
	"github.com/ppiankov/skeptic/internal/llm"
	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/reconcile"
	"github.com/ppiankov/skeptic/internal/score"
	"github.com/ppiankov/skeptic/internal/util"
	"github.com/ppiankov/skeptic/internal/validate"
	"github.com/ppiankov/skeptic/internal/worker"
)

// ProviderHeuristic is reported as the provider when llm.provider is
// "none" and no AI analysis runs
const ProviderHeuristic = "heuristic"

// previewChars is how much content Preview returns
const previewChars = 500

// Pipeline orchestrates extraction, analysis and reporting for one article
type Pipeline struct {
	config      *model.Config
	fetcher     *Fetcher
	chain       *extract.Chain
	enrich      bool
	enricher    *extract.Enricher
	entities    *extract.EntityExtractor
	claims      *extract.ClaimExtractor
	detector    *analysis.BiasDetector
	questions   *analysis.QuestionGenerator
	counter     *analysis.CounterNarrativeGenerator
	rater       *validate.SourceRater
	analyzer    *llm.Analyzer // Disabled analyzer when llm.provider is "none"
	providerErr error         // set when the configured provider failed to initialize
	scorer      *score.Scorer
	renderer    *Renderer
	cache       *cache.ResponseCache // nil if disabled
	logger      zerolog.Logger
	now         func() time.Time

	strategies []extract.Strategy // nil selects extract.DefaultStrategies
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithStrategies replaces the default extraction strategies
func WithStrategies(strategies ...extract.Strategy) Option {
	return func(p *Pipeline) { p.strategies = append([]extract.Strategy{}, strategies...) }
}

// WithAnalyzer replaces the analyzer built from config
func WithAnalyzer(analyzer *llm.Analyzer) Option {
	return func(p *Pipeline) { p.analyzer = analyzer }
}

// WithEntityTagger replaces the default entity tagger
func WithEntityTagger(tagger extract.Tagger) Option {
	return func(p *Pipeline) { p.entities = extract.NewEntityExtractorWithTagger(tagger) }
}

// WithCache replaces the response cache; nil disables caching
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		if c == nil {
			p.cache = nil
			return
		}
		p.cache = cache.NewResponseCache(c, p.config.Cache.TTL)
	}
}

// WithoutEnrichment disables metadata enrichment
func WithoutEnrichment() Option {
	return func(p *Pipeline) { p.enrich = false }
}

// NewPipeline creates a pipeline from configuration. If the configured AI
// provider cannot be initialized every Analyze call fails with
// model.ErrAnalysisProvider; see ProviderError.
func NewPipeline(ctx context.Context, cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    cfg,
		claims:    extract.NewClaimExtractor(),
		entities:  extract.NewEntityExtractor(),
		detector:  analysis.NewBiasDetector(),
		questions: analysis.NewQuestionGenerator(),
		counter:   analysis.NewCounterNarrativeGenerator(),
		rater:     validate.NewSourceRater(nil),
		scorer:    score.NewScorer(),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		enrich:    cfg.Extraction.Enrich,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	p.fetcher = NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	if cfg.HTTP.RespectRobots {
		p.fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout))
	}
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		for _, d := range cfg.RateLimiting.Domains {
			if d.Domain != "" && d.RequestsPerSecond > 0 {
				limiter.SetDomainRate(d.Domain, d.RequestsPerSecond, d.BurstSize)
			}
		}
		p.fetcher.WithLimiter(limiter)
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewResponseCache(cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute), cfg.Cache.TTL)
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.strategies == nil {
		p.strategies = extract.DefaultStrategies(p.fetcher, cfg.Extraction, cfg.HTTP.UserAgent)
	}
	p.chain = extract.NewChain(p.strategies, cfg.Extraction.StrategyTimeout, p.logger)
	if p.enrich {
		p.enricher = extract.NewEnricher(p.fetcher, p.logger)
	}
	if p.analyzer == nil {
		analyzer, err := llm.NewAnalyzer(ctx, llm.ConfigFromModel(cfg.LLM, cfg.HTTP), p.logger)
		if err != nil {
			p.providerErr = fmt.Errorf("%w: %s: %w", model.ErrAnalysisProvider, cfg.LLM.Provider, err)
			p.logger.Error().Err(err).Str("provider", cfg.LLM.Provider).Msg("AI provider could not be initialized")
			analyzer = llm.NewAnalyzerWithProvider(nil, llm.ConfigFromModel(cfg.LLM, cfg.HTTP), p.logger)
		}
		p.analyzer = analyzer
	}

	return p
}

// Config returns the configuration the pipeline was built with
func (p *Pipeline) Config() *model.Config {
	return p.config
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Fetcher returns the shared page fetcher
func (p *Pipeline) Fetcher() *Fetcher {
	return p.fetcher
}

// ProviderName returns the active AI provider, or ProviderHeuristic when
// AI analysis is switched off
func (p *Pipeline) ProviderName() string {
	if p.providerErr != nil {
		return p.config.LLM.Provider
	}
	if name := p.analyzer.ProviderName(); name != "" {
		return name
	}
	return ProviderHeuristic
}

// ProviderError returns the provider initialization error, if any
func (p *Pipeline) ProviderError() error {
	return p.providerErr
}

// ProviderAvailable checks that the configured AI provider answers.
// Heuristic-only pipelines report false.
func (p *Pipeline) ProviderAvailable(ctx context.Context) bool {
	return p.analyzer.IsAvailable(ctx)
}

// CacheStats reports response cache activity; ok is false when caching
// is disabled
func (p *Pipeline) CacheStats() (stats cache.Stats, ok bool) {
	if p.cache == nil {
		return cache.Stats{}, false
	}
	return p.cache.Stats(), true
}

// Analyze runs the full analysis for one URL. It never returns an error
// or panics: every failure becomes a response with Success=false and an
// "Analysis failed: ..." message.
func (p *Pipeline) Analyze(ctx context.Context, rawURL string, opts model.AnalysisOptions) (resp *model.AnalysisResponse) {
	start := p.now()
	requestID := uuid.NewString()
	rawURL = strings.TrimSpace(rawURL)

	logger := p.logger.With().Str("request_id", requestID).Str("url", rawURL).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("analysis panicked")
			resp = p.failure(requestID, start, fmt.Errorf("internal error: %v", r))
		}
	}()

	if !validate.ValidateURL(rawURL) {
		return p.failure(requestID, start, fmt.Errorf("%w: invalid URL: %s", model.ErrInvalidInput, rawURL))
	}
	if p.providerErr != nil {
		return p.failure(requestID, start, p.providerErr)
	}

	key := cache.CacheKey(rawURL, opts)
	if p.cache != nil {
		if cached := p.cache.Get(key); cached != nil {
			logger.Debug().Msg("cache hit")
			cached.Cached = true
			cached.RequestID = requestID
			cached.ProcessingTime = p.elapsed(start)
			return cached
		}
	}

	logger.Info().Str("provider", p.ProviderName()).Msg("analysis started")

	result, err := p.analyze(ctx, rawURL, opts)
	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		return p.failure(requestID, start, err)
	}

	resp = &model.AnalysisResponse{
		Success:        true,
		Result:         result,
		MarkdownReport: p.renderer.RenderMarkdown(result),
		ProcessingTime: p.elapsed(start),
		RequestID:      requestID,
	}

	if p.cache != nil {
		if err := p.cache.Set(key, resp); err != nil {
			logger.Warn().Err(err).Msg("cache store failed")
		}
	}

	logger.Info().
		Float64("credibility", result.OverallCredibility).
		Float64("bias", result.BiasConfidence).
		Int("claims", len(result.CoreClaims)).
		Int("red_flags", len(result.RedFlags)).
		Float64("seconds", resp.ProcessingTime).
		Msg("analysis complete")

	return resp
}

// analyze extracts the article, fans out heuristic steps alongside the AI
// call, then reconciles once all of them have finished.
func (p *Pipeline) analyze(ctx context.Context, rawURL string, opts model.AnalysisOptions) (*model.AnalysisResult, error) {
	article, err := p.chain.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if p.enricher != nil {
		article = p.enricher.Enrich(ctx, article, rawURL)
	}

	var (
		entities  []model.Entity
		roles     *model.EntityRoles
		metrics   *model.SourceMetrics
		heuristic reconcile.Heuristic
		ai        *model.AIAnalysis
	)

	g, gctx := errgroup.WithContext(ctx)

	if opts.IncludeEntityAnalysis {
		goSafe(g, "entities", func() error {
			entities = p.entities.Extract(article.Content, article.Title)
			r := extract.AnalyzeEntityRoles(entities, article.Content)
			roles = &r
			return nil
		})
	}
	if opts.IncludeSourceCheck {
		goSafe(g, "source metrics", func() error {
			m := p.rater.Rate(article.Domain)
			m.URLStructureScore = score.AnalyzeURLStructure(article.URL).Score
			metrics = &m
			return nil
		})
	}
	goSafe(g, "claims", func() error {
		heuristic.Claims = p.claims.Extract(article.Content, article.Title)
		return nil
	})
	goSafe(g, "language", func() error {
		heuristic.Language = p.detector.DetectLanguageBias(article.Content, article.Title)
		return nil
	})
	goSafe(g, "structural", func() error {
		heuristic.RedFlags = p.detector.DetectStructuralBias(article.Content)
		return nil
	})
	goSafe(g, "ai analysis", func() error {
		res, err := p.analyzer.Analyze(gctx, llm.AnalysisRequest{
			Content:     article.Content,
			URL:         article.URL,
			Title:       article.Title,
			Author:      article.Author,
			Domain:      article.Domain,
			PublishDate: article.PublishDate,
		})
		if err != nil {
			return err
		}
		ai = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := reconcile.Reconcile(heuristic, ai)
	balance := analysis.AnalyzeNarrativeBalance(article.Content)

	result := &model.AnalysisResult{
		Article:               *article,
		CoreClaims:            merged.Claims,
		LanguageAnalysis:      merged.Language,
		RedFlags:              merged.RedFlags,
		VerificationQuestions: p.questions.Generate(merged.Claims, entities, article.Content, article.Domain),
		Entities:              entities,
		EntityRoles:           roles,
		SourceMetrics:         metrics,
		NarrativeBalance:      &balance,
		BiasConfidence:        merged.BiasConfidence,
		OverallCredibility:    merged.OverallCredibility,
		AnalyzedAt:            p.now().UTC().Format(time.RFC3339),
		Provider:              p.ProviderName(),
	}

	if opts.IncludeCounterNarrative {
		result.CounterNarrative = p.counter.Generate(article.Content, merged.Claims)
	}

	// Only reachable with llm.provider "none"
	if !merged.FromAI {
		est := p.scorer.Estimate(merged.Claims, merged.RedFlags, merged.Language, metrics)
		result.BiasConfidence = est.BiasConfidence
		result.OverallCredibility = est.Credibility
		result.Provider = ProviderHeuristic
	}

	return result, nil
}

// Preview describes what extraction yields for a URL without analyzing it
type Preview struct {
	URL              string   `json:"url"`
	Title            string   `json:"title,omitempty"`
	Author           string   `json:"author,omitempty"`
	Domain           string   `json:"domain,omitempty"`
	PublishDate      string   `json:"publish_date,omitempty"`
	ContentPreview   string   `json:"content_preview,omitempty"`
	EstimatedLength  int      `json:"estimated_length"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
	QualityScore     float64  `json:"quality_score"`
	Issues           []string `json:"issues"`
}

// Preview runs extraction and enrichment only and lists problems that
// would weaken an analysis
func (p *Pipeline) Preview(ctx context.Context, rawURL string) *Preview {
	rawURL = strings.TrimSpace(rawURL)
	preview := &Preview{URL: rawURL, Issues: []string{}}

	article, err := p.chain.Extract(ctx, rawURL)
	if err != nil {
		preview.Issues = append(preview.Issues, "Extraction failed: "+err.Error())
		return preview
	}
	if p.enricher != nil {
		article = p.enricher.Enrich(ctx, article, rawURL)
	}

	preview.Title = article.Title
	preview.Author = article.Author
	preview.Domain = article.Domain
	preview.PublishDate = article.PublishDate
	preview.EstimatedLength = len(article.Content)
	preview.ExtractionMethod = article.ExtractionMethod
	preview.QualityScore = article.QualityScore
	preview.ContentPreview = article.Content
	if utf8.RuneCountInString(article.Content) > previewChars {
		preview.ContentPreview = string([]rune(article.Content)[:previewChars]) + "..."
	}

	if article.QualityScore < 0.5 {
		preview.Issues = append(preview.Issues, "Low content quality detected")
	}
	if len(article.Content) < 1000 {
		preview.Issues = append(preview.Issues, "Article may be too short for meaningful analysis")
	}
	if article.Title == "" {
		preview.Issues = append(preview.Issues, "No title found")
	}
	if article.Author == "" {
		preview.Issues = append(preview.Issues, "No author information found")
	}

	return preview
}

func (p *Pipeline) failure(requestID string, start time.Time, err error) *model.AnalysisResponse {
	return &model.AnalysisResponse{
		Success:        false,
		Error:          "Analysis failed: " + err.Error(),
		ProcessingTime: p.elapsed(start),
		RequestID:      requestID,
	}
}

func (p *Pipeline) elapsed(start time.Time) float64 {
	d := p.now().Sub(start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// goSafe runs fn in the group, converting a panic into an error
func goSafe(g *errgroup.Group, name string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		return fn()
	})
}
