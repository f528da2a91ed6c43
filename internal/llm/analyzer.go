package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/model"
)

// analyzeSleepFunc is the sleep function used between attempts (injectable for tests)
var analyzeSleepFunc = time.Sleep

// errEmptyResponse marks a reply with no text
var errEmptyResponse = errors.New("empty response")

// AnalysisRequest is the article handed to the provider
type AnalysisRequest struct {
	Content     string
	URL         string
	Title       string
	Author      string
	Domain      string
	PublishDate string
}

// Analyzer runs the structured article analysis against a provider
type Analyzer struct {
	provider Provider
	config   Config
	logger   zerolog.Logger
}

// NewAnalyzer creates an analyzer from configuration. A disabled provider
// yields an analyzer whose Analyze returns nil, nil.
func NewAnalyzer(ctx context.Context, config Config, logger zerolog.Logger) (*Analyzer, error) {
	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewAnalyzerWithProvider(provider, config, logger), nil
}

// NewAnalyzerWithProvider wraps an existing provider
func NewAnalyzerWithProvider(provider Provider, config Config, logger zerolog.Logger) *Analyzer {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	return &Analyzer{
		provider: provider,
		config:   config,
		logger:   logger,
	}
}

// IsEnabled reports whether a provider is configured
func (a *Analyzer) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// ProviderName returns the provider name, or "" when disabled
func (a *Analyzer) ProviderName() string {
	if !a.IsEnabled() {
		return ""
	}
	return a.provider.Name()
}

// IsAvailable checks the provider's reachability
func (a *Analyzer) IsAvailable(ctx context.Context) bool {
	return a.IsEnabled() && a.provider.IsAvailable(ctx)
}

// Analyze sends the article to the provider and parses the JSON reply.
// Empty or unparseable replies are retried with 2^attempt second backoff;
// a provider error ends the call at once. Every failure wraps
// model.ErrAnalysisProvider.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (*model.AIAnalysis, error) {
	if !a.IsEnabled() {
		return nil, nil
	}

	req.Content = truncateRunes(req.Content, a.config.MaxContentChars)
	genReq := GenerateRequest{
		Prompt:      BuildAnalysisPrompt(req),
		System:      SystemPrompt,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		JSON:        true,
	}

	var lastErr error
	for attempt := 0; attempt < a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			a.logger.Debug().Int("attempt", attempt+1).Dur("backoff", backoff).Msg("retrying analysis")
			analyzeSleepFunc(backoff)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrAnalysisProvider, err)
		}

		resp, err := a.provider.Generate(ctx, genReq)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", model.ErrAnalysisProvider, a.provider.Name(), err)
		}

		if resp == nil || strings.TrimSpace(resp.Text) == "" {
			lastErr = errEmptyResponse
			a.logger.Warn().Int("attempt", attempt+1).Msg("empty analysis response")
			continue
		}

		analysis, err := ParseJSONResponse(resp.Text)
		if err != nil {
			lastErr = err
			a.logger.Warn().
				Int("attempt", attempt+1).
				Str("preview", truncateRunes(resp.Text, 200)).
				Msg("unparseable analysis response")
			continue
		}

		a.logger.Debug().
			Str("provider", a.provider.Name()).
			Str("model", resp.Model).
			Int("tokens", resp.TokensUsed).
			Int("claims", len(analysis.Claims)).
			Int("red_flags", len(analysis.RedFlags)).
			Msg("analysis parsed")
		return analysis, nil
	}

	return nil, fmt.Errorf("%w: %s: all %d attempts failed: %w",
		model.ErrAnalysisProvider, a.provider.Name(), a.config.MaxRetries, lastErr)
}

// truncateRunes keeps at most n runes; n <= 0 disables truncation
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
