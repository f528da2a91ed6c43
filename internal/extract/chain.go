package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/validate"
)

// DefaultStrategyTimeout bounds a single strategy attempt when none is configured
const DefaultStrategyTimeout = 20 * time.Second

// defaultCancelGrace is how long a timed-out strategy may keep running
// before the chain moves on without it
const defaultCancelGrace = 2 * time.Second

// minRawTextLength is the floor a strategy's raw text must exceed before validation
const minRawTextLength = 100

// TimeoutOverrider is implemented by strategies that need a deadline other than the chain's
type TimeoutOverrider interface {
	Timeout() time.Duration
}

// errInsufficientContent is recorded when a strategy returns too little text
var errInsufficientContent = errors.New("insufficient content")

// StrategyFailure records why one strategy did not produce an article
type StrategyFailure struct {
	Strategy string
	Err      error
}

// ExtractionError is returned when every strategy failed. It matches
// model.ErrExtractionFailed and unwraps to each recorded failure.
type ExtractionError struct {
	URL      string
	Failures []StrategyFailure
}

func (e *ExtractionError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("all extraction methods failed for %s: no strategies available", e.URL)
	}
	last := e.Failures[len(e.Failures)-1]
	return fmt.Sprintf("all extraction methods failed for %s (%d tried), last error: %s: %v",
		e.URL, len(e.Failures), last.Strategy, last.Err)
}

// Unwrap exposes the sentinel followed by every strategy error
func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, model.ErrExtractionFailed)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Chain tries extraction strategies in order until one yields valid article content
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	grace      time.Duration
	logger     zerolog.Logger
}

// NewChain creates a chain over the given strategies.
// A non-positive timeout falls back to DefaultStrategyTimeout.
func NewChain(strategies []Strategy, timeout time.Duration, logger zerolog.Logger) *Chain {
	if timeout <= 0 {
		timeout = DefaultStrategyTimeout
	}
	return &Chain{
		strategies: strategies,
		timeout:    timeout,
		grace:      defaultCancelGrace,
		logger:     logger,
	}
}

// Strategies returns the strategy names in execution order
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Extract runs the strategies one at a time and returns the first result
// that passes the content validator.
func (c *Chain) Extract(ctx context.Context, rawURL string) (*model.ArticleContent, error) {
	if !validate.ValidateURL(rawURL) {
		return nil, fmt.Errorf("%w: invalid URL: %s", model.ErrInvalidInput, rawURL)
	}

	domain := validate.ExtractDomain(rawURL)
	extErr := &ExtractionError{URL: rawURL}

	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			extErr.Failures = append(extErr.Failures, StrategyFailure{Strategy: strategy.Name(), Err: err})
			break
		}

		name := strategy.Name()
		c.logger.Debug().Str("strategy", name).Str("url", rawURL).Msg("attempting extraction")

		result, err := c.attempt(ctx, strategy, rawURL)
		if err != nil {
			c.logger.Debug().Str("strategy", name).Err(err).Msg("extraction failed")
			extErr.Failures = append(extErr.Failures, StrategyFailure{Strategy: name, Err: err})
			continue
		}

		text := strings.TrimSpace(result.Text)
		if len(text) <= minRawTextLength {
			err := fmt.Errorf("%w: %d chars", errInsufficientContent, len(text))
			c.logger.Debug().Str("strategy", name).Err(err).Msg("extraction rejected")
			extErr.Failures = append(extErr.Failures, StrategyFailure{Strategy: name, Err: err})
			continue
		}

		ok, reason, score := validate.ValidateExtractionResult(text, rawURL, name)
		if !ok {
			err := fmt.Errorf("validation failed: %s (quality %.2f)", reason, score)
			c.logger.Debug().Str("strategy", name).Err(err).Msg("extraction rejected")
			extErr.Failures = append(extErr.Failures, StrategyFailure{Strategy: name, Err: err})
			continue
		}

		c.logger.Info().
			Str("strategy", name).
			Str("url", rawURL).
			Float64("quality", score).
			Int("chars", len(text)).
			Msg("content extracted")

		return &model.ArticleContent{
			URL:              rawURL,
			Title:            strings.TrimSpace(result.Title),
			Content:          validate.CleanContent(text),
			Author:           strings.TrimSpace(result.Author),
			PublishDate:      strings.TrimSpace(result.PublishDate),
			Domain:           domain,
			Language:         validate.DetectLanguage(text),
			QualityScore:     score,
			ExtractionMethod: name,
		}, nil
	}

	return nil, extErr
}

type attemptResult struct {
	result *Result
	err    error
}

// attempt runs one strategy under its own deadline. A result delivered
// after the deadline is dropped. On timeout the strategy gets up to
// c.grace to return, so it does not overlap with the next one.
func (c *Chain) attempt(ctx context.Context, strategy Strategy, rawURL string) (*Result, error) {
	timeout := c.timeout
	if o, ok := strategy.(TimeoutOverrider); ok && o.Timeout() > 0 {
		timeout = o.Timeout()
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("strategy panicked: %v", r)}
			}
		}()
		res, err := strategy.Extract(attemptCtx, rawURL)
		done <- attemptResult{result: res, err: err}
	}()

	select {
	case out := <-done:
		if err := attemptCtx.Err(); err != nil {
			return nil, fmt.Errorf("strategy timed out: %w", err)
		}
		if out.err != nil {
			return nil, out.err
		}
		if out.result == nil {
			return nil, fmt.Errorf("%w: empty result", errInsufficientContent)
		}
		return out.result, nil
	case <-attemptCtx.Done():
		err := attemptCtx.Err()
		cancel()
		select {
		case <-done:
		case <-time.After(c.grace):
			c.logger.Warn().Str("strategy", strategy.Name()).Dur("grace", c.grace).Msg("strategy ignored cancellation")
		}
		return nil, fmt.Errorf("strategy timed out: %w", err)
	}
}
