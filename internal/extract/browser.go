package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultBrowserTimeout bounds a headless render when none is configured
const DefaultBrowserTimeout = 45 * time.Second

// BrowserStrategy renders the page in headless Chrome and runs readability
// over the rendered DOM. Used for script-heavy pages.
type BrowserStrategy struct {
	userAgent string
	timeout   time.Duration
	render    func(ctx context.Context, rawURL string) (string, error)
}

// NewBrowserStrategy creates the headless browser strategy
func NewBrowserStrategy(userAgent string, timeout time.Duration) *BrowserStrategy {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	s := &BrowserStrategy{userAgent: userAgent, timeout: timeout}
	s.render = s.renderChrome
	return s
}

// Name returns the strategy name
func (s *BrowserStrategy) Name() string { return StrategyBrowser }

// Timeout overrides the chain deadline, a cold browser start is slow
func (s *BrowserStrategy) Timeout() time.Duration { return s.timeout }

// Extract renders the page and parses the result with readability
func (s *BrowserStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return readabilityFromHTML(page, rawURL)
}

func (s *BrowserStrategy) renderChrome(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.UserAgent(s.userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless render: %w", err)
	}
	return html, nil
}
