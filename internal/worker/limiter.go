package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBurst applies when a non-positive burst is configured
const defaultBurst = 5

// Limiter paces outbound page fetches per publishing domain. Hosts are
// keyed without port or a leading "www." so www.example.com and
// example.com share one budget.
type Limiter struct {
	mu      sync.Mutex
	domains map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewLimiter creates a limiter allowing requestsPerSecond per domain
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Limiter{
		domains: make(map[string]*rate.Limiter),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Wait blocks until the URL's domain has budget or ctx ends
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.Pace(ctx, rawURL, 0)
}

// Pace is Wait honoring a robots.txt Crawl-delay. A delay slower than the
// configured rate permanently slows that domain to one request per delay.
func (l *Limiter) Pace(ctx context.Context, rawURL string, crawlDelay time.Duration) error {
	domain, err := domainKey(rawURL)
	if err != nil {
		return err
	}
	return l.forDomain(domain, crawlDelay).Wait(ctx)
}

// allow reports whether a request to the URL's domain may proceed now
func (l *Limiter) allow(rawURL string) bool {
	domain, err := domainKey(rawURL)
	if err != nil {
		return false
	}
	return l.forDomain(domain, 0).Allow()
}

// SetDomainRate overrides the budget for one domain
func (l *Limiter) SetDomainRate(domain string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	key := strings.TrimPrefix(strings.ToLower(domain), "www.")

	l.mu.Lock()
	defer l.mu.Unlock()
	l.domains[key] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// Domains returns the number of domains seen so far
func (l *Limiter) Domains() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.domains)
}

func (l *Limiter) forDomain(domain string, crawlDelay time.Duration) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.domains[domain]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.domains[domain] = lim
	}

	if crawlDelay > 0 {
		if every := rate.Every(crawlDelay); every < lim.Limit() {
			lim.SetLimit(every)
			lim.SetBurst(1)
		}
	}
	return lim
}

// domainKey returns the rate-limit key for a URL
func domainKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return "", fmt.Errorf("no host in URL: %s", rawURL)
	}
	return host, nil
}
