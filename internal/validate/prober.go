package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/skeptic/internal/util"
)

const probeMaxRetries = 3

// probeSleepFunc is the sleep function used between retries (injectable for tests)
var probeSleepFunc = time.Sleep

// Diagnostics describes whether a URL looks fetchable and analyzable
type Diagnostics struct {
	URL             string   `json:"url"`
	Accessible      bool     `json:"accessible"`
	StatusCode      int      `json:"status_code,omitempty"`
	ContentType     string   `json:"content_type,omitempty"`
	ContentLength   string   `json:"content_length,omitempty"`
	FinalURL        string   `json:"final_url,omitempty"`
	IsNewsSite      bool     `json:"is_news_site"`
	Error           string   `json:"error,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// Prober checks URL accessibility with HEAD requests
type Prober struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
}

// NewProber creates a new prober
func NewProber(timeout time.Duration, maxWorkers int, userAgent, httpProxy, httpsProxy, noProxy string) *Prober {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	proxyFunc := util.NewProxyFunc(httpProxy, httpsProxy, noProxy)

	return &Prober{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent:  userAgent,
		maxWorkers: maxWorkers,
	}
}

// Probe diagnoses a single URL, retrying transient failures
func (p *Prober) Probe(ctx context.Context, rawURL string) Diagnostics {
	if !ValidateURL(rawURL) {
		return Diagnostics{
			URL:             rawURL,
			Error:           "Invalid URL format",
			Recommendations: []string{"Check URL format and try again"},
		}
	}

	var diag Diagnostics
	for attempt := 0; attempt < probeMaxRetries; attempt++ {
		diag = p.probeOnce(ctx, rawURL)
		if !isRetryableDiagnostics(diag) {
			break
		}
		if attempt < probeMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			probeSleepFunc(backoff)
		}
	}

	diag.Recommendations = recommendations(diag)
	return diag
}

// ProbeAll diagnoses URLs concurrently, preserving input order. URLs not
// yet started when ctx ends are reported as cancelled.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) []Diagnostics {
	results := make([]Diagnostics, len(urls))

	var g errgroup.Group
	g.SetLimit(max(1, p.maxWorkers))
	for i, u := range urls {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Diagnostics{URL: u, Error: "context cancelled"}
				return nil
			}
			results[i] = p.Probe(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// probeOnce issues a single HEAD request
func (p *Prober) probeOnce(ctx context.Context, rawURL string) Diagnostics {
	diag := Diagnostics{
		URL:        rawURL,
		IsNewsSite: IsNewsDomain(ExtractDomain(rawURL)),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		diag.Error = fmt.Sprintf("create request: %v", err)
		return diag
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		diag.Error = fmt.Sprintf("request failed: %v", err)
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.Accessible = true
	diag.StatusCode = resp.StatusCode
	diag.ContentType = resp.Header.Get("Content-Type")
	diag.ContentLength = resp.Header.Get("Content-Length")

	if resp.Request.URL.String() != rawURL {
		diag.FinalURL = resp.Request.URL.String()
	}

	return diag
}

// recommendations builds the human-readable advice for a probe result
func recommendations(diag Diagnostics) []string {
	recs := []string{}

	if !diag.IsNewsSite {
		recs = append(recs, "URL may not be from a news source")
	}

	if diag.Error != "" {
		recs = append(recs, "Check internet connection and URL accessibility")
		return recs
	}

	if diag.StatusCode != http.StatusOK {
		recs = append(recs, fmt.Sprintf("HTTP status %d - page may not be accessible", diag.StatusCode))
	}
	if !strings.Contains(diag.ContentType, "text/html") {
		recs = append(recs, "Content may not be HTML")
	}

	return recs
}

// isRetryableDiagnostics returns true for results that indicate transient failures
func isRetryableDiagnostics(diag Diagnostics) bool {
	if diag.StatusCode >= 500 && diag.StatusCode < 600 {
		return true
	}
	if diag.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if diag.Error != "" {
		return isRetryableNetworkError(diag.Error)
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
