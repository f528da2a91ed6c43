package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/cache"
	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/validate"
)

// shutdownTimeout bounds graceful shutdown after the serve context ends
const shutdownTimeout = 10 * time.Second

// Analyzer runs a full article analysis
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string, opts model.AnalysisOptions) *model.AnalysisResponse
	ProviderName() string
}

// cacheReporter is implemented by analyzers that keep a response cache
type cacheReporter interface {
	CacheStats() (cache.Stats, bool)
}

// Prober diagnoses whether a URL can be fetched
type Prober interface {
	Probe(ctx context.Context, rawURL string) validate.Diagnostics
}

// Server exposes the analyzer over HTTP
type Server struct {
	echo         *echo.Echo
	analyzer     Analyzer
	prober       Prober
	defaults     model.AnalysisOptions
	metrics      *Metrics
	registry     *prometheus.Registry
	exposeMetric bool
	cacheEnabled bool
	version      string
	logger       zerolog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and error logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVersion sets the version reported by / and /health
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithDefaults sets the analysis options used by /analyze and the GET routes
func WithDefaults(opts model.AnalysisOptions) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithCacheEnabled reports cache status on /health
func WithCacheEnabled(enabled bool) Option {
	return func(s *Server) { s.cacheEnabled = enabled }
}

// WithMetricsEndpoint toggles the /metrics route
func WithMetricsEndpoint(enabled bool) Option {
	return func(s *Server) { s.exposeMetric = enabled }
}

// analyzeRequest is the body of POST /analyze
type analyzeRequest struct {
	URL string `json:"url"`
}

// analyzeFullRequest is the body of POST /analyze-full. Omitted options
// keep the server defaults.
type analyzeFullRequest struct {
	URL string `json:"url"`
	model.AnalysisOptions
}

// reportResponse is returned by POST /analyze and GET /analyze/*
type reportResponse struct {
	Success        bool    `json:"success"`
	MarkdownReport string  `json:"markdown_report"`
	ProcessingTime float64 `json:"processing_time"`
	URL            string  `json:"url"`
	RequestID      string  `json:"request_id,omitempty"`
	Cached         bool    `json:"cached,omitempty"`
}

// New creates a server with its routes and middleware registered
func New(analyzer Analyzer, prober Prober, opts ...Option) *Server {
	s := &Server{
		analyzer:     analyzer,
		prober:       prober,
		defaults:     model.DefaultAnalysisOptions(),
		registry:     prometheus.NewRegistry(),
		exposeMetric: true,
		version:      "dev",
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = NewMetrics(s.registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	e.Use(s.metrics.Middleware())

	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.POST("/analyze", s.analyzePost)
	e.POST("/analyze-full", s.analyzeFull)
	e.GET("/analyze/*", s.analyzeGet)
	e.GET("/report/*", s.report)
	e.GET("/test/*", s.probe)
	if s.exposeMetric {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	s.echo = e
	return s
}

// Handler returns the HTTP handler for mounting or testing
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":     "skeptic",
		"version":     s.version,
		"description": "News article credibility and bias analysis",
		"endpoints": map[string]string{
			"analyze":      "POST /analyze",
			"analyze_full": "POST /analyze-full",
			"analyze_get":  "GET /analyze/{url}",
			"report":       "GET /report/{url}",
			"test":         "GET /test/{url}",
			"health":       "GET /health",
			"metrics":      "GET /metrics",
		},
	})
}

func (s *Server) health(c echo.Context) error {
	body := map[string]interface{}{
		"status":    "healthy",
		"version":   s.version,
		"provider":  s.analyzer.ProviderName(),
		"cache":     s.cacheEnabled,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if reporter, ok := s.analyzer.(cacheReporter); ok {
		if stats, enabled := reporter.CacheStats(); enabled {
			body["cache_stats"] = stats
		}
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) analyzePost(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return s.analyzeReport(c, req.URL)
}

func (s *Server) analyzeGet(c echo.Context) error {
	return s.analyzeReport(c, wildcardURL(c))
}

// analyzeReport runs an analysis with default options and returns the
// Markdown report in a JSON envelope
func (s *Server) analyzeReport(c echo.Context, rawURL string) error {
	resp, err := s.run(c, rawURL, s.defaults)
	if err != nil {
		return err
	}
	if !resp.Success {
		return echo.NewHTTPError(http.StatusInternalServerError, resp.Error)
	}
	return c.JSON(http.StatusOK, reportResponse{
		Success:        true,
		MarkdownReport: resp.MarkdownReport,
		ProcessingTime: resp.ProcessingTime,
		URL:            rawURL,
		RequestID:      resp.RequestID,
		Cached:         resp.Cached,
	})
}

// analyzeFull returns the full response, including failures, as JSON
func (s *Server) analyzeFull(c echo.Context) error {
	req := analyzeFullRequest{AnalysisOptions: s.defaults}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	resp, err := s.run(c, req.URL, req.AnalysisOptions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) report(c echo.Context) error {
	resp, err := s.run(c, wildcardURL(c), s.defaults)
	if err != nil {
		return err
	}
	if !resp.Success || resp.MarkdownReport == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate report")
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(resp.MarkdownReport))
}

func (s *Server) probe(c echo.Context) error {
	rawURL := wildcardURL(c)
	if !validate.ValidateURL(rawURL) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid URL: "+rawURL)
	}
	return c.JSON(http.StatusOK, s.prober.Probe(c.Request().Context(), rawURL))
}

// run validates the URL, analyzes it and records metrics
func (s *Server) run(c echo.Context, rawURL string, opts model.AnalysisOptions) (*model.AnalysisResponse, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !validate.ValidateURL(rawURL) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid URL: "+rawURL)
	}

	resp := s.analyzer.Analyze(c.Request().Context(), rawURL, opts)
	if resp == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "analysis returned no response")
	}
	s.metrics.ObserveAnalysis(resp.Success, resp.Cached, resp.ProcessingTime)
	return resp, nil
}

// handleError writes every error as {"error": message}
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	event := s.logger.Warn()
	if code >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Int("status", code).Str("method", req.Method).Str("path", req.URL.Path).Msg(msg)

	if c.Response().Committed {
		return
	}
	body := map[string]interface{}{"error": msg}
	if code == http.StatusNotFound {
		body["available_endpoints"] = []string{"/", "/health", "/analyze", "/analyze-full", "/report/{url}", "/test/{url}"}
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			s.logger.Info().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

// wildcardURL rebuilds the target URL from a /route/* path. A missing
// scheme defaults to https and the request's query string is carried over.
func wildcardURL(c echo.Context) string {
	target := strings.TrimSpace(c.Param("*"))
	if target == "" {
		return ""
	}
	// Proxies and routers may collapse "https://" into "https:/".
	for _, scheme := range []string{"http:/", "https:/"} {
		if strings.HasPrefix(target, scheme) && !strings.HasPrefix(target, scheme+"/") {
			target = scheme + "/" + strings.TrimPrefix(target, scheme)
		}
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	if q := c.QueryString(); q != "" {
		target += "?" + q
	}
	return target
}
