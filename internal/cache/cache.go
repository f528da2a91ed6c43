package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ppiankov/skeptic/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key from the URL and the options that change the result
func CacheKey(rawURL string, opts model.AnalysisOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|cn=%t|ent=%t|src=%t",
		strings.TrimSpace(rawURL),
		opts.IncludeCounterNarrative,
		opts.IncludeEntityAnalysis,
		opts.IncludeSourceCheck,
	)
	return "skeptic:v1:" + hex.EncodeToString(h.Sum(nil))
}

// Stats summarizes response cache activity
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`

	// Evictions is set when the underlying cache counts removals
	Evictions uint64 `json:"evictions,omitempty"`
}

// ResponseCache stores successful analysis responses as JSON
type ResponseCache struct {
	cache  Cache
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResponseCache wraps a byte cache
func NewResponseCache(c Cache, ttl time.Duration) *ResponseCache {
	return &ResponseCache{cache: c, ttl: ttl}
}

// Get returns a copy of the cached response, or nil on miss
func (r *ResponseCache) Get(key string) *model.AnalysisResponse {
	data, ok := r.cache.Get(key)
	if !ok {
		r.misses.Add(1)
		return nil
	}
	var resp model.AnalysisResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		_ = r.cache.Delete(key)
		r.misses.Add(1)
		return nil
	}
	r.hits.Add(1)
	return &resp
}

// Stats reports hits and misses since creation. Entries and Evictions are
// filled when the underlying cache tracks them.
func (r *ResponseCache) Stats() Stats {
	s := Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
	if counter, ok := r.cache.(interface{ Len() int }); ok {
		s.Entries = counter.Len()
	}
	if evicter, ok := r.cache.(interface{ Evictions() uint64 }); ok {
		s.Evictions = evicter.Evictions()
	}
	return s
}

// Set stores resp. Failed responses are never cached.
func (r *ResponseCache) Set(key string, resp *model.AnalysisResponse) error {
	if resp == nil || !resp.Success {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return r.cache.Set(key, data, r.ttl)
}
