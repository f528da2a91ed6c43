package adapters

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Adapter describes where a site keeps its article body
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter knows the site behind the URL
	CanHandle(rawURL string) bool

	// BodySelectors returns CSS selectors for the article body, most specific first
	BodySelectors(rawURL string) []string

	// Clean removes site furniture from the document before text is collected
	Clean(doc *goquery.Document)
}

// Registry manages site adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewWikipediaAdapter())
	registry.Register(NewNewsAdapter())
	registry.Register(NewGovernmentAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL
func (r *Registry) FindAdapter(rawURL string) Adapter {
	// Try specific adapters first
	for _, adapter := range r.adapters {
		if adapter.CanHandle(rawURL) {
			return adapter
		}
	}

	// Fall back to generic adapter
	return r.generic
}

// Generic returns the fallback adapter
func (r *Registry) Generic() Adapter {
	return r.generic
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// RemoveAll drops every element matching the selectors
func (b *BaseAdapter) RemoveAll(doc *goquery.Document, selectors ...string) {
	for _, sel := range selectors {
		doc.Find(sel).Remove()
	}
}

// Host returns the lowercased host of a URL without a leading "www."
func (b *BaseAdapter) Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// HostMatches reports whether host equals domain or is a subdomain of it
func (b *BaseAdapter) HostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
