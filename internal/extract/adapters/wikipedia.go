package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WikipediaAdapter reads encyclopedia articles rendered by MediaWiki
type WikipediaAdapter struct {
	BaseAdapter
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string) bool {
	return strings.HasSuffix(a.Host(rawURL), "wikipedia.org")
}

// BodySelectors returns the MediaWiki content containers
func (a *WikipediaAdapter) BodySelectors(rawURL string) []string {
	return []string{".mw-parser-output", "#mw-content-text", "#bodyContent"}
}

// Clean strips citation markers, edit links, navigation boxes and infoboxes
func (a *WikipediaAdapter) Clean(doc *goquery.Document) {
	a.RemoveAll(doc,
		"sup.reference",
		".mw-editsection",
		".navbox",
		".infobox",
		".hatnote",
		".reflist",
		".mw-references-wrap",
		"#toc",
		".toc",
		"table",
	)
}
