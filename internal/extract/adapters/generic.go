package adapters

import "github.com/PuerkitoBio/goquery"

// genericSelectors are the common article containers used across publishing platforms
var genericSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"#content",
	".story-body",
	".article-body",
	`[data-testid="article-body"]`,
}

// GenericAdapter is the fallback adapter for unknown domains
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(rawURL string) bool {
	return true
}

// BodySelectors returns the common article containers
func (a *GenericAdapter) BodySelectors(rawURL string) []string {
	out := make([]string, len(genericSelectors))
	copy(out, genericSelectors)
	return out
}

// Clean removes sidebars and menus that commonly sit inside content wrappers
func (a *GenericAdapter) Clean(doc *goquery.Document) {
	a.RemoveAll(doc, ".sidebar", ".menu", ".share", ".social", ".related", ".newsletter", ".advertisement", ".ad")
}
