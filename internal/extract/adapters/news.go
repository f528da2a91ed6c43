package adapters

import "github.com/PuerkitoBio/goquery"

// newsSite maps a publisher domain to its article body selectors
type newsSite struct {
	domain    string
	selectors []string
}

// NewsAdapter knows the article markup of major news publishers
type NewsAdapter struct {
	BaseAdapter
	sites []newsSite
}

// NewNewsAdapter creates a new news publisher adapter
func NewNewsAdapter() *NewsAdapter {
	return &NewsAdapter{
		sites: []newsSite{
			{domain: "nytimes.com", selectors: []string{`section[name="articleBody"]`}},
			{domain: "bbc.com", selectors: []string{`[data-component="text-block"]`, "article"}},
			{domain: "bbc.co.uk", selectors: []string{`[data-component="text-block"]`, "article"}},
			{domain: "theguardian.com", selectors: []string{`[data-gu-name="body"]`, ".article-body-commercial-selector"}},
			{domain: "reuters.com", selectors: []string{`[data-testid^="paragraph-"]`, ".article-body__content"}},
			{domain: "apnews.com", selectors: []string{".RichTextStoryBody", ".Article"}},
			{domain: "cnn.com", selectors: []string{".article__content", ".zn-body__paragraph"}},
			{domain: "washingtonpost.com", selectors: []string{".article-body", `[data-qa="article-body"]`}},
			{domain: "npr.org", selectors: []string{"#storytext"}},
			{domain: "politico.com", selectors: []string{".story-text"}},
			{domain: "bloomberg.com", selectors: []string{".body-copy", ".body-content"}},
		},
	}
}

// Name returns the adapter name
func (a *NewsAdapter) Name() string {
	return "news"
}

// CanHandle checks if the URL belongs to a known publisher
func (a *NewsAdapter) CanHandle(rawURL string) bool {
	return a.site(rawURL) != nil
}

// BodySelectors returns the body selectors of the publisher behind the URL
func (a *NewsAdapter) BodySelectors(rawURL string) []string {
	if s := a.site(rawURL); s != nil {
		return s.selectors
	}
	return nil
}

// Clean removes inline promos, newsletter signups and recirculation blocks
func (a *NewsAdapter) Clean(doc *goquery.Document) {
	a.RemoveAll(doc,
		`[data-testid="inline-message"]`,
		`[data-component="links-block"]`,
		`[data-component="related-internal-links"]`,
		".ad-slot",
		".newsletter-signup",
		".related-content",
		"figure",
	)
}

func (a *NewsAdapter) site(rawURL string) *newsSite {
	host := a.Host(rawURL)
	if host == "" {
		return nil
	}
	for i := range a.sites {
		if a.HostMatches(host, a.sites[i].domain) {
			return &a.sites[i]
		}
	}
	return nil
}
