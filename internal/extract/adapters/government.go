package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GovernmentAdapter reads press releases and legislation on government sites
type GovernmentAdapter struct {
	BaseAdapter
	domains []string
}

// NewGovernmentAdapter creates a new government site adapter
func NewGovernmentAdapter() *GovernmentAdapter {
	return &GovernmentAdapter{
		domains: []string{
			"legislation.gov.uk",
			"law.cornell.edu",
			"gov.uk",
			"justice.gov",
			"europa.eu",
		},
	}
}

// Name returns the adapter name
func (a *GovernmentAdapter) Name() string {
	return "government"
}

// CanHandle checks for known government and legal hosts or a .gov TLD
func (a *GovernmentAdapter) CanHandle(rawURL string) bool {
	host := a.Host(rawURL)
	if host == "" {
		return false
	}
	if strings.HasSuffix(host, ".gov") || strings.Contains(host, ".gov.") {
		return true
	}
	for _, domain := range a.domains {
		if a.HostMatches(host, domain) {
			return true
		}
	}
	return false
}

// BodySelectors returns the body containers of common government design systems
func (a *GovernmentAdapter) BodySelectors(rawURL string) []string {
	return []string{
		".govuk-govspeak",
		".gem-c-govspeak",
		"#viewLegSnippet",
		".usa-prose",
		".field--name-body",
		"#main-content",
	}
}

// Clean drops breadcrumbs, feedback widgets and related-content panels
func (a *GovernmentAdapter) Clean(doc *goquery.Document) {
	a.RemoveAll(doc,
		".govuk-breadcrumbs",
		".gem-c-related-navigation",
		".gem-c-feedback",
		".usa-breadcrumb",
		".usa-banner",
	)
}
