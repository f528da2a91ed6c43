package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is what a single strategy attempt produced. Each attempt returns
// its own Result; strategies share no state.
type Result struct {
	Text        string
	Title       string
	Author      string
	PublishDate string
}

// Strategy is one way of turning a URL into article text
type Strategy interface {
	// Name identifies the strategy in ArticleContent.ExtractionMethod
	Name() string

	// Extract fetches and extracts the article. It must honor ctx.
	Extract(ctx context.Context, rawURL string) (*Result, error)
}

// HTMLFetcher retrieves raw page HTML
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, rawURL string) (string, error)
}

// blockSelector lists the elements treated as paragraphs when flattening HTML to text
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, figcaption"

// noiseSelector lists elements that never hold article prose
const noiseSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside, form, button"

// paragraphText flattens a selection into blank-line separated paragraphs.
// Nested blocks are emitted once, by their outermost block ancestor.
func paragraphText(sel *goquery.Selection) string {
	var paragraphs []string

	blocks := sel.Find(blockSelector)
	if blocks.Length() == 0 {
		if text := collapseSpace(sel.Text()); text != "" {
			return text
		}
		return ""
	}

	blocks.Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n\n")
}

// documentTitle returns the first h1, falling back to <title>
func documentTitle(doc *goquery.Document) string {
	if h1 := collapseSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return collapseSpace(doc.Find("title").First().Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
