package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/ppiankov/skeptic/internal/model"
)

// wordsPerMinute is the reading speed used for ReadingTime
const wordsPerMinute = 200

// Metadata is what a page declares about itself
type Metadata struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	Description     string `json:"description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	WordCount       int    `json:"word_count,omitempty"`
	ReadingTime     int    `json:"reading_time,omitempty"` // minutes
}

// Enricher fills missing article fields from page metadata
type Enricher struct {
	fetcher HTMLFetcher
	logger  zerolog.Logger
}

// NewEnricher creates a metadata enricher
func NewEnricher(fetcher HTMLFetcher, logger zerolog.Logger) *Enricher {
	return &Enricher{fetcher: fetcher, logger: logger}
}

// Enrich fetches the page when title or author is missing and fills only
// the empty Title, Author and PublishDate fields. Failures are logged and
// the article is returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, article *model.ArticleContent, rawURL string) *model.ArticleContent {
	if article == nil || (article.Title != "" && article.Author != "") {
		return article
	}

	page, err := e.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		e.logger.Warn().
			Err(fmt.Errorf("%w: %v", model.ErrEnrichmentFailed, err)).
			Str("url", rawURL).
			Msg("metadata enrichment skipped")
		return article
	}

	meta := ParseHTMLMetadata(page)

	if article.Title == "" {
		article.Title = meta.Title
	}
	if article.Author == "" {
		article.Author = meta.Author
	}
	if article.PublishDate == "" {
		article.PublishDate = meta.PublicationDate
	}

	e.logger.Debug().
		Str("url", rawURL).
		Str("title", article.Title).
		Str("author", article.Author).
		Msg("metadata enriched")

	return article
}

// ParseHTMLMetadata reads <title>, meta tags and JSON-LD article data.
// JSON-LD only fills fields the meta tags left empty.
func ParseHTMLMetadata(page string) Metadata {
	var meta Metadata

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return meta
	}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(s.AttrOr("name", ""))
		property := strings.ToLower(s.AttrOr("property", ""))
		content := strings.TrimSpace(s.AttrOr("content", ""))

		switch {
		case name == "author" || name == "article:author":
			meta.Author = content
		case name == "description" || property == "og:description":
			meta.Description = content
		case name == "keywords":
			meta.Keywords = content
		case name == "article:published_time" || name == "pubdate" || property == "article:published_time":
			meta.PublicationDate = content
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		for _, obj := range jsonLDArticles(data) {
			if meta.Author == "" {
				meta.Author = jsonLDAuthor(obj["author"])
			}
			if meta.PublicationDate == "" {
				meta.PublicationDate, _ = obj["datePublished"].(string)
			}
			if meta.Title == "" {
				meta.Title, _ = obj["headline"].(string)
			}
		}
	})

	doc.Find("script, style, noscript").Remove()
	if words := len(strings.Fields(doc.Text())); words > 0 {
		meta.WordCount = words
		meta.ReadingTime = max(1, int(math.Round(float64(words)/wordsPerMinute)))
	}

	return meta
}

// jsonLDArticles collects Article and NewsArticle objects from a JSON-LD
// value, looking inside arrays and @graph.
func jsonLDArticles(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, jsonLDArticles(item)...)
		}
	case map[string]any:
		if isArticleType(t["@type"]) {
			out = append(out, t)
		}
		if graph, ok := t["@graph"]; ok {
			out = append(out, jsonLDArticles(graph)...)
		}
	}
	return out
}

func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "NewsArticle" || t == "Article"
	case []any:
		for _, item := range t {
			if isArticleType(item) {
				return true
			}
		}
	}
	return false
}

// jsonLDAuthor accepts an author object, a list of authors or a plain name
func jsonLDAuthor(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		name, _ := t["name"].(string)
		return strings.TrimSpace(name)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return jsonLDAuthor(t[0])
	}
	return ""
}
