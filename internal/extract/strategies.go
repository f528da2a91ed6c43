package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/skeptic/internal/extract/adapters"
	"github.com/ppiankov/skeptic/internal/model"
)

// Strategy names in default execution order
const (
	StrategyFast            = "fast"
	StrategyReadability     = "readability"
	StrategyReadabilityHTML = "readability-html"
	StrategyDOM             = "dom-heuristic"
	StrategyBrowser         = "browser"
	StrategyRawText         = "raw-text"
)

// DefaultStrategies builds the standard chain order, cheapest first.
// The browser strategy is included only when enabled in config.
func DefaultStrategies(fetcher HTMLFetcher, cfg model.ExtractionConfig, userAgent string) []Strategy {
	all := []Strategy{
		NewFastStrategy(fetcher),
		NewReadabilityStrategy(fetcher),
		NewReadabilityHTMLStrategy(fetcher),
		NewDOMStrategy(fetcher, adapters.NewRegistry()),
	}
	if cfg.Browser {
		all = append(all, NewBrowserStrategy(userAgent, cfg.BrowserTimeout))
	}
	all = append(all, NewRawTextStrategy(fetcher))

	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	strategies := make([]Strategy, 0, len(all))
	for _, s := range all {
		if !disabled[s.Name()] {
			strategies = append(strategies, s)
		}
	}
	return strategies
}

// fast

// fastSkipTags never contribute text
var fastSkipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Nav: true, atom.Header: true, atom.Footer: true, atom.Aside: true,
	atom.Form: true, atom.Iframe: true, atom.Svg: true, atom.Button: true,
	atom.Select: true, atom.Template: true,
}

// fastBlockTags are emitted as paragraphs
var fastBlockTags = map[atom.Atom]bool{
	atom.P: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Li: true,
}

const (
	fastMinBlockChars   = 30
	fastMaxLinkDensity  = 0.5
	fastMinHeadingChars = 8
)

// FastStrategy walks the parsed DOM and keeps prose blocks with low link density
type FastStrategy struct {
	fetcher HTMLFetcher
}

// NewFastStrategy creates the boilerplate-removing DOM walker
func NewFastStrategy(fetcher HTMLFetcher) *FastStrategy {
	return &FastStrategy{fetcher: fetcher}
}

// Name returns the strategy name
func (s *FastStrategy) Name() string { return StrategyFast }

// Extract fetches the page and extracts its prose blocks
func (s *FastStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return fastFromHTML(page)
}

func fastFromHTML(page string) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var (
		blocks   []string
		h1       string
		docTitle string
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if fastSkipTags[n.DataAtom] {
				return
			}
			switch {
			case n.DataAtom == atom.Title:
				if docTitle == "" {
					docTitle = collapseSpace(nodeText(n))
				}
				return
			case n.DataAtom == atom.H1:
				if h1 == "" {
					h1 = collapseSpace(nodeText(n))
				}
				return
			case fastBlockTags[n.DataAtom]:
				if text, ok := keepBlock(n); ok {
					blocks = append(blocks, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	title := h1
	if title == "" {
		title = docTitle
	}

	return &Result{
		Text:  strings.Join(blocks, "\n\n"),
		Title: title,
	}, nil
}

// keepBlock decides whether a block carries article prose
func keepBlock(n *html.Node) (string, bool) {
	text := collapseSpace(nodeText(n))
	if text == "" {
		return "", false
	}

	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return text, len(text) >= fastMinHeadingChars
	}

	if len(text) < fastMinBlockChars {
		return "", false
	}

	linkText := collapseSpace(linkTextOf(n))
	if float64(len(linkText))/float64(len(text)) > fastMaxLinkDensity {
		return "", false
	}
	return text, true
}

// nodeText concatenates the text under n, skipping non-content elements
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if fastSkipTags[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			b.WriteString(" ")
		}
	}
	walk(n)
	return b.String()
}

// linkTextOf returns the text inside anchors under n
func linkTextOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			b.WriteString(nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// readability

// ReadabilityStrategy runs the readability article parser and returns its text with metadata
type ReadabilityStrategy struct {
	fetcher HTMLFetcher
}

// NewReadabilityStrategy creates the readability text strategy
func NewReadabilityStrategy(fetcher HTMLFetcher) *ReadabilityStrategy {
	return &ReadabilityStrategy{fetcher: fetcher}
}

// Name returns the strategy name
func (s *ReadabilityStrategy) Name() string { return StrategyReadability }

// Extract fetches the page and parses it with readability
func (s *ReadabilityStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return readabilityFromHTML(page, rawURL)
}

func parseReadability(page, rawURL string) (readability.Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("parse URL: %w", err)
	}
	article, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("readability: %w", err)
	}
	return article, nil
}

func readabilityFromHTML(page, rawURL string) (*Result, error) {
	article, err := parseReadability(page, rawURL)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = collapseSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	return &Result{
		Text:        strings.Join(paragraphs, "\n\n"),
		Title:       strings.TrimSpace(article.Title),
		Author:      strings.TrimSpace(article.Byline),
		PublishDate: formatPublished(article.PublishedTime),
	}, nil
}

func formatPublished(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// readability-html

// ReadabilityHTMLStrategy re-parses readability's cleaned HTML into paragraphs
type ReadabilityHTMLStrategy struct {
	fetcher HTMLFetcher
}

// NewReadabilityHTMLStrategy creates the readability HTML strategy
func NewReadabilityHTMLStrategy(fetcher HTMLFetcher) *ReadabilityHTMLStrategy {
	return &ReadabilityHTMLStrategy{fetcher: fetcher}
}

// Name returns the strategy name
func (s *ReadabilityHTMLStrategy) Name() string { return StrategyReadabilityHTML }

// Extract fetches the page and flattens readability's article HTML
func (s *ReadabilityHTMLStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return readabilityHTMLFromHTML(page, rawURL)
}

func readabilityHTMLFromHTML(page, rawURL string) (*Result, error) {
	article, err := parseReadability(page, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("parse article HTML: %w", err)
	}

	return &Result{
		Text:  paragraphText(doc.Selection),
		Title: strings.TrimSpace(article.Title),
	}, nil
}

// dom-heuristic

// DOMStrategy picks the article container by CSS selector, site adapters first
type DOMStrategy struct {
	fetcher  HTMLFetcher
	registry *adapters.Registry
}

// NewDOMStrategy creates the selector heuristic strategy
func NewDOMStrategy(fetcher HTMLFetcher, registry *adapters.Registry) *DOMStrategy {
	if registry == nil {
		registry = adapters.NewRegistry()
	}
	return &DOMStrategy{fetcher: fetcher, registry: registry}
}

// Name returns the strategy name
func (s *DOMStrategy) Name() string { return StrategyDOM }

// Extract fetches the page and collects text from the best matching container
func (s *DOMStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.fromHTML(page, rawURL)
}

func (s *DOMStrategy) fromHTML(page, rawURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	// Title before removal, h1 often lives in the header
	title := documentTitle(doc)

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	adapter := s.registry.FindAdapter(rawURL)
	adapter.Clean(doc)

	selectors := adapter.BodySelectors(rawURL)
	if generic := s.registry.Generic(); adapter != generic {
		selectors = append(selectors, generic.BodySelectors(rawURL)...)
	}

	for _, sel := range selectors {
		if text := selectionText(doc, sel); text != "" {
			return &Result{Text: text, Title: title}, nil
		}
	}

	for _, sel := range []string{"main", "body"} {
		if text := selectionText(doc, sel); text != "" {
			return &Result{Text: text, Title: title}, nil
		}
	}

	return &Result{Title: title}, nil
}

// selectionText joins the paragraphs of every outermost match of sel
func selectionText(doc *goquery.Document, sel string) string {
	var parts []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(sel).Length() > 0 {
			return
		}
		if text := paragraphText(s); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// raw-text

// RawTextStrategy strips every tag and keeps the remaining text lines
type RawTextStrategy struct {
	fetcher HTMLFetcher
}

// NewRawTextStrategy creates the tag stripping strategy
func NewRawTextStrategy(fetcher HTMLFetcher) *RawTextStrategy {
	return &RawTextStrategy{fetcher: fetcher}
}

// Name returns the strategy name
func (s *RawTextStrategy) Name() string { return StrategyRawText }

// Extract fetches the page and strips its markup
func (s *RawTextStrategy) Extract(ctx context.Context, rawURL string) (*Result, error) {
	page, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return rawTextFromHTML(page), nil
}

// rawBlockTags end the current line when opened or closed
var rawBlockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Blockquote: true, atom.Pre: true,
}

func rawTextFromHTML(page string) *Result {
	z := html.NewTokenizer(strings.NewReader(page))

	var (
		lines   []string
		current strings.Builder
		skip    int
		inTitle bool
		title   string
	)

	flush := func() {
		if line := collapseSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed document, keep what was read
			flush()
			return &Result{Text: strings.Join(lines, "\n\n"), Title: title}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch a {
			case atom.Script, atom.Style, atom.Noscript:
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			case atom.Title:
				inTitle = tt == html.StartTagToken
				continue
			}
			if rawBlockTags[a] {
				flush()
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if inTitle {
				if title == "" {
					title = collapseSpace(string(z.Text()))
				}
				continue
			}
			current.Write(z.Text())
			current.WriteByte(' ')
		}
	}
}
