package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/skeptic/internal/extract/adapters"
	"github.com/ppiankov/skeptic/internal/model"
)

type staticFetcher struct {
	html  string
	err   error
	calls int
}

func (f *staticFetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	f.calls++
	return f.html, f.err
}

const budgetParagraph = "The city council approved a new budget on Tuesday after a long debate about school funding. " +
	"Road repairs were also discussed, and members said the plan would take effect next spring."

func articlePage() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Council approves budget</title>
<meta name="author" content="Jane Reporter">
<script>var tracking = "ignore me";</script>
<style>p { color: red; }</style>
</head><body>
<header><nav><a href="/">Home</a> <a href="/news">News</a></nav><h1>Council approves budget</h1></header>
<article>`)
	for i := 0; i < 5; i++ {
		b.WriteString("<p>" + budgetParagraph + "</p>\n")
	}
	b.WriteString(`<p><a href="/a">Related story one about other things</a> <a href="/b">Related story two</a></p>
</article>
<aside><p>Sidebar text that should never appear in the article body at all.</p></aside>
<footer><p>Copyright notice and other footer text that is long enough.</p></footer>
</body></html>`)
	return b.String()
}

func TestFastStrategy(t *testing.T) {
	fetcher := &staticFetcher{html: articlePage()}
	res, err := NewFastStrategy(fetcher).Extract(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := strings.Count(res.Text, budgetParagraph); got != 5 {
		t.Errorf("Expected 5 paragraphs, found %d in %q", got, res.Text)
	}
	if strings.Count(res.Text, "\n\n") != 4 {
		t.Errorf("Expected paragraphs separated by blank lines: %q", res.Text)
	}
	for _, unwanted := range []string{"Sidebar", "Copyright", "tracking", "Related story", "Home"} {
		if strings.Contains(res.Text, unwanted) {
			t.Errorf("Fast text contains %q", unwanted)
		}
	}
	if res.Title != "Council approves budget" {
		t.Errorf("Unexpected title %q", res.Title)
	}
}

func TestFastStrategyFetchError(t *testing.T) {
	fetcher := &staticFetcher{err: errors.New("status 503")}
	if _, err := NewFastStrategy(fetcher).Extract(context.Background(), testURL); err == nil {
		t.Fatal("Expected fetch error to propagate")
	}
}

func TestReadabilityStrategies(t *testing.T) {
	page := articlePage()

	tests := []struct {
		name     string
		strategy Strategy
	}{
		{StrategyReadability, NewReadabilityStrategy(&staticFetcher{html: page})},
		{StrategyReadabilityHTML, NewReadabilityHTMLStrategy(&staticFetcher{html: page})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.strategy.Name() != tt.name {
				t.Errorf("Name() = %q", tt.strategy.Name())
			}
			res, err := tt.strategy.Extract(context.Background(), testURL)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(res.Text, "school funding") {
				t.Errorf("Expected article prose, got %q", res.Text)
			}
			if strings.Contains(res.Text, "ignore me") {
				t.Error("Script content leaked into text")
			}
			if !strings.Contains(res.Title, "Council approves budget") {
				t.Errorf("Unexpected title %q", res.Title)
			}
		})
	}
}

func TestReadabilityHTMLSeparatesParagraphs(t *testing.T) {
	res, err := readabilityHTMLFromHTML(articlePage(), testURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Count(res.Text, "\n\n") < 3 {
		t.Errorf("Expected at least 3 paragraph breaks, got %q", res.Text)
	}
}

func TestDOMStrategy(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		page    string
		want    string
		exclude string
	}{
		{
			name: "publisher adapter",
			url:  "https://www.nytimes.com/2024/05/01/nyregion/budget.html",
			page: `<html><body><div class="content"><p>Promo copy in a generic wrapper.</p></div>
				<section name="articleBody"><p>Publisher body paragraph.</p></section></body></html>`,
			want:    "Publisher body paragraph.",
			exclude: "Promo copy",
		},
		{
			name:    "generic selector",
			url:     "https://blog.example.org/post",
			page:    `<html><body><div class="entry-content"><p>First.</p><p>Second.</p></div><div class="other"><p>Noise.</p></div></body></html>`,
			want:    "First.\n\nSecond.",
			exclude: "Noise",
		},
		{
			name:    "body fallback",
			url:     "https://example.org/page",
			page:    `<html><body><nav>Menu</nav><p>Only paragraph.</p><footer>Foot</footer></body></html>`,
			want:    "Only paragraph.",
			exclude: "Menu",
		},
		{
			name:    "nested matches emitted once",
			url:     "https://example.org/nested",
			page:    `<html><body><article><p>Outer.</p><article><p>Inner.</p></article></article></body></html>`,
			want:    "Outer.\n\nInner.",
			exclude: "Inner.\n\nInner.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDOMStrategy(&staticFetcher{html: tt.page}, adapters.NewRegistry())
			res, err := s.Extract(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("Text = %q, want %q", res.Text, tt.want)
			}
			if strings.Contains(res.Text, tt.exclude) {
				t.Errorf("Text contains %q", tt.exclude)
			}
		})
	}
}

func TestDOMStrategyTitle(t *testing.T) {
	page := `<html><head><title>Tab title</title></head><body><header><h1>Headline</h1></header><article><p>Body.</p></article></body></html>`
	res, err := NewDOMStrategy(&staticFetcher{html: page}, nil).Extract(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Title != "Headline" {
		t.Errorf("Expected h1 title, got %q", res.Title)
	}
}

func TestRawTextStrategy(t *testing.T) {
	page := `<html><head><title>Raw page</title><script>alert("x")</script></head>
<body><div>First block of text.</div><p>Second <b>bold</b> block.</p><style>.x{}</style></body></html>`

	res, err := NewRawTextStrategy(&staticFetcher{html: page}).Extract(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "First block of text.\n\nSecond bold block."
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if res.Title != "Raw page" {
		t.Errorf("Title = %q", res.Title)
	}
}

func TestDefaultStrategies(t *testing.T) {
	fetcher := &staticFetcher{}

	names := func(ss []Strategy) string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name())
		}
		return strings.Join(out, ",")
	}

	got := names(DefaultStrategies(fetcher, model.ExtractionConfig{}, "ua"))
	if got != "fast,readability,readability-html,dom-heuristic,raw-text" {
		t.Errorf("default order = %q", got)
	}

	got = names(DefaultStrategies(fetcher, model.ExtractionConfig{Browser: true}, "ua"))
	if got != "fast,readability,readability-html,dom-heuristic,browser,raw-text" {
		t.Errorf("browser order = %q", got)
	}

	got = names(DefaultStrategies(fetcher, model.ExtractionConfig{Disabled: []string{"Fast", " raw-text"}}, "ua"))
	if got != "readability,readability-html,dom-heuristic" {
		t.Errorf("disabled order = %q", got)
	}
}

func TestBrowserStrategyUsesRenderedDOM(t *testing.T) {
	s := NewBrowserStrategy("ua", 0)
	if s.Timeout() != DefaultBrowserTimeout {
		t.Errorf("Timeout() = %v", s.Timeout())
	}

	s.render = func(ctx context.Context, rawURL string) (string, error) {
		return articlePage(), nil
	}
	res, err := s.Extract(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "school funding") {
		t.Errorf("Expected rendered prose, got %q", res.Text)
	}
}
