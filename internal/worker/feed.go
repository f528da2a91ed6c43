package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// ReadURLsFromFeed returns up to limit article links from an RSS or Atom
// feed, newest first as the feed lists them. A non-positive limit reads
// every item.
func ReadURLsFromFeed(ctx context.Context, feedURL, userAgent string, limit int) ([]string, error) {
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	return feedLinks(feed, limit), nil
}

func feedLinks(feed *gofeed.Feed, limit int) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, item := range feed.Items {
		if limit > 0 && len(urls) >= limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		urls = append(urls, link)
	}

	return urls
}
