package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"pulsefeed/internal/model"
)

// RSSProvider pages over a single RSS/Atom feed. Feeds carry no cursor,
// so the parsed item list is cut into pages the same way as Finnhub.
type RSSProvider struct {
	feedURL  string
	parser   *gofeed.Parser
	pageSize int
}

func NewRSSProvider(feedURL string, pageSize int) *RSSProvider {
	if pageSize < 1 {
		pageSize = 20
	}
	return &RSSProvider{
		feedURL:  feedURL,
		parser:   gofeed.NewParser(),
		pageSize: pageSize,
	}
}

func (p *RSSProvider) Name() string {
	return "RSS"
}

func (p *RSSProvider) FetchPage(ctx context.Context, cursor *Cursor, interests []string) (*Page, error) {
	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss fetch %s: %w", p.feedURL, err)
	}

	all := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		a := model.Article{
			ID:      articleID(item.Link),
			Title:   item.Title,
			Summary: truncate(stripHTML(summary), 300),
			Source:  feed.Title,
			URL:     item.Link,
		}
		if len(item.Categories) > 0 {
			a.Category = item.Categories[0]
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}
		if item.Image != nil {
			a.Image = item.Image.URL
		}

		all = append(all, a)
	}

	return slicePage(all, cursor, p.pageSize), nil
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:8])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
