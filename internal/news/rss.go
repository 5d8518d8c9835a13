package news

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSSource fetches articles from a list of RSS/Atom feeds. A broken feed is
// logged and skipped so that one dead feed does not block the others.
type RSSSource struct {
	feeds  []string
	parser *gofeed.Parser
}

func NewRSSSource(feeds []string) *RSSSource {
	return &RSSSource{
		feeds:  feeds,
		parser: gofeed.NewParser(),
	}
}

func (s *RSSSource) Name() string {
	return "RSS"
}

func (s *RSSSource) Fetch(ctx context.Context) ([]Article, error) {
	var all []Article

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Warn("rss feed failed", "feed", feedURL, "error", err)
			continue
		}
		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}
			publishedAt := time.Time{}
			if item.PublishedParsed != nil {
				publishedAt = *item.PublishedParsed
			}
			all = append(all, Article{
				Title:       item.Title,
				Description: item.Description,
				URL:         item.Link,
				Source:      feed.Title,
				PublishedAt: publishedAt,
			})
		}
	}

	return all, nil
}
