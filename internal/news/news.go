package news

import (
	"context"
	"time"
)

// Article is a single fetched news item. Immutable once fetched.
type Article struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Source fetches recent articles from one provider.
type Source interface {
	Fetch(ctx context.Context) ([]Article, error)
	Name() string
}

// Text is the string the scorers and the duplicate check operate on.
func (a Article) Text() string {
	if a.Description == "" {
		return a.Title
	}
	return a.Title + " " + a.Description
}

// FetchAll collects articles from every source. A failing source is logged
// by the caller and skipped; one dead provider must not kill the run.
func FetchAll(ctx context.Context, sources []Source, onError func(name string, err error)) []Article {
	var all []Article
	for _, s := range sources {
		articles, err := s.Fetch(ctx)
		if err != nil {
			if onError != nil {
				onError(s.Name(), err)
			}
			continue
		}
		all = append(all, articles...)
	}
	return all
}
