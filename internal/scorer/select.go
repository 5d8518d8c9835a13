package scorer

import (
	"context"
	"log/slog"
	"sort"

	"positivebot/internal/news"
)

// Candidate is an article that passed both thresholds, ranked by the
// average of its sentiment and relevance scores.
type Candidate struct {
	Combined float64
	Article  news.Article
}

// Select scores every article, keeps those strictly above both thresholds
// and returns them sorted by combined score, best first. Ties keep input
// order. The caller walks the result in order, skipping duplicates, and
// stops after the first successful publication.
func Select(ctx context.Context, articles []news.Article, s Scorer, sentimentThreshold, relevanceThreshold float64) []Candidate {
	var selected []Candidate

	for _, a := range articles {
		score := s.Score(ctx, a.Text())

		if score.Sentiment > sentimentThreshold && score.Relevance > relevanceThreshold {
			combined := (score.Sentiment + score.Relevance) / 2
			selected = append(selected, Candidate{Combined: combined, Article: a})
			slog.Info("article selected", "title", a.Title, "score", combined)
		} else {
			slog.Debug("article rejected", "title", a.Title,
				"sentiment", score.Sentiment, "relevance", score.Relevance)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Combined > selected[j].Combined
	})

	return selected
}
