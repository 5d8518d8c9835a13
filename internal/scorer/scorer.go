// Package scorer classifies candidate texts for positive sentiment and
// topical relevance and ranks articles for publication.
package scorer

import "context"

// Score is the (sentiment, relevance) pair produced for a text. The lexical
// scorer yields sentiment in [-1,1] and relevance as a keyword hit count;
// the model scorer yields both in [0,1]. Thresholds are configured to match
// the chosen strategy.
type Score struct {
	Sentiment float64
	Relevance float64
}

// Scorer produces a (sentiment, relevance) pair for a text.
type Scorer interface {
	Score(ctx context.Context, text string) Score
}
