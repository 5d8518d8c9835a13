package scorer

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
)

// growthKeywords are the fixed relevance markers for the growth/development
// topic domain. Each keyword found in the text adds one relevance point.
var growthKeywords = []string{
	"growth", "development", "success", "boom", "investment", "expansion",
	"milestone", "achievement", "launched", "innovation", "breakthrough",
}

// LexicalScorer scores sentiment with a general-purpose polarity analyzer
// and relevance by counting domain keyword hits. It makes no network calls.
type LexicalScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	keywords []string
}

func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		keywords: growthKeywords,
	}
}

func (s *LexicalScorer) Score(_ context.Context, text string) Score {
	polarity := s.analyzer.PolarityScores(text).Compound

	return Score{
		Sentiment: polarity,
		Relevance: float64(countKeywordHits(text, s.keywords)),
	}
}

// countKeywordHits counts how many of the keywords appear in the text.
// Phrases match as substrings; short tokens (<=3 chars) require word
// boundaries so "ai" does not match "said".
func countKeywordHits(text string, keywords []string) int {
	text = strings.ToLower(text)

	hits := 0
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				hits++
			}
			continue
		}

		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				hits++
			}
			continue
		}

		if strings.Contains(text, k) {
			hits++
		}
	}
	return hits
}
