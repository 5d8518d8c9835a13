package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"positivebot/internal/llm"
	"positivebot/internal/ratelimit"
)

const scoringSystemPrompt = "You are a helpful assistant that analyzes sentiment and relevance of news text."

var scoreLinePattern = regexp.MustCompile(`(?i)sentiment\s*[=:]\s*(-?\d+(?:\.\d+)?)\s*[,;\s]+relevance\s*[=:]\s*(-?\d+(?:\.\d+)?)`)

// ModelScorer delegates classification to a generative text service. Any
// failure (transport, budget, unparseable output) degrades to a neutral
// (0,0) score; a classification failure must never abort the run.
type ModelScorer struct {
	client  llm.Client
	limiter *ratelimit.Limiter
	topic   string
}

func NewModelScorer(client llm.Client, limiter *ratelimit.Limiter, topic string) *ModelScorer {
	return &ModelScorer{client: client, limiter: limiter, topic: topic}
}

func (s *ModelScorer) Score(ctx context.Context, text string) Score {
	if s.limiter != nil && !s.limiter.Allow() {
		return Score{}
	}

	prompt := fmt.Sprintf(
		"Analyze the following text and rate how overwhelmingly positive it is and how relevant it is to %q.\n\n"+
			"Text: %s\n\n"+
			"Reply with exactly one line in the form:\n"+
			"sentiment=<number between 0 and 1> relevance=<number between 0 and 1>",
		s.topic, text,
	)

	resp, err := s.client.Complete(ctx, []llm.Message{
		llm.System(scoringSystemPrompt),
		llm.User(prompt),
	}, 20)
	if err != nil {
		slog.Warn("model scoring failed, using neutral score", "error", err)
		return Score{}
	}

	score, err := parseScoreResponse(resp)
	if err != nil {
		slog.Warn("unparseable score response, using neutral score", "response", resp, "error", err)
		return Score{}
	}
	return score
}

func parseScoreResponse(resp string) (Score, error) {
	m := scoreLinePattern.FindStringSubmatch(resp)
	if m == nil {
		return Score{}, fmt.Errorf("no sentiment/relevance pair found")
	}

	sentiment, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Score{}, err
	}
	relevance, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Score{}, err
	}

	return Score{
		Sentiment: clamp01(sentiment),
		Relevance: clamp01(relevance),
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
