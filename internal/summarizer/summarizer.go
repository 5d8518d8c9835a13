// Package summarizer turns an article into post-ready text via the
// generative text service.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"positivebot/internal/llm"
	"positivebot/internal/ratelimit"
	"positivebot/internal/retry"
)

const summarySystemPrompt = "You are a helpful assistant that summarizes positive news for social media."

type Summarizer struct {
	client  llm.Client
	limiter *ratelimit.Limiter
	retry   retry.RetryConfig
}

func New(client llm.Client, limiter *ratelimit.Limiter, retryCfg retry.RetryConfig) *Summarizer {
	return &Summarizer{client: client, limiter: limiter, retry: retryCfg}
}

// Summarize compresses title+description into a summary of roughly
// targetLength characters with three embedded hashtags and no link (the
// link is appended later by the thread poster). The service may overshoot
// the requested length; the thread segmenter handles arbitrary-length
// input, so the result is not re-truncated here. Returns an error after
// the retries are exhausted; the caller skips the candidate in that case.
func (s *Summarizer) Summarize(ctx context.Context, title, description string, targetLength int) (string, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return "", fmt.Errorf("summarize: LLM request budget exhausted")
	}

	prompt := fmt.Sprintf(
		"Summarize this positive news story for social media in at most %d characters, "+
			"including exactly 3 relevant hashtags embedded in the text. Do not include any URL.\n\n"+
			"Headline: %s\n\nDetails: %s\n\nSummary:",
		targetLength, title, description,
	)

	var summary string
	err := retry.WithRetry(ctx, s.retry, func() error {
		resp, err := s.client.Complete(ctx, []llm.Message{
			llm.System(summarySystemPrompt),
			llm.User(prompt),
		}, 300)
		if err != nil {
			return err
		}
		summary = clean(resp)
		if summary == "" {
			return fmt.Errorf("empty summary from model")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", title, err)
	}

	return summary, nil
}

// clean strips boilerplate the models like to wrap around the answer:
// a leading "Summary:" label and surrounding quotes.
func clean(s string) string {
	s = strings.TrimSpace(s)

	for _, prefix := range []string{"Summary:", "summary:", "SUMMARY:"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return s
}
