package summarizer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"positivebot/internal/llm"
	"positivebot/internal/retry"
)

type fakeLLM struct {
	response  string
	err       error
	failUntil int // fail the first N calls
	calls     int
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, _ int) (string, error) {
	f.calls++
	if f.err != nil && f.calls <= f.failUntil {
		return "", f.err
	}
	if f.err != nil && f.failUntil == 0 {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func fastRetry(attempts int) retry.RetryConfig {
	return retry.RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestSummarize_Success(t *testing.T) {
	client := &fakeLLM{response: "India's solar capacity doubled this year. #Solar #India #Energy"}
	s := New(client, nil, fastRetry(3))

	got, err := s.Summarize(context.Background(), "Solar milestone", "Capacity doubled.", 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != client.response {
		t.Errorf("got %q", got)
	}
	if client.calls != 1 {
		t.Errorf("expected a single call, got %d", client.calls)
	}
}

func TestSummarize_RetriesTransientFailures(t *testing.T) {
	client := &fakeLLM{
		response:  "A fine summary. #One #Two #Three",
		err:       fmt.Errorf("temporary outage"),
		failUntil: 2,
	}
	s := New(client, nil, fastRetry(3))

	got, err := s.Summarize(context.Background(), "Title", "Description", 600)
	if err != nil {
		t.Fatalf("expected success on the third attempt, got %v", err)
	}
	if got == "" || client.calls != 3 {
		t.Errorf("got %q after %d calls", got, client.calls)
	}
}

func TestSummarize_ExhaustedRetriesReturnError(t *testing.T) {
	client := &fakeLLM{err: fmt.Errorf("service down")}
	s := New(client, nil, fastRetry(3))

	_, err := s.Summarize(context.Background(), "Title", "Description", 600)
	if err == nil {
		t.Fatal("expected an error after exhausted retries")
	}
	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}
}

func TestSummarize_PromptCarriesTargetLength(t *testing.T) {
	var captured string
	client := &capturingLLM{response: "ok summary", capture: &captured}
	s := New(client, nil, fastRetry(1))

	if _, err := s.Summarize(context.Background(), "Title", "Description", 432); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(captured, "432") {
		t.Errorf("prompt does not mention the target length: %q", captured)
	}
	if !strings.Contains(captured, "Do not include any URL") {
		t.Errorf("prompt must forbid links (the poster appends them): %q", captured)
	}
}

type capturingLLM struct {
	response string
	capture  *string
}

func (c *capturingLLM) Complete(_ context.Context, messages []llm.Message, _ int) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			*c.capture = m.Content
		}
	}
	return c.response, nil
}

func (c *capturingLLM) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Great news ahead.", "Great news ahead."},
		{"summary label", "Summary: Great news ahead.", "Great news ahead."},
		{"quoted", `"Great news ahead."`, "Great news ahead."},
		{"label then quotes", `Summary: "Great news ahead."`, "Great news ahead."},
		{"whitespace", "  Great news ahead.  \n", "Great news ahead."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clean(tt.input); got != tt.want {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}
