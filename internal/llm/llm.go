// Package llm abstracts the generative text services used for scoring,
// summarization and sentence embeddings.
package llm

import "context"

type Message struct {
	Role    string // "system" or "user"
	Content string
}

type Client interface {
	// Complete sends the messages to the model and returns the generated text.
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

func System(content string) Message {
	return Message{Role: "system", Content: content}
}

func User(content string) Message {
	return Message{Role: "user", Content: content}
}
