// Package llm talks to an external language model inference service.
package llm

import "context"

// Client generates text completions.
type Client interface {
	// Complete returns the full completion for prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Stream invokes yield for each completion fragment in order.
	// A yield error stops the stream and is returned.
	Stream(ctx context.Context, prompt string, yield func(fragment string) error) error
	// Close releases resources.
	Close() error
}

// Default model parameters for the Ollama backend.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.1:8b"
)
