// Package embed produces embedding vectors for documents and queries
// through an external inference service.
package embed

import "context"

// Embedder generates embedding vectors for text.
type Embedder interface {
	// Embed returns the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the vector dimensionality.
	Dimensions() int
	// Close releases resources.
	Close() error
}

// Default model parameters for the Ollama backend.
const (
	DefaultHost       = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultDimensions = 768
)
