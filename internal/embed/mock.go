package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"
)

// MockEmbedder derives deterministic vectors from a content hash.
// Identical texts map to identical vectors, so similarity tests can
// build fixtures without a running inference service.
type MockEmbedder struct {
	dims  int
	calls atomic.Int64
	// Err, when set, is returned by every Embed call.
	Err error
}

var _ Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a deterministic embedder of the given
// dimensionality.
func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{dims: dims}
}

// Embed returns a pseudo-random unit-free vector derived from text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}

	vec := make([]float32, m.dims)
	seed := sha256.Sum256([]byte(text))
	for i := range vec {
		// Re-hash the seed with the index to spread values.
		var buf [36]byte
		copy(buf[:32], seed[:])
		binary.LittleEndian.PutUint32(buf[32:], uint32(i))
		h := sha256.Sum256(buf[:])
		vec[i] = float32(binary.LittleEndian.Uint16(h[:2]))/65535*2 - 1
	}
	return vec, nil
}

// Calls returns how many times Embed was invoked.
func (m *MockEmbedder) Calls() int {
	return int(m.calls.Load())
}

// Dimensions returns the vector dimensionality.
func (m *MockEmbedder) Dimensions() int { return m.dims }

// Close is a no-op.
func (m *MockEmbedder) Close() error { return nil }
