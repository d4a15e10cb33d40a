package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient returns canned completions for tests. Responses are
// consumed in order; when exhausted, the last one repeats.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	next      int
	prompts   []string
	// Err, when set, is returned by every call.
	Err error
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that replies with responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// Complete records the prompt and returns the next canned response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	resp := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}
	return resp, nil
}

// Stream yields the next canned response word by word.
func (m *MockClient) Stream(ctx context.Context, prompt string, yield func(string) error) error {
	resp, err := m.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	words := strings.SplitAfter(resp, " ")
	for _, w := range words {
		if w == "" {
			continue
		}
		if err := yield(w); err != nil {
			return err
		}
	}
	return nil
}

// Prompts returns all prompts seen so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Close is a no-op.
func (m *MockClient) Close() error { return nil }
