package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

func newStreamServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		flusher := w.(http.Flusher)
		for i, chunk := range chunks {
			done := i == len(chunks)-1
			fmt.Fprintf(w, `{"response":%q,"done":%v}`+"\n", chunk, done)
			flusher.Flush()
		}
	}))
}

func TestOllamaClient_StreamYieldsFragmentsInOrder(t *testing.T) {
	srv := newStreamServer(t, []string{"Go ", "is ", "fun"})
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{Host: srv.URL})
	defer c.Close()

	var got []string
	err := c.Stream(context.Background(), "tell me", func(f string) error {
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go ", "is ", "fun"}, got)
}

func TestOllamaClient_CompleteJoinsStream(t *testing.T) {
	srv := newStreamServer(t, []string{"Hello", ", ", "world"})
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{Host: srv.URL})
	defer c.Close()

	out, err := c.Complete(context.Background(), "greet")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", out)
}

func TestOllamaClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{Host: srv.URL})
	defer c.Close()

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeLLMUnavailable, seekerrors.GetCode(err))
}

func TestOllamaClient_ConnectionRefused(t *testing.T) {
	c := NewOllamaClient(OllamaConfig{Host: "http://127.0.0.1:1"})
	defer c.Close()

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeLLMUnavailable, seekerrors.GetCode(err))
}

func TestOllamaClient_YieldErrorStopsStream(t *testing.T) {
	srv := newStreamServer(t, []string{"a", "b", "c"})
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{Host: srv.URL})
	defer c.Close()

	stop := fmt.Errorf("enough")
	count := 0
	err := c.Stream(context.Background(), "hi", func(string) error {
		count++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}

func TestMockClient_ConsumesResponsesInOrder(t *testing.T) {
	m := NewMockClient("first", "second")

	a, _ := m.Complete(context.Background(), "p1")
	b, _ := m.Complete(context.Background(), "p2")
	c, _ := m.Complete(context.Background(), "p3")

	assert.Equal(t, "first", a)
	assert.Equal(t, "second", b)
	assert.Equal(t, "second", c)
	assert.Equal(t, []string{"p1", "p2", "p3"}, m.Prompts())
}
