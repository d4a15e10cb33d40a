// Package rag answers questions by looping hybrid retrieval through
// an external language model, optionally recursing on model-proposed
// follow-up queries.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/llm"
	"github.com/hyperseek/hyperseek/internal/search"
	"github.com/hyperseek/hyperseek/internal/store"
)

// Retriever is the slice of the search engine the orchestrator needs.
type Retriever interface {
	Search(ctx context.Context, query string, mode search.Mode, page, size int) ([]search.Result, error)
}

// Response is the outcome of one RAG session.
type Response struct {
	// Answer is the generated answer, or the retrieval fallback when
	// Generated is false.
	Answer string `json:"answer"`
	// Sources lists every document used across all rounds, in
	// first-referenced order.
	Sources []*store.Document `json:"sources"`
	// Generated is false when the model was unavailable and Answer is
	// raw retrieved context.
	Generated bool `json:"generated"`
	// Rounds is how many retrieval rounds ran.
	Rounds int `json:"rounds"`
}

// Orchestrator drives retrieval and generation rounds.
type Orchestrator struct {
	retriever Retriever
	model     llm.Client
	topK      int
	logger    *slog.Logger
}

// New creates an orchestrator retrieving topK documents per round.
func New(retriever Retriever, model llm.Client, topK int, logger *slog.Logger) *Orchestrator {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{retriever: retriever, model: model, topK: topK, logger: logger}
}

// Answer runs a RAG session and returns the final answer. With
// recursive false, exactly one retrieval round runs regardless of
// maxDepth. The model being down never fails the request: the
// response degrades to retrieved context with Generated false.
func (o *Orchestrator) Answer(ctx context.Context, query string, recursive bool, maxDepth int) (*Response, error) {
	return o.run(ctx, query, recursive, maxDepth, nil)
}

// Stream behaves like Answer but delivers the final answer as ordered
// text fragments through yield before returning the full response.
// Intermediate rounds are not streamed; only the last generation is.
func (o *Orchestrator) Stream(ctx context.Context, query string, recursive bool, maxDepth int,
	yield func(fragment string) error) (*Response, error) {
	return o.run(ctx, query, recursive, maxDepth, yield)
}

func (o *Orchestrator) run(ctx context.Context, query string, recursive bool, maxDepth int,
	yield func(string) error) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidQuery, "empty query", nil)
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	if !recursive {
		maxDepth = 1
	}

	session := newSession()
	session.gather(o.mustRetrieve(ctx, query))

	answer := ""
	rounds := 0

	for rounds < maxDepth {
		rounds++

		final := rounds == maxDepth
		draft, err := o.generate(ctx, query, session.docs, final, yield)
		if err != nil {
			if rounds == 1 {
				// Round 0 fallback: surface the retrieved context
				// instead of failing.
				o.logger.Warn("model unavailable, returning retrieval fallback", "error", err)
				return o.fallback(query, session, yield)
			}
			// A later-round failure keeps the last good answer, which
			// was produced non-streaming; replay it to the consumer.
			o.logger.Warn("model failed mid-session, keeping previous answer",
				"round", rounds, "error", err)
			if yield != nil {
				if err := yield(answer); err != nil {
					return nil, err
				}
			}
			return &Response{Answer: answer, Sources: session.docs, Generated: true, Rounds: rounds - 1}, nil
		}
		answer = draft

		if final {
			break
		}

		followups, err := o.proposeFollowups(ctx, query, answer)
		if err != nil || len(followups) == 0 {
			break
		}

		grew := false
		for _, sub := range followups {
			if session.gather(o.mustRetrieve(ctx, sub)) {
				grew = true
			}
		}
		if !grew {
			// No new context; another generation pass cannot improve.
			break
		}
	}

	// When the loop ended before the planned final round, the last
	// answer was produced non-streaming; replay it to the consumer.
	if yield != nil && rounds < maxDepth {
		if err := yield(answer); err != nil {
			return nil, err
		}
	}

	return &Response{Answer: answer, Sources: session.docs, Generated: true, Rounds: rounds}, nil
}

// mustRetrieve runs a hybrid search, treating failure as an empty
// round rather than a session error.
func (o *Orchestrator) mustRetrieve(ctx context.Context, query string) []search.Result {
	results, err := o.retriever.Search(ctx, query, search.ModeHybrid, 1, o.topK)
	if err != nil {
		o.logger.Warn("retrieval round failed", "query", query, "error", err)
		return nil
	}
	return results
}

// generate produces an answer over the accumulated context, streaming
// through yield on the final round.
func (o *Orchestrator) generate(ctx context.Context, query string, docs []*store.Document,
	final bool, yield func(string) error) (string, error) {
	prompt := answerPrompt(query, docs)

	if final && yield != nil {
		var sb strings.Builder
		err := o.model.Stream(ctx, prompt, func(fragment string) error {
			sb.WriteString(fragment)
			return yield(fragment)
		})
		if err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	return o.model.Complete(ctx, prompt)
}

func (o *Orchestrator) proposeFollowups(ctx context.Context, query, answer string) ([]string, error) {
	reply, err := o.model.Complete(ctx, followupPrompt(query, answer))
	if err != nil {
		return nil, err
	}
	return parseFollowups(reply), nil
}

// fallback renders the retrieved titles and excerpts as the answer.
func (o *Orchestrator) fallback(query string, session *session, yield func(string) error) (*Response, error) {
	var sb strings.Builder
	if len(session.docs) == 0 {
		sb.WriteString("No documents matched the query.")
	} else {
		fmt.Fprintf(&sb, "Retrieved context for %q:\n\n", query)
		for _, doc := range session.docs {
			fmt.Fprintf(&sb, "- %s: %s\n", doc.Title, search.Excerpt(doc.Body, 200))
		}
	}

	answer := sb.String()
	if yield != nil {
		if err := yield(answer); err != nil {
			return nil, err
		}
	}
	return &Response{Answer: answer, Sources: session.docs, Generated: false, Rounds: 1}, nil
}

// session accumulates context documents, deduplicated by id in
// first-referenced order.
type session struct {
	docs []*store.Document
	seen map[string]struct{}
}

func newSession() *session {
	return &session{seen: make(map[string]struct{})}
}

// gather appends unseen documents and reports whether any were new.
func (s *session) gather(results []search.Result) bool {
	grew := false
	for _, r := range results {
		if _, dup := s.seen[r.Document.ID]; dup {
			continue
		}
		s.seen[r.Document.ID] = struct{}{}
		s.docs = append(s.docs, r.Document)
		grew = true
	}
	return grew
}
