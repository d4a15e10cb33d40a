package search

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/hyperseek/hyperseek/internal/embed"
	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/index"
	"github.com/hyperseek/hyperseek/internal/store"
)

// Mode selects the ranking signal.
type Mode string

const (
	ModeBM25     Mode = "bm25"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// Result is one search hit with its backing document.
type Result struct {
	Document *store.Document `json:"document"`
	Score    float64         `json:"score"`
	Snippet  string          `json:"snippet"`
}

// Engine coordinates the inverted index, the vector store, and the
// document store behind one search and ingestion surface.
type Engine struct {
	index    *index.Index
	vectors  store.VectorStore
	docs     store.DocumentStore
	embedder embed.Embedder
	params   index.BM25Params
	logger   *slog.Logger
}

// NewEngine wires the search engine together.
func NewEngine(idx *index.Index, vectors store.VectorStore, docs store.DocumentStore,
	embedder embed.Embedder, params index.BM25Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		index:    idx,
		vectors:  vectors,
		docs:     docs,
		embedder: embedder,
		params:   params,
		logger:   logger,
	}
}

// Index adds a document to the store and both indexes. A duplicate id
// is a conflict. An embedding failure leaves the document searchable
// lexically and is not an error; the vector side catches up on the
// next re-crawl.
func (e *Engine) Index(ctx context.Context, doc *store.Document) error {
	if err := e.docs.Put(ctx, doc); err != nil {
		return err
	}

	if err := e.Restore(ctx, doc); err != nil {
		// Keep store and index in step.
		_ = e.docs.Delete(ctx, doc.ID)
		return err
	}
	return nil
}

// Restore loads an already-persisted document into the in-memory
// indexes. Used at startup to rebuild the indexes from the store.
func (e *Engine) Restore(ctx context.Context, doc *store.Document) error {
	if err := e.index.Insert(doc.ID, doc.Title+" "+doc.Body); err != nil {
		return err
	}

	vec, err := e.embedder.Embed(ctx, doc.Body)
	if err != nil {
		e.logger.Warn("embedding failed, document indexed lexically only",
			"doc_id", doc.ID, "error", err)
		return nil
	}
	if err := e.vectors.Upsert(ctx, doc.ID, vec); err != nil {
		e.logger.Warn("vector upsert failed, document indexed lexically only",
			"doc_id", doc.ID, "error", err)
	}
	return nil
}

// Rebuild restores every stored document into the in-memory indexes.
func (e *Engine) Rebuild(ctx context.Context) error {
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		docs, err := e.docs.List(ctx, pageSize, offset)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		for _, doc := range docs {
			if err := e.Restore(ctx, doc); err != nil {
				e.logger.Warn("could not restore document", "doc_id", doc.ID, "error", err)
			}
		}
		if len(docs) < pageSize {
			return nil
		}
	}
}

// Reindex replaces a document: delete then insert, never a partial
// mutation, so index statistics stay consistent.
func (e *Engine) Reindex(ctx context.Context, doc *store.Document) error {
	if err := e.Remove(ctx, doc.ID); err != nil && !seekerrors.IsNotFound(err) {
		return err
	}
	return e.Index(ctx, doc)
}

// Remove deletes a document from the store and both indexes.
func (e *Engine) Remove(ctx context.Context, id string) error {
	if err := e.docs.Delete(ctx, id); err != nil {
		return err
	}
	if err := e.index.Delete(id); err != nil && !seekerrors.IsNotFound(err) {
		return err
	}
	return e.vectors.Delete(ctx, id)
}

// Search ranks the corpus against query and returns the requested
// page. The full ranking is computed first and then sliced, so a later
// page is always a continuation of an earlier one. Pages are 1-based.
// Downstream-service outages degrade the ranking instead of failing
// the request.
func (e *Engine) Search(ctx context.Context, query string, mode Mode, page, size int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidQuery, "empty query", nil)
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}

	var ranking []FusedHit
	switch mode {
	case ModeBM25:
		ranking = toFused(e.index.Search(query, e.params, 0))
	case ModeSemantic:
		hits, err := e.semanticRank(ctx, query)
		if err != nil {
			e.logger.Warn("semantic search degraded to empty ranking", "error", err)
			hits = nil
		}
		ranking = hits
	case ModeHybrid:
		ranking = e.hybridRank(ctx, query)
	default:
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidQuery,
			"unknown search mode", nil).WithDetail("mode", string(mode))
	}

	start := (page - 1) * size
	if start >= len(ranking) {
		return nil, nil
	}
	end := start + size
	if end > len(ranking) {
		end = len(ranking)
	}

	terms := e.index.Terms(query)
	results := make([]Result, 0, end-start)
	for _, hit := range ranking[start:end] {
		doc, err := e.docs.Get(ctx, hit.DocID)
		if err != nil {
			// The stores converge after writes; skip ids caught mid-flight.
			e.logger.Warn("ranked document missing from store", "doc_id", hit.DocID)
			continue
		}
		results = append(results, Result{
			Document: doc,
			Score:    hit.Score,
			Snippet:  SnippetAround(doc.Body, terms, 200),
		})
	}
	return results, nil
}

// hybridRank runs the lexical and semantic rankings in parallel and
// fuses them. A semantic failure degrades to the lexical ranking alone.
func (e *Engine) hybridRank(ctx context.Context, query string) []FusedHit {
	var lexical []index.ScoredDoc
	var semantic []FusedHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = e.index.Search(query, e.params, 0)
		return nil
	})
	g.Go(func() error {
		hits, err := e.semanticRank(gctx, query)
		if err != nil {
			e.logger.Warn("hybrid search degraded to lexical only", "error", err)
			return nil
		}
		semantic = hits
		return nil
	})
	_ = g.Wait()

	lexIDs := make([]string, len(lexical))
	for i, h := range lexical {
		lexIDs[i] = h.DocID
	}
	semIDs := make([]string, len(semantic))
	for i, h := range semantic {
		semIDs[i] = h.DocID
	}
	return Fuse(lexIDs, semIDs)
}

func (e *Engine) semanticRank(ctx context.Context, query string) ([]FusedHit, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	k := e.vectors.Len()
	if k == 0 {
		return nil, nil
	}
	matches, err := e.vectors.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	hits := make([]FusedHit, len(matches))
	for i, m := range matches {
		hits[i] = FusedHit{DocID: m.ID, Score: m.Score}
	}
	return hits, nil
}

func toFused(scored []index.ScoredDoc) []FusedHit {
	hits := make([]FusedHit, len(scored))
	for i, s := range scored {
		hits[i] = FusedHit{DocID: s.DocID, Score: s.Score}
	}
	return hits
}

// SnippetAround returns a window of body around the first occurrence
// of any query term, cut at word boundaries. Terms are matched by
// lowercase prefix, which covers stemmed forms. Falls back to the
// leading excerpt when no term occurs.
func SnippetAround(body string, terms []string, maxLen int) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxLen {
		return body
	}

	lower := strings.ToLower(body)
	pos := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		return Excerpt(body, maxLen)
	}

	start := pos - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(body) {
		end = len(body)
		if start = end - maxLen; start < 0 {
			start = 0
		}
	}
	// Walk to whitespace rune boundaries so the cut never splits a
	// multibyte sequence.
	for start > 0 {
		if r, _ := utf8.DecodeRuneInString(body[start:]); unicode.IsSpace(r) {
			break
		}
		start--
	}
	for end < len(body) {
		r, size := utf8.DecodeRuneInString(body[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}

	snippet := strings.TrimSpace(body[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(body) {
		snippet += "..."
	}
	return snippet
}

// Excerpt returns the leading text of body cut at a word boundary
// near maxLen.
func Excerpt(body string, maxLen int) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxLen {
		return body
	}

	cut := maxLen
	for cut > 0 {
		if r, _ := utf8.DecodeRuneInString(body[cut:]); unicode.IsSpace(r) {
			break
		}
		cut--
	}
	if cut == 0 {
		// One unbroken run of text; cut at the nearest rune boundary.
		cut = maxLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
	}
	return strings.TrimRight(body[:cut], " \t\n") + "..."
}
