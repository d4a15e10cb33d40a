// Package index implements an in-memory inverted index with BM25
// ranking.
//
// The index maps terms to postings (document id, term frequency, term
// positions) and maintains the corpus statistics BM25 needs: document
// count, per-document lengths, and average document length. Statistics
// are updated incrementally on insert and delete so removing a document
// is the exact inverse of adding it.
package index

import (
	"sort"
	"sync"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/textproc"
)

// Posting records one document's occurrences of a term.
type Posting struct {
	DocID     string
	TF        int
	Positions []int
}

// Stats is a snapshot of the corpus statistics.
type Stats struct {
	// DocCount is the number of indexed documents.
	DocCount int
	// TermCount is the number of distinct terms.
	TermCount int
	// AvgDocLen is the mean document length in terms. Zero when the
	// index is empty.
	AvgDocLen float64
}

// docEntry holds the per-document state needed to reverse an insert.
type docEntry struct {
	length int
	terms  []string
}

// Index is a thread-safe inverted index.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[string]*Posting // term -> docID -> posting
	docs     map[string]*docEntry
	totalLen int

	proc *textproc.Processor
}

// New creates an empty index using the given text processor.
func New(proc *textproc.Processor) *Index {
	return &Index{
		postings: make(map[string]map[string]*Posting),
		docs:     make(map[string]*docEntry),
		proc:     proc,
	}
}

// Terms runs the index's text pipeline over text, yielding terms in
// the same normalized form the postings hold.
func (idx *Index) Terms(text string) []string {
	return idx.proc.Process(text)
}

// Insert tokenizes content and adds it to the index under docID.
// Returns a conflict error if docID is already indexed. A document
// whose content normalizes to zero terms is still recorded so Delete
// and Contains see it.
func (idx *Index) Insert(docID, content string) error {
	// Tokenization is the expensive part; keep it outside the lock.
	terms, positions := idx.proc.ProcessWithPositions(content)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docs[docID]; exists {
		return seekerrors.Conflict("document", docID)
	}

	perTerm := make(map[string]*Posting)
	for i, term := range terms {
		p := perTerm[term]
		if p == nil {
			p = &Posting{DocID: docID}
			perTerm[term] = p
		}
		p.TF++
		p.Positions = append(p.Positions, positions[i])
	}

	entry := &docEntry{length: len(terms), terms: make([]string, 0, len(perTerm))}
	for term, p := range perTerm {
		m := idx.postings[term]
		if m == nil {
			m = make(map[string]*Posting)
			idx.postings[term] = m
		}
		m[docID] = p
		entry.terms = append(entry.terms, term)
	}

	idx.docs[docID] = entry
	idx.totalLen += entry.length
	return nil
}

// Delete removes a document and reverses its contribution to the
// corpus statistics. Returns a not-found error for unknown ids.
func (idx *Index) Delete(docID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, exists := idx.docs[docID]
	if !exists {
		return seekerrors.NotFound("document", docID)
	}

	for _, term := range entry.terms {
		m := idx.postings[term]
		delete(m, docID)
		if len(m) == 0 {
			delete(idx.postings, term)
		}
	}

	delete(idx.docs, docID)
	idx.totalLen -= entry.length
	return nil
}

// Contains reports whether docID is indexed.
func (idx *Index) Contains(docID string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	_, ok := idx.docs[docID]
	return ok
}

// Postings returns the postings list for a term, sorted by document id.
// The returned slice is a copy.
func (idx *Index) Postings(term string) []Posting {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	m := idx.postings[term]
	if len(m) == 0 {
		return nil
	}

	out := make([]Posting, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out
}

// DocFreq returns the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.postings[term])
}

// Stats returns a snapshot of the corpus statistics.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s := Stats{
		DocCount:  len(idx.docs),
		TermCount: len(idx.postings),
	}
	if s.DocCount > 0 {
		s.AvgDocLen = float64(idx.totalLen) / float64(s.DocCount)
	}
	return s
}
