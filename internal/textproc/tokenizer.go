// Package textproc normalizes raw document text into index terms.
//
// The pipeline is: lowercase, split on non-alphanumerics, drop tokens
// outside the 2..50 character range, drop stopwords, stem. Queries and
// documents go through the same pipeline so terms always line up.
package textproc

import (
	"strings"
	"unicode"

	"github.com/blevesearch/go-porterstemmer"
)

const (
	minTokenLen = 2
	maxTokenLen = 50
)

// Processor turns text into normalized terms.
type Processor struct {
	stopwords map[string]struct{}
	stem      bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithoutStemming disables the Porter stemmer. Used in tests where
// exact surface forms matter.
func WithoutStemming() Option {
	return func(p *Processor) { p.stem = false }
}

// NewProcessor creates a Processor with English stopwords and stemming.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		stopwords: englishStopwords,
		stem:      true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process tokenizes and normalizes text, returning terms in order.
func (p *Processor) Process(text string) []string {
	terms, _ := p.ProcessWithPositions(text)
	return terms
}

// ProcessWithPositions returns the normalized terms plus each term's
// position in the token stream. Positions count surviving tokens, so a
// phrase's terms stay adjacent even when stopwords are removed between
// raw tokens that both survive.
func (p *Processor) ProcessWithPositions(text string) ([]string, []int) {
	var terms []string
	var positions []int

	pos := 0
	start := -1
	lower := strings.ToLower(text)

	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := lower[start:end]
		start = -1
		if len(tok) < minTokenLen || len(tok) > maxTokenLen {
			return
		}
		if _, stop := p.stopwords[tok]; stop {
			return
		}
		if p.stem {
			tok = porterstemmer.StemString(tok)
		}
		terms = append(terms, tok)
		positions = append(positions, pos)
		pos++
	}

	for i, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(lower))

	return terms, positions
}
