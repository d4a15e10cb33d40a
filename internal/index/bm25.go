package index

import (
	"math"
	"sort"
)

// BM25Params are the free parameters of the BM25 ranking function.
type BM25Params struct {
	// K1 controls term frequency saturation. Higher values let repeated
	// terms keep adding score.
	K1 float64
	// B controls document length normalization, from 0 (none) to 1 (full).
	B float64
}

// DefaultBM25Params returns the standard parameter choices.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.2, B: 0.75}
}

// ScoredDoc is one ranked search hit.
type ScoredDoc struct {
	DocID string
	Score float64
}

// Search scores every document containing at least one query term and
// returns up to limit hits, best first. Ties are broken by ascending
// document id so repeated queries over the same corpus return the same
// order. An empty query or empty corpus returns no hits; limit <= 0
// means no cap.
func (idx *Index) Search(query string, params BM25Params, limit int) []ScoredDoc {
	terms := idx.proc.Process(query)
	if len(terms) == 0 {
		return nil
	}

	// Duplicate query terms score once per occurrence, matching the
	// summation over the query.
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docs)
	if n == 0 {
		return nil
	}
	avgdl := float64(idx.totalLen) / float64(n)

	scores := make(map[string]float64)
	for _, term := range terms {
		m := idx.postings[term]
		if len(m) == 0 {
			continue
		}

		idf := math.Log(1 + (float64(n)-float64(len(m))+0.5)/(float64(len(m))+0.5))

		for docID, p := range m {
			tf := float64(p.TF)
			norm := 1.0
			if avgdl > 0 {
				docLen := float64(idx.docs[docID].length)
				norm = 1 - params.B + params.B*docLen/avgdl
			}
			scores[docID] += idf * tf * (params.K1 + 1) / (tf + params.K1*norm)
		}
	}

	if len(scores) == 0 {
		return nil
	}

	hits := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
