// Package search runs lexical, semantic, and hybrid queries over the
// document corpus.
package search

import "sort"

// rrfK is the Reciprocal Rank Fusion constant. It is part of the
// algorithm, not configuration: changing it changes score semantics
// across every fused ranking.
const rrfK = 60

// FusedHit is one entry in a fused ranking.
type FusedHit struct {
	DocID string
	Score float64
}

// Fuse merges two ranked id lists with Reciprocal Rank Fusion. Each
// document accrues 1/(k+rank) per list it appears in, rank 1 being
// best; absence from a list contributes zero. The result is ordered by
// descending fused score, ties broken by ascending document id. Fuse
// is pure: it reads nothing but its arguments.
func Fuse(lexical, semantic []string) []FusedHit {
	scores := make(map[string]float64, len(lexical)+len(semantic))

	for rank, id := range lexical {
		scores[id] += 1.0 / float64(rrfK+rank+1)
	}
	for rank, id := range semantic {
		scores[id] += 1.0 / float64(rrfK+rank+1)
	}

	hits := make([]FusedHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, FusedHit{DocID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	return hits
}
