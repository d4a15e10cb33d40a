package store

import (
	"context"
	"math"
	"sync"

	"github.com/coder/hnsw"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

// HNSWStore implements VectorStore on an in-memory HNSW graph.
//
// String document ids are mapped to monotonically increasing uint64
// graph keys. Deletes are lazy: the id mapping is dropped and the node
// is orphaned in the graph, which sidesteps graph corruption when the
// last node is removed. Orphaned nodes are filtered out of query
// results.
type HNSWStore struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	dims  int

	idToKey map[string]uint64
	keyToID map[uint64]string
	nextKey uint64
}

var _ VectorStore = (*HNSWStore)(nil)

// NewHNSWStore creates a vector store for dims-dimensional vectors
// using cosine distance.
func NewHNSWStore(dims int) *HNSWStore {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &HNSWStore{
		graph:   graph,
		dims:    dims,
		idToKey: make(map[string]uint64),
		keyToID: make(map[uint64]string),
	}
}

// Upsert adds or replaces the vector for id.
func (s *HNSWStore) Upsert(ctx context.Context, id string, vector []float32) error {
	if len(vector) != s.dims {
		return seekerrors.New(seekerrors.ErrCodeInvalidInput,
			"embedding dimension mismatch", nil).
			WithDetail("id", id)
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	normalize(vec)

	s.mu.Lock()
	defer s.mu.Unlock()

	if oldKey, exists := s.idToKey[id]; exists {
		delete(s.keyToID, oldKey)
	}

	key := s.nextKey
	s.nextKey++
	s.graph.Add(hnsw.MakeNode(key, vec))
	s.idToKey[id] = key
	s.keyToID[key] = id
	return nil
}

// Delete removes the vector for id. Unknown ids are a no-op.
func (s *HNSWStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, exists := s.idToKey[id]; exists {
		delete(s.keyToID, key)
		delete(s.idToKey, id)
	}
	return nil
}

// Query returns up to k live ids most similar to vector, best first.
// Similarity is 1 - cosine distance, in [0, 1] for normalized inputs.
func (s *HNSWStore) Query(ctx context.Context, vector []float32, k int) ([]VectorResult, error) {
	if len(vector) != s.dims {
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidInput,
			"embedding dimension mismatch", nil)
	}

	query := make([]float32, len(vector))
	copy(query, vector)
	normalize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.graph.Len() == 0 || len(s.idToKey) == 0 {
		return nil, nil
	}

	// Over-fetch to compensate for lazily deleted nodes still in the
	// graph.
	fetch := k + (s.graph.Len() - len(s.idToKey))
	nodes := s.graph.Search(query, fetch)

	results := make([]VectorResult, 0, k)
	for _, node := range nodes {
		id, live := s.keyToID[node.Key]
		if !live {
			continue
		}
		dist := s.graph.Distance(query, node.Value)
		results = append(results, VectorResult{ID: id, Score: 1 - float64(dist)})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Len returns the number of live vectors.
func (s *HNSWStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.idToKey)
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
