package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHNSW_UpsertAndQuery(t *testing.T) {
	s := NewHNSWStore(3)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "x-axis", []float32{1, 0, 0}))
	require.NoError(t, s.Upsert(ctx, "y-axis", []float32{0, 1, 0}))
	require.NoError(t, s.Upsert(ctx, "near-x", []float32{0.9, 0.1, 0}))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x-axis", results[0].ID)
	assert.Equal(t, "near-x", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestHNSW_UpsertReplaces(t *testing.T) {
	s := NewHNSWStore(3)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "doc", []float32{1, 0, 0}))
	require.NoError(t, s.Upsert(ctx, "doc", []float32{0, 1, 0}))
	assert.Equal(t, 1, s.Len())

	results, err := s.Query(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestHNSW_DeleteHidesVector(t *testing.T) {
	s := NewHNSWStore(3)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "keep", []float32{1, 0, 0}))
	require.NoError(t, s.Upsert(ctx, "gone", []float32{0.99, 0.01, 0}))
	require.NoError(t, s.Delete(ctx, "gone"))

	assert.Equal(t, 1, s.Len())

	results, err := s.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].ID)

	// Deleting an unknown id is a no-op.
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestHNSW_DeleteLastVector(t *testing.T) {
	s := NewHNSWStore(2)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "only", []float32{1, 0}))
	require.NoError(t, s.Delete(ctx, "only"))

	assert.Equal(t, 0, s.Len())

	results, err := s.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSW_DimensionMismatch(t *testing.T) {
	s := NewHNSWStore(3)
	ctx := context.Background()

	assert.Error(t, s.Upsert(ctx, "bad", []float32{1, 0}))

	_, err := s.Query(ctx, []float32{1, 0}, 1)
	assert.Error(t, err)
}

func TestHNSW_QueryEmptyStore(t *testing.T) {
	s := NewHNSWStore(3)

	results, err := s.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
