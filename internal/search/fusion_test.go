package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(hits []FusedHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.DocID
	}
	return out
}

func TestFuse_BothListsAgree(t *testing.T) {
	fused := Fuse([]string{"a", "b", "c"}, []string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, ids(fused))
}

func TestFuse_SelfFusionPreservesOrder(t *testing.T) {
	list := []string{"d3", "d1", "d2"}
	fused := Fuse(list, list)
	assert.Equal(t, list, ids(fused))
}

func TestFuse_IsPure(t *testing.T) {
	a := []string{"x", "y"}
	b := []string{"y", "z"}

	first := Fuse(a, b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fuse(a, b))
	}
	// Inputs are untouched.
	assert.Equal(t, []string{"x", "y"}, a)
	assert.Equal(t, []string{"y", "z"}, b)
}

func TestFuse_SingleListDocStillRanked(t *testing.T) {
	// "both" leads both lists; "lex-only" and "sem-only" each appear in
	// exactly one list at rank 2.
	fused := Fuse([]string{"both", "lex-only"}, []string{"both", "sem-only"})

	require.Len(t, fused, 3)
	assert.Equal(t, "both", fused[0].DocID)
	// Single-list docs rank below the doc present in both.
	assert.Greater(t, fused[0].Score, fused[1].Score)
	// Equal single-list contributions tie-break by id.
	assert.Equal(t, "lex-only", fused[1].DocID)
	assert.Equal(t, "sem-only", fused[2].DocID)
	assert.Equal(t, fused[1].Score, fused[2].Score)
}

func TestFuse_ScoresAreReciprocalRanks(t *testing.T) {
	fused := Fuse([]string{"a"}, nil)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61.0, fused[0].Score, 1e-12)

	fused = Fuse([]string{"a", "b"}, []string{"b"})
	require.Len(t, fused, 2)
	assert.Equal(t, "b", fused[0].DocID)
	assert.InDelta(t, 1.0/62.0+1.0/61.0, fused[0].Score, 1e-12)
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil))

	fused := Fuse(nil, []string{"only"})
	require.Len(t, fused, 1)
	assert.Equal(t, "only", fused[0].DocID)
}
