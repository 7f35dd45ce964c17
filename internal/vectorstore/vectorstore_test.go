package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertDimensionMismatch(t *testing.T) {
	s := New(3)
	err := s.Upsert("alice", []float64{1, 2})
	assert.Error(t, err)
}

func TestTopKOrdersByCosineSimilarity(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Upsert("same", []float64{1, 0}))
	require.NoError(t, s.Upsert("orth", []float64{0, 1}))
	require.NoError(t, s.Upsert("opposite", []float64{-1, 0}))

	results, err := s.TopK([]float64{1, 0}, 2, -1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "same", results[0].Name)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestTopKMinScoreFilters(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Upsert("orth", []float64{0, 1}))
	results, err := s.TopK([]float64{1, 0}, 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteRemovesEmbedding(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Upsert("a", []float64{1, 1}))
	s.Delete("a")
	assert.False(t, s.Has("a"))
}
