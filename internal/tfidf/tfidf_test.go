package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

func TestAddRemoveUpdateDocument(t *testing.T) {
	s := New()
	s.AddDocument("alice", []string{"engineer", "golang", "engineer"})
	s.AddDocument("bob", []string{"manager", "golang"})
	assert.Equal(t, 2, s.DocCount())
	assert.Equal(t, 2, s.docFreq["golang"])

	s.UpdateDocument("alice", []string{"engineer", "rust"})
	assert.Equal(t, 1, s.docFreq["golang"])
	assert.Equal(t, 1, s.docFreq["rust"])

	s.RemoveDocument("bob")
	assert.Equal(t, 1, s.DocCount())
	_, hasGolang := s.docFreq["golang"]
	assert.False(t, hasGolang)
}

func TestEmptyCorpusReturnsEmptyRanked(t *testing.T) {
	s := New()
	assert.Empty(t, s.ScoreBM25([]string{"anything"}))
	assert.Empty(t, s.ScoreCosine([]string{"anything"}))
}

func TestBM25RanksMatchingDocsHigher(t *testing.T) {
	s := New()
	s.AddDocument("alice", Tokenize(&kgtypes.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Senior Engineer", "Loves Go"}}))
	s.AddDocument("bob", Tokenize(&kgtypes.Entity{Name: "Bob", EntityType: "person", Observations: []string{"Manager"}}))

	results := s.ScoreBM25([]string{"engineer"})
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].DocID)
}
