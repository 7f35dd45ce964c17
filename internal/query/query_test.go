package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

func seedIndex() (*index.Indexes, Corpus) {
	idx := index.New()
	idx.AddEntity(&kgtypes.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Developer"}, Tags: []string{"team-a"}})
	idx.AddEntity(&kgtypes.Entity{Name: "Bob", EntityType: "person", Observations: []string{"Manager"}, Tags: []string{"team-b"}})
	idx.AddEntity(&kgtypes.Entity{Name: "Charlie", EntityType: "person", Observations: []string{"Developer"}, Tags: []string{"team-c"}})
	return idx, Corpus{"Alice", "Bob", "Charlie"}
}

func TestBooleanQueryScenario(t *testing.T) {
	idx, corpus := seedIndex()
	node, err := Parse(`Developer AND (team-a OR team-b)`)
	require.NoError(t, err)

	result := Evaluate(node, idx, corpus)
	assert.Equal(t, map[string]struct{}{"Alice": {}}, result)
}

func TestNotIsComplement(t *testing.T) {
	idx, corpus := seedIndex()
	node, err := Parse(`NOT team-a`)
	require.NoError(t, err)
	result := Evaluate(node, idx, corpus)
	_, hasAlice := result["Alice"]
	assert.False(t, hasAlice)
	assert.Contains(t, result, "Bob")
	assert.Contains(t, result, "Charlie")
}

func TestAndIsSubsetOfIntersection(t *testing.T) {
	idx, corpus := seedIndex()
	a, err := Parse(`name:Alice`)
	require.NoError(t, err)
	b, err := Parse(`type:person`)
	require.NoError(t, err)
	and, err := Parse(`name:Alice AND type:person`)
	require.NoError(t, err)

	resA := Evaluate(a, idx, corpus)
	resB := Evaluate(b, idx, corpus)
	resAnd := Evaluate(and, idx, corpus)

	for k := range resAnd {
		_, inA := resA[k]
		_, inB := resB[k]
		assert.True(t, inA && inB)
	}
}

func TestOrIsSupersetOfUnion(t *testing.T) {
	idx, corpus := seedIndex()
	node, err := Parse(`name:Alice OR name:Bob`)
	require.NoError(t, err)
	result := Evaluate(node, idx, corpus)
	assert.Contains(t, result, "Alice")
	assert.Contains(t, result, "Bob")
	assert.NotContains(t, result, "Charlie")
}

func TestDepthLimitRejectsDeepNesting(t *testing.T) {
	q := ""
	for i := 0; i < 200; i++ {
		q += "("
	}
	q += "alice"
	for i := 0; i < 200; i++ {
		q += ")"
	}
	p, err := NewParserWithLimits(q, 10, 100)
	require.NoError(t, err)
	_, err = p.Parse()
	assert.Error(t, err)
}

func TestQuotedPhraseMatchesWholePhrase(t *testing.T) {
	idx := index.New()
	idx.AddEntity(&kgtypes.Entity{Name: "Dana", EntityType: "person", Observations: []string{"Senior Backend Engineer"}})
	node, err := Parse(`"backend engineer"`)
	require.NoError(t, err)
	result := Evaluate(node, idx, Corpus{"Dana"})
	assert.Contains(t, result, "Dana")
}
