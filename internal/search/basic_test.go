package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

func seedBasicGraph() (*kgtypes.Graph, *index.Indexes) {
	g := kgtypes.NewGraph()
	aliceImp, bobImp := 7, 3
	alice := &kgtypes.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Developer"}, Tags: []string{"team-a"}, Importance: &aliceImp, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	bob := &kgtypes.Entity{Name: "Bob", EntityType: "person", Observations: []string{"Manager"}, Tags: []string{"team-b"}, Importance: &bobImp, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	g.Entities["Alice"] = alice
	g.Entities["Bob"] = bob
	g.Relations[kgtypes.RelationKey{From: "Alice", To: "Bob", Type: "manages"}] = &kgtypes.Relation{From: "Alice", To: "Bob", RelationType: "manages"}

	idx := index.Rebuild(g)
	return g, idx
}

func TestBasicSubstringFilter(t *testing.T) {
	g, idx := seedBasicGraph()
	res := Basic(g, idx, BasicFilter{Query: "develop"})
	assert.Len(t, res.Entities, 1)
	assert.Equal(t, "Alice", res.Entities[0].Name)
}

func TestBasicImportanceRangeFilter(t *testing.T) {
	g, idx := seedBasicGraph()
	min := 5
	res := Basic(g, idx, BasicFilter{MinImp: &min})
	assert.Len(t, res.Entities, 1)
	assert.Equal(t, "Alice", res.Entities[0].Name)
}

func TestBasicInducedSubgraph(t *testing.T) {
	g, idx := seedBasicGraph()
	res := Basic(g, idx, BasicFilter{})
	assert.Len(t, res.Entities, 2)
	assert.Len(t, res.Relations, 1)
}

func TestBasicPaginationCapsAtMaxLimit(t *testing.T) {
	g, idx := seedBasicGraph()
	res := Basic(g, idx, BasicFilter{Limit: 1, Offset: 1})
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Entities, 1)
	assert.Equal(t, "Bob", res.Entities[0].Name)

	capped := Basic(g, idx, BasicFilter{Limit: 5, MaxLimit: 1})
	assert.Len(t, capped.Entities, 1)
}

func TestBasicEntityTypeFilterCaseInsensitive(t *testing.T) {
	g, idx := seedBasicGraph()
	res := Basic(g, idx, BasicFilter{EntityType: "PERSON"})
	assert.Len(t, res.Entities, 2)
}
