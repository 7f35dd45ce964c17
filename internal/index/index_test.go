package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

func seedGraph() *kgtypes.Graph {
	g := kgtypes.NewGraph()
	now := time.Now()
	g.Entities["Alice"] = &kgtypes.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Engineer"}, CreatedAt: now, LastModified: now}
	g.Entities["Bob"] = &kgtypes.Entity{Name: "Bob", EntityType: "person", Observations: []string{"Manager"}, CreatedAt: now, LastModified: now}
	key := kgtypes.RelationKey{From: "Alice", To: "Bob", Type: "knows"}
	g.Relations[key] = &kgtypes.Relation{From: "Alice", To: "Bob", RelationType: "knows", CreatedAt: now, LastModified: now}
	return g
}

func TestRebuildIsFixedPoint(t *testing.T) {
	g := seedGraph()
	first := Rebuild(g)
	second := Rebuild(g)
	assert.Equal(t, len(first.NameIndex), len(second.NameIndex))
	assert.Equal(t, first.Words["engineer"], second.Words["engineer"])
}

func TestNameAndTypeIndexConsistency(t *testing.T) {
	g := seedGraph()
	idx := Rebuild(g)
	for _, e := range g.Entities {
		got, ok := idx.NameIndex[e.Name]
		require.True(t, ok)
		assert.Equal(t, e, got)
		_, inType := idx.TypeIndex["person"][e.Name]
		assert.True(t, inType)
	}
}

func TestRelationIndexConsistency(t *testing.T) {
	g := seedGraph()
	idx := Rebuild(g)
	key := kgtypes.RelationKey{From: "Alice", To: "Bob", Type: "knows"}
	assert.Contains(t, idx.Outgoing["Alice"], key)
	assert.Contains(t, idx.Incoming["Bob"], key)
}

func TestAddRemoveEntity(t *testing.T) {
	idx := New()
	e := &kgtypes.Entity{Name: "Carol", EntityType: "person", Observations: []string{"Designer"}}
	idx.AddEntity(e)
	assert.Contains(t, idx.Words["designer"], "Carol")
	idx.RemoveEntity("Carol")
	assert.NotContains(t, idx.Words["designer"], "Carol")
	_, ok := idx.NameIndex["Carol"]
	assert.False(t, ok)
}

func TestIntersectUnionCommutativeAssociative(t *testing.T) {
	a := []int{1, 2, 3, 5}
	b := []int{2, 3, 4}
	c := []int{3, 6}

	assert.Equal(t, Intersect(a, b), Intersect(b, a))
	assert.Equal(t, Union(a, b), Union(b, a))

	left := Intersect(Intersect(a, b), c)
	right := Intersect(a, Intersect(b, c))
	assert.Equal(t, left, right)

	ulft := Union(Union(a, b), c)
	urgt := Union(a, Union(b, c))
	assert.Equal(t, ulft, urgt)
}

func TestIntIDIndexUpsertRemove(t *testing.T) {
	g := seedGraph()
	ii := BuildIntID(g)
	aliceID, ok := ii.IDOf("Alice")
	require.True(t, ok)
	name, ok := ii.NameOf(aliceID)
	require.True(t, ok)
	assert.Equal(t, "Alice", name)

	ii.Remove("Alice")
	_, ok = ii.IDOf("Alice")
	assert.False(t, ok)
}
