package exportimport

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

func newEntity(name string) *kgtypes.Entity {
	now := time.Now().UTC()
	return &kgtypes.Entity{Name: name, EntityType: "person", CreatedAt: now, LastModified: now}
}

func TestImportFailAbortsOnFirstConflict(t *testing.T) {
	target := kgtypes.NewGraph()
	target.Entities["Alice"] = newEntity("Alice")

	incoming := kgtypes.NewGraph()
	incoming.Entities["Bob"] = newEntity("Bob")
	incoming.Entities["Alice"] = newEntity("Alice")

	_, err := Import(target, incoming, MergeFail)
	require.Error(t, err)
	// Target is untouched: Bob must not have been added even though it was
	// processed before the conflicting Alice record.
	assert.Len(t, target.Entities, 1)
	_, ok := target.Entities["Bob"]
	assert.False(t, ok)
}

func TestImportSkipCountsConflictAndContinues(t *testing.T) {
	target := kgtypes.NewGraph()
	target.Entities["Alice"] = newEntity("Alice")

	incoming := kgtypes.NewGraph()
	incoming.Entities["Alice"] = newEntity("Alice")
	for i := 0; i < 49999; i++ {
		name := "entity-" + strconv.Itoa(i)
		incoming.Entities[name] = newEntity(name)
	}

	result, err := Import(target, incoming, MergeSkip)
	require.NoError(t, err)
	assert.Equal(t, 49999, result.EntitiesAdded)
	assert.Equal(t, 1, result.EntitiesSkipped)
	assert.Empty(t, result.Errors)
}

func TestImportReplaceOverwritesExisting(t *testing.T) {
	target := kgtypes.NewGraph()
	existing := newEntity("Alice")
	existing.EntityType = "old"
	target.Entities["Alice"] = existing

	incoming := kgtypes.NewGraph()
	replacement := newEntity("Alice")
	replacement.EntityType = "new"
	incoming.Entities["Alice"] = replacement

	result, err := Import(target, incoming, MergeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntitiesMerged)
	assert.Equal(t, "new", target.Entities["Alice"].EntityType)
}

func TestImportMergeCombinesObservationsAndTags(t *testing.T) {
	target := kgtypes.NewGraph()
	existing := newEntity("Alice")
	existing.Observations = []string{"Engineer"}
	existing.Tags = []string{"team-a"}
	target.Entities["Alice"] = existing

	incoming := kgtypes.NewGraph()
	update := newEntity("Alice")
	update.Observations = []string{"Engineer", "Promoted"}
	update.Tags = []string{"team-a", "lead"}
	incoming.Entities["Alice"] = update

	result, err := Import(target, incoming, MergeMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntitiesMerged)
	assert.ElementsMatch(t, []string{"Engineer", "Promoted"}, target.Entities["Alice"].Observations)
	assert.ElementsMatch(t, []string{"team-a", "lead"}, target.Entities["Alice"].Tags)
}

func TestImportRejectsOversizedBatch(t *testing.T) {
	target := kgtypes.NewGraph()
	incoming := kgtypes.NewGraph()
	for i := 0; i < MaxItems+1; i++ {
		name := "e" + strconv.Itoa(i)
		incoming.Entities[name] = newEntity(name)
	}
	_, err := Import(target, incoming, MergeSkip)
	assert.Error(t, err)
}
