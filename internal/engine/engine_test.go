package engine

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/config"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

func TestOpenLoadsEmptyStoreAndIndexesMirrorIt(t *testing.T) {
	cfg, err := config.New("")
	require.NoError(t, err)

	dir := t.TempDir()
	e, err := Open(context.Background(), cfg, filepath.Join(dir, "graph.jsonl"))
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 0, e.Backend.View().EntityCount())
	assert.Same(t, e.Backend.View(), e.Dispatcher.Graph)
}

func TestAppendEntityUpdatesTFIDFStatisticsViaEventBus(t *testing.T) {
	cfg, err := config.New("")
	require.NoError(t, err)

	dir := t.TempDir()
	e, err := Open(context.Background(), cfg, filepath.Join(dir, "graph.jsonl"))
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	require.NoError(t, e.Backend.AppendEntity(ctx, &kgtypes.Entity{
		Name: "Alice", EntityType: "person", Observations: []string{"Engineer"},
	}))

	assert.Equal(t, 1, e.Stats.DocCount())
}

func TestSaveRefreshesDispatcherViewPointer(t *testing.T) {
	cfg, err := config.New("")
	require.NoError(t, err)

	dir := t.TempDir()
	e, err := Open(context.Background(), cfg, filepath.Join(dir, "graph.jsonl"))
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	g := kgtypes.NewGraph()
	g.Entities["Bob"] = &kgtypes.Entity{Name: "Bob", EntityType: "person"}
	require.NoError(t, e.Backend.Save(ctx, g))

	assert.Same(t, e.Backend.View(), e.Dispatcher.Graph)
	_, ok := e.Dispatcher.Graph.Entities["Bob"]
	assert.True(t, ok)
}

func TestOpenRejectsUnknownBackendKind(t *testing.T) {
	cfg, err := config.New("")
	require.NoError(t, err)
	cfg.Set(config.KeyStorageBackend, "carrier-pigeon")

	_, err = Open(context.Background(), cfg, filepath.Join(t.TempDir(), "graph.jsonl"))
	assert.Error(t, err)
}

func TestBulkAppendFansOutAcrossWorkerPool(t *testing.T) {
	cfg, err := config.New("")
	require.NoError(t, err)
	cfg.Set(config.KeyWorkerPoolMax, 4)

	dir := t.TempDir()
	e, err := Open(context.Background(), cfg, filepath.Join(dir, "graph.jsonl"))
	require.NoError(t, err)
	defer e.Close()

	entities := make([]*kgtypes.Entity, 0, 50)
	for i := 0; i < 50; i++ {
		entities = append(entities, &kgtypes.Entity{Name: "entity-" + strconv.Itoa(i), EntityType: "thing"})
	}
	relations := []*kgtypes.Relation{
		{From: entities[0].Name, To: entities[1].Name, RelationType: "knows"},
	}

	entityErrs, relationErrs := e.BulkAppend(context.Background(), entities, relations, BulkAppendOpts{})

	failures := 0
	for _, err := range entityErrs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 0, failures)
	for _, err := range relationErrs {
		assert.NoError(t, err)
	}
	assert.Equal(t, len(entities), e.Backend.View().EntityCount())
}
