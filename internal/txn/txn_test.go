package txn

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

type fakeStore struct {
	view *kgtypes.Graph
	save func(*kgtypes.Graph) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{view: kgtypes.NewGraph()}
}

func (f *fakeStore) View() *kgtypes.Graph { return f.view }

func (f *fakeStore) Save(ctx context.Context, g *kgtypes.Graph) error {
	if f.save != nil {
		if err := f.save(g); err != nil {
			return err
		}
	}
	f.view = g
	return nil
}

func TestBeginStageCommitAppliesInOrder(t *testing.T) {
	store := newFakeStore()
	mgr := New(store)
	require.NoError(t, mgr.Begin())
	require.NoError(t, mgr.Stage(Op{Kind: OpCreateEntity, Entity: &kgtypes.Entity{Name: "Alice"}}))
	require.NoError(t, mgr.Stage(Op{Kind: OpCreateEntity, Entity: &kgtypes.Entity{Name: "Bob"}}))

	result := mgr.Commit(context.Background())
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.OperationsExecuted)
	assert.Contains(t, store.View().Entities, "Alice")
	assert.Contains(t, store.View().Entities, "Bob")
	assert.NotEqual(t, uuid.Nil, result.TxnID)
	assert.Equal(t, mgr.ID(), result.TxnID)
}

func TestEachBeginAssignsAFreshTxnID(t *testing.T) {
	mgr := New(newFakeStore())
	require.NoError(t, mgr.Begin())
	first := mgr.ID()
	require.NoError(t, mgr.Rollback(context.Background()))

	require.NoError(t, mgr.Begin())
	second := mgr.ID()

	assert.NotEqual(t, uuid.Nil, first)
	assert.NotEqual(t, first, second)
}

func TestDuplicateNameFailsWholeTransaction(t *testing.T) {
	store := newFakeStore()
	store.view.Entities["Alice"] = &kgtypes.Entity{Name: "Alice"}

	mgr := New(store)
	require.NoError(t, mgr.Begin())
	require.NoError(t, mgr.Stage(Op{Kind: OpCreateEntity, Entity: &kgtypes.Entity{Name: "Bob"}}))
	require.NoError(t, mgr.Stage(Op{Kind: OpCreateEntity, Entity: &kgtypes.Entity{Name: "Alice"}}))

	result := mgr.Commit(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.OperationsExecuted)
	// Bob must not have been persisted; the whole transaction failed.
	assert.NotContains(t, store.View().Entities, "Bob")
}

func TestReentrantBeginIsError(t *testing.T) {
	store := newFakeStore()
	mgr := New(store)
	require.NoError(t, mgr.Begin())
	err := mgr.Begin()
	assert.Error(t, err)
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	store := newFakeStore()
	store.view.Entities["Alice"] = &kgtypes.Entity{Name: "Alice"}

	mgr := New(store)
	require.NoError(t, mgr.Begin())
	require.NoError(t, mgr.Stage(Op{Kind: OpDeleteEntity, Entity: &kgtypes.Entity{Name: "Alice"}}))
	require.NoError(t, mgr.Rollback(context.Background()))

	assert.Contains(t, store.View().Entities, "Alice")
	assert.Equal(t, StateRolledBack, mgr.State())
}

func TestCycleDetectedRejectsOp(t *testing.T) {
	store := newFakeStore()
	store.view.Entities["Alice"] = &kgtypes.Entity{Name: "Alice", ParentID: "Bob"}
	store.view.Entities["Bob"] = &kgtypes.Entity{Name: "Bob"}

	mgr := New(store)
	require.NoError(t, mgr.Begin())
	require.NoError(t, mgr.Stage(Op{Kind: OpUpdateEntity, Entity: &kgtypes.Entity{Name: "Bob", ParentID: "Alice"}}))

	result := mgr.Commit(context.Background())
	assert.False(t, result.Success)
}

func TestBatchBuilderExecutesLikeExplicitTransaction(t *testing.T) {
	store := newFakeStore()
	result := NewBatch(store).
		CreateEntity(&kgtypes.Entity{Name: "Alice"}).
		CreateEntity(&kgtypes.Entity{Name: "Bob"}).
		CreateRelation(&kgtypes.Relation{From: "Alice", To: "Bob", RelationType: "manages"}).
		Execute(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.OperationsExecuted)
	assert.Len(t, store.View().Entities, 2)
	assert.Len(t, store.View().Relations, 1)
}

func TestBatchBuilderRollsBackOnFailure(t *testing.T) {
	store := newFakeStore()
	result := NewBatch(store).
		CreateEntity(&kgtypes.Entity{Name: "Alice"}).
		DeleteEntity("Missing").
		Execute(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.OperationsExecuted)
}
