package txn

import (
	"context"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// Batch is a fluent builder above Manager (§4.M): a sequence of operations
// composed without an explicit Begin, executed as a single begin→stage*→
// commit transaction.
type Batch struct {
	mgr *Manager
	ops []Op
}

// NewBatch starts a fluent batch over store.
func NewBatch(store Persister) *Batch {
	return &Batch{mgr: New(store)}
}

// CreateEntity stages an entity creation.
func (b *Batch) CreateEntity(e *kgtypes.Entity) *Batch {
	b.ops = append(b.ops, Op{Kind: OpCreateEntity, Entity: e})
	return b
}

// UpdateEntity stages an entity update.
func (b *Batch) UpdateEntity(e *kgtypes.Entity) *Batch {
	b.ops = append(b.ops, Op{Kind: OpUpdateEntity, Entity: e})
	return b
}

// DeleteEntity stages an entity deletion by name.
func (b *Batch) DeleteEntity(name string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDeleteEntity, Entity: &kgtypes.Entity{Name: name}})
	return b
}

// CreateRelation stages a relation creation.
func (b *Batch) CreateRelation(r *kgtypes.Relation) *Batch {
	b.ops = append(b.ops, Op{Kind: OpCreateRelation, Relation: r})
	return b
}

// DeleteRelation stages a relation deletion by identity triple.
func (b *Batch) DeleteRelation(key kgtypes.RelationKey) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDeleteRelation, RelationKey: key})
	return b
}

// Execute begins a transaction, stages every accumulated operation, and
// commits. Semantically equivalent to calling Manager.Begin, Stage N times,
// then Commit (§4.M). On any staging failure the transaction is rolled back
// and the failing error is returned with OperationsExecuted 0.
func (b *Batch) Execute(ctx context.Context) Result {
	if err := b.mgr.Begin(); err != nil {
		return Result{Success: false, Error: err}
	}
	for _, op := range b.ops {
		if err := b.mgr.Stage(op); err != nil {
			_ = b.mgr.Rollback(ctx)
			return Result{Success: false, Error: err}
		}
	}
	return b.mgr.Commit(ctx)
}
