// Package txn implements the transaction manager (§4.L): begin captures a
// snapshot, operations are staged rather than applied, and commit replays
// the staged operations against a mutable copy before persisting.
package txn

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// State is one of the transaction's four states.
type State string

const (
	StateIdle       State = "idle"
	StateOpen       State = "open"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled-back"
)

// OpKind identifies one staged operation.
type OpKind string

const (
	OpCreateEntity   OpKind = "create-entity"
	OpUpdateEntity   OpKind = "update-entity"
	OpDeleteEntity   OpKind = "delete-entity"
	OpCreateRelation OpKind = "create-relation"
	OpDeleteRelation OpKind = "delete-relation"
)

// Op is one staged mutation. Exactly one of Entity/Relation/RelationKey is
// set, matching Kind.
type Op struct {
	Kind        OpKind
	Entity      *kgtypes.Entity
	Relation    *kgtypes.Relation
	RelationKey kgtypes.RelationKey
}

// Persister is the subset of store.Store the manager needs: read the current
// view and persist a full replacement (§4.C's Save).
type Persister interface {
	View() *kgtypes.Graph
	Save(ctx context.Context, g *kgtypes.Graph) error
}

// Result is returned by Commit and by the batch builder's Execute.
type Result struct {
	TxnID              uuid.UUID
	Success            bool
	Error              error
	OperationsExecuted int
}

// Manager tracks one transaction's lifecycle over a Persister. A Manager is
// not safe for concurrent use by multiple goroutines issuing begin/stage/
// commit on the same instance; callers serialise access to one Manager the
// way the store serialises mutations.
type Manager struct {
	mu       sync.Mutex
	store    Persister
	state    State
	snapshot *kgtypes.Graph
	staged   []Op
	txnID    uuid.UUID
}

// ID returns the current (or most recently committed/rolled-back)
// transaction's identifier, assigned fresh on every Begin (§4.L: commit
// results and audit logging need a stable handle per transaction attempt).
func (m *Manager) ID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txnID
}

// New returns an idle Manager bound to store.
func New(store Persister) *Manager {
	return &Manager{store: store, state: StateIdle}
}

// State returns the manager's current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Begin captures a deep-copy snapshot of the current view and moves to open.
// Calling Begin while already open is an error (§4.L: "re-entry is an
// error").
func (m *Manager) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateOpen {
		return kgerr.New(kgerr.InvalidState, "transaction already open")
	}
	m.snapshot = m.store.View().Clone()
	m.staged = nil
	m.txnID = uuid.New()
	m.state = StateOpen
	return nil
}

// Stage appends one operation to the staged list without applying it.
func (m *Manager) Stage(op Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen {
		return kgerr.New(kgerr.InvalidState, "no open transaction to stage against")
	}
	m.staged = append(m.staged, op)
	return nil
}

// Commit applies every staged operation, in order, to a mutable copy of the
// current view. On the first failing operation the snapshot is restored and
// Result.Success is false with OperationsExecuted 0 (the whole transaction
// fails atomically, matching the resolved duplicate-name open question). On
// success the result is persisted via a full save.
func (m *Manager) Commit(ctx context.Context) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen {
		return Result{Success: false, Error: kgerr.New(kgerr.InvalidState, "no open transaction to commit")}
	}

	working := m.snapshot.Clone()
	for _, op := range m.staged {
		if err := applyOp(working, op); err != nil {
			m.state = StateRolledBack
			return Result{TxnID: m.txnID, Success: false, Error: err, OperationsExecuted: 0}
		}
	}

	if err := m.store.Save(ctx, working); err != nil {
		m.state = StateRolledBack
		return Result{TxnID: m.txnID, Success: false, Error: err, OperationsExecuted: 0}
	}

	m.state = StateCommitted
	n := len(m.staged)
	m.staged = nil
	return Result{TxnID: m.txnID, Success: true, OperationsExecuted: n}
}

// Rollback discards staged operations. If a backup snapshot exists (Begin
// was called), it is restored on disk via a full save with the snapshot's
// contents, undoing anything a partial commit may have written.
func (m *Manager) Rollback(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = nil
	if m.snapshot == nil {
		m.state = StateRolledBack
		return nil
	}
	if err := m.store.Save(ctx, m.snapshot.Clone()); err != nil {
		return err
	}
	m.state = StateRolledBack
	return nil
}

// applyOp mutates working in place, validating uniqueness, existence, and
// parent acyclicity per §4.L.
func applyOp(working *kgtypes.Graph, op Op) error {
	switch op.Kind {
	case OpCreateEntity:
		if _, exists := working.Entities[op.Entity.Name]; exists {
			return kgerr.New(kgerr.DuplicateEntity, "entity %q already exists", op.Entity.Name)
		}
		if err := kgtypes.ValidateEntity(op.Entity); err != nil {
			return err
		}
		if op.Entity.ParentID != "" && kgtypes.WouldCycle(working, op.Entity.Name, op.Entity.ParentID) {
			return kgerr.New(kgerr.CycleDetected, "entity %q: parent %q would create a cycle", op.Entity.Name, op.Entity.ParentID)
		}
		working.Entities[op.Entity.Name] = op.Entity.Clone()

	case OpUpdateEntity:
		if _, exists := working.Entities[op.Entity.Name]; !exists {
			return kgerr.New(kgerr.EntityNotFound, "entity %q not found", op.Entity.Name)
		}
		if err := kgtypes.ValidateEntity(op.Entity); err != nil {
			return err
		}
		if op.Entity.ParentID != "" && kgtypes.WouldCycle(working, op.Entity.Name, op.Entity.ParentID) {
			return kgerr.New(kgerr.CycleDetected, "entity %q: parent %q would create a cycle", op.Entity.Name, op.Entity.ParentID)
		}
		working.Entities[op.Entity.Name] = op.Entity.Clone()

	case OpDeleteEntity:
		name := op.Entity.Name
		if _, exists := working.Entities[name]; !exists {
			return kgerr.New(kgerr.EntityNotFound, "entity %q not found", name)
		}
		delete(working.Entities, name)
		for _, key := range working.RelationsReferencing(name) {
			delete(working.Relations, key)
		}

	case OpCreateRelation:
		key := op.Relation.Key()
		if _, exists := working.Relations[key]; exists {
			return kgerr.New(kgerr.DuplicateRelation, "relation %s->%s (%s) already exists", key.From, key.To, key.Type)
		}
		if err := kgtypes.ValidateRelation(op.Relation); err != nil {
			return err
		}
		if _, ok := working.Entities[op.Relation.From]; !ok {
			return kgerr.New(kgerr.EntityNotFound, "relation source %q not found", op.Relation.From)
		}
		if _, ok := working.Entities[op.Relation.To]; !ok {
			return kgerr.New(kgerr.EntityNotFound, "relation target %q not found", op.Relation.To)
		}
		working.Relations[key] = op.Relation.Clone()

	case OpDeleteRelation:
		if _, exists := working.Relations[op.RelationKey]; !exists {
			return kgerr.New(kgerr.RelationNotFound, "relation %s->%s (%s) not found", op.RelationKey.From, op.RelationKey.To, op.RelationKey.Type)
		}
		delete(working.Relations, op.RelationKey)

	default:
		return kgerr.New(kgerr.ValidationFailure, "unknown operation kind %q", op.Kind)
	}
	return nil
}
