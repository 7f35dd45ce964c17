// Package store implements the append-only store (§4.C): it owns the
// validated file path, the mutex serialising all mutations, the in-memory
// cached view, and the pending-append counter that drives lazy compaction.
package store

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kgraph/kgcore/internal/codec"
	"github.com/kgraph/kgcore/internal/durable"
	"github.com/kgraph/kgcore/internal/eventbus"
	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// CompactionMinPending and CompactionFraction parameterise the trigger rule
// from §3: compaction runs once pending appends reach
// max(CompactionMinPending, CompactionFraction * |entities|).
var (
	CompactionMinPending = 100
	CompactionFraction   = 0.1
)

// Backend is the surface both storage-backend kinds implement (§6
// Configuration: storage backend kind in {append-only-log, sql-backed}):
// the append-only Store here, and internal/storage/sqlbackend's Store.
// Callers needing either backend interchangeably should depend on this
// rather than the concrete type.
type Backend interface {
	Load(ctx context.Context) error
	View() *kgtypes.Graph
	Indexes() *index.Indexes
	AppendEntity(ctx context.Context, e *kgtypes.Entity) error
	AppendRelation(ctx context.Context, r *kgtypes.Relation) error
	UpdateEntity(ctx context.Context, e *kgtypes.Entity) error
	Save(ctx context.Context, g *kgtypes.Graph) error
	Bus() *eventbus.Bus
}

// Store owns a single knowledge graph's durable log and in-memory view.
type Store struct {
	path string
	perm os.FileMode

	mu             sync.Mutex
	view           *kgtypes.Graph
	indexes        *index.Indexes
	pendingAppends int

	bus            *eventbus.Bus
	invalidateCache func()
	now            func() time.Time
}

// Option configures a Store at construction.
type Option func(*Store)

// WithEventBus attaches the bus mutations are dispatched to.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithCacheInvalidator registers the hook called after every mutation
// (§4.P: any mutation clears all caches globally).
func WithCacheInvalidator(fn func()) Option {
	return func(s *Store) { s.invalidateCache = fn }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New constructs a Store bound to path. Load must be called separately to
// populate the view from disk.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:            path,
		perm:            0o644,
		view:            kgtypes.NewGraph(),
		indexes:         index.New(),
		bus:             eventbus.New(),
		invalidateCache: func() {},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replays the file once, deduplicating by key (latest wins), populates
// the view and indexes, and emits graph:loaded. A missing file yields an
// empty view, not an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := durable.ReadAllTolerant(s.path)
	if err != nil {
		return err
	}
	view := kgtypes.NewGraph()
	now := s.now()
	for _, line := range lines {
		dec, derr := codec.Decode(line, now)
		if derr != nil {
			// Trailing partial/corrupt lines are discarded, not fatal (§4.B).
			continue
		}
		if dec.Entity != nil {
			view.Entities[dec.Entity.Name] = dec.Entity
		}
		if dec.Relation != nil {
			view.Relations[dec.Relation.Key()] = dec.Relation
		}
	}
	s.view = view
	s.indexes = index.Rebuild(view)
	s.pendingAppends = 0
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.GraphLoaded})
	return nil
}

// View returns a shared, read-only reference to the cached view. Callers
// must not mutate it; reads do not take the mutex (§5 scheduling model).
func (s *Store) View() *kgtypes.Graph {
	return s.view
}

// Indexes returns the current index set, sharing the same read-without-
// locking discipline as View.
func (s *Store) Indexes() *index.Indexes {
	return s.indexes
}

// MutableCopy returns a deep copy of the view for in-place mutation ahead of
// a full Save (used by the transaction manager).
func (s *Store) MutableCopy() *kgtypes.Graph {
	return s.view.Clone()
}

// AppendEntity stages and writes one entity record, then updates the
// in-memory view, indexes, and caches, and emits entity:created.
func (s *Store) AppendEntity(ctx context.Context, e *kgtypes.Entity) error {
	if err := kgtypes.ValidateEntity(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.LastModified.IsZero() {
		e.LastModified = e.CreatedAt
	}

	line, err := codec.EncodeEntity(e)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "encode entity %s", e.Name)
	}
	if err := durable.Append(s.path, line, s.perm); err != nil {
		return err
	}

	s.view.Entities[e.Name] = e
	s.indexes.AddEntity(e)
	s.pendingAppends++
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.EntityCreated, Payload: e.Name})

	return s.maybeCompactLocked(ctx)
}

// AppendRelation stages and writes one relation record, superseding any
// prior record with the same identity triple.
func (s *Store) AppendRelation(ctx context.Context, r *kgtypes.Relation) error {
	if err := kgtypes.ValidateRelation(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.LastModified.IsZero() {
		r.LastModified = r.CreatedAt
	}

	line, err := codec.EncodeRelation(r)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "encode relation %s->%s", r.From, r.To)
	}
	if err := durable.Append(s.path, line, s.perm); err != nil {
		return err
	}

	key := r.Key()
	s.indexes.RemoveRelation(key)
	s.view.Relations[key] = r
	s.indexes.AddRelation(key, r)
	s.pendingAppends++
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.RelationCreated, Payload: key})

	return s.maybeCompactLocked(ctx)
}

// UpdateEntity locates e by name and appends a superseding record, replacing
// the cached entity with e on success.
func (s *Store) UpdateEntity(ctx context.Context, e *kgtypes.Entity) error {
	if err := kgtypes.ValidateEntity(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.view.Entities[e.Name]; !ok {
		return kgerr.New(kgerr.EntityNotFound, "entity %q not found", e.Name)
	}
	e.LastModified = s.now()
	if e.CreatedAt.IsZero() {
		if prior := s.view.Entities[e.Name]; prior != nil {
			e.CreatedAt = prior.CreatedAt
		} else {
			e.CreatedAt = e.LastModified
		}
	}

	line, err := codec.EncodeEntity(e)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "encode entity %s", e.Name)
	}
	if err := durable.Append(s.path, line, s.perm); err != nil {
		return err
	}

	s.view.Entities[e.Name] = e
	s.indexes.AddEntity(e)
	s.pendingAppends++
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.EntityUpdated, Payload: e.Name})

	return s.maybeCompactLocked(ctx)
}

// Compact rewrites the log to contain exactly the view's current records,
// via a full write, and clears the pending-append counter. Idempotent:
// compacting twice in a row produces the same on-disk content both times.
func (s *Store) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compactLocked(ctx)
}

func (s *Store) maybeCompactLocked(ctx context.Context) error {
	threshold := compactionThreshold(len(s.view.Entities))
	if s.pendingAppends < threshold {
		return nil
	}
	return s.compactLocked(ctx)
}

func compactionThreshold(entityCount int) int {
	frac := int(float64(entityCount) * CompactionFraction)
	if frac < CompactionMinPending {
		return CompactionMinPending
	}
	return frac
}

// compactLocked rewrites the log to just its current view. A marker file
// tagged with a fresh nonce brackets the rewrite so a crash mid-compaction
// leaves identifiable forensic evidence of which attempt was in flight,
// rather than an anonymous stray *.tmp.* file from durable.WriteFull.
func (s *Store) compactLocked(ctx context.Context) error {
	marker := s.path + ".compacting-" + uuid.NewString()
	if err := os.WriteFile(marker, nil, s.perm); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "write compaction marker")
	}
	defer os.Remove(marker)

	data, err := encodeGraph(s.view)
	if err != nil {
		return err
	}
	if err := durable.WriteFull(s.path, data, s.perm); err != nil {
		return err
	}
	s.pendingAppends = 0
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.GraphSaved})
	return nil
}

// Save performs a full write of the given graph, replaces the cache,
// rebuilds indexes, and resets the pending counter. Used by the transaction
// manager on commit and for restore-from-snapshot on rollback.
func (s *Store) Save(ctx context.Context, g *kgtypes.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeGraph(g)
	if err != nil {
		return err
	}
	if err := durable.WriteFull(s.path, data, s.perm); err != nil {
		return err
	}
	s.view = g
	s.indexes = index.Rebuild(g)
	s.pendingAppends = 0
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.GraphSaved})
	return nil
}

func encodeGraph(g *kgtypes.Graph) ([]byte, error) {
	var buf []byte
	first := true
	appendLine := func(line []byte) {
		if !first {
			buf = append(buf, '\n')
		}
		buf = append(buf, line...)
		first = false
	}
	for _, e := range g.Entities {
		line, err := codec.EncodeEntity(e)
		if err != nil {
			return nil, kgerr.Wrap(kgerr.StorageWrite, err, "encode entity %s", e.Name)
		}
		appendLine(line)
	}
	for _, r := range g.Relations {
		line, err := codec.EncodeRelation(r)
		if err != nil {
			return nil, kgerr.Wrap(kgerr.StorageWrite, err, "encode relation %s->%s", r.From, r.To)
		}
		appendLine(line)
	}
	return buf, nil
}

// Bus returns the store's event bus, for subscriber registration.
func (s *Store) Bus() *eventbus.Bus { return s.bus }
