// Package sqlbackend implements the "sql-backed" storage-backend kind
// (§6 Configuration: storage backend kind in {append-only-log,
// sql-backed}): a second store.Backend implementation, rows-on-disk
// instead of an append-only log, driven through database/sql so the same
// schema serves both a real MySQL server (github.com/go-sql-driver/mysql)
// and an embedded Dolt database (github.com/dolthub/driver) without any
// code change beyond the driver name passed to Open.
package sqlbackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kgraph/kgcore/internal/eventbus"
	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

const schema = `
CREATE TABLE IF NOT EXISTS kg_entities (
	name          VARCHAR(500) PRIMARY KEY,
	entity_type   VARCHAR(100) NOT NULL,
	observations  TEXT,
	tags          TEXT,
	importance    INT NULL,
	parent_id     VARCHAR(500),
	created_at    DATETIME NOT NULL,
	last_modified DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS kg_relations (
	from_name     VARCHAR(500) NOT NULL,
	to_name       VARCHAR(500) NOT NULL,
	relation_type VARCHAR(100) NOT NULL,
	weight        DOUBLE NULL,
	confidence    DOUBLE NULL,
	properties    TEXT,
	created_at    DATETIME NOT NULL,
	last_modified DATETIME NOT NULL,
	PRIMARY KEY (from_name, to_name, relation_type)
);
`

// Store is a store.Backend backed by a SQL database rather than an
// append-only log file. It keeps the same in-memory view/indexes cache
// as the log-backed store (§5: reads never touch the database), and
// writes through to SQL on every mutation.
type Store struct {
	db *sql.DB

	mu      chan struct{} // 1-buffered mutex, mirrors store.Store's sync.Mutex discipline
	view    *kgtypes.Graph
	indexes *index.Indexes

	bus             *eventbus.Bus
	invalidateCache func()
	now             func() time.Time
}

// Option configures a Store at construction, mirroring internal/store's
// functional-option shape.
type Option func(*Store)

func WithEventBus(bus *eventbus.Bus) Option { return func(s *Store) { s.bus = bus } }

func WithCacheInvalidator(fn func()) Option {
	return func(s *Store) { s.invalidateCache = fn }
}

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Open connects via database/sql using driverName ("mysql" or "dolt") and
// dsn, creates the schema if absent, and returns an unloaded Store; call
// Load to populate the view.
func Open(driverName, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.StorageRead, err, "open sql backend %s", driverName)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, kgerr.Wrap(kgerr.StorageWrite, err, "create sql backend schema")
	}
	s := &Store{
		db:              db,
		mu:              make(chan struct{}, 1),
		view:            kgtypes.NewGraph(),
		indexes:         index.New(),
		bus:             eventbus.New(),
		invalidateCache: func() {},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu <- struct{}{}
	return s, nil
}

func (s *Store) lock()   { <-s.mu }
func (s *Store) unlock() { s.mu <- struct{}{} }

// Load reads every row into the in-memory view and rebuilds indexes.
func (s *Store) Load(ctx context.Context) error {
	s.lock()
	defer s.unlock()

	view := kgtypes.NewGraph()
	if err := s.loadEntities(ctx, view); err != nil {
		return err
	}
	if err := s.loadRelations(ctx, view); err != nil {
		return err
	}
	s.view = view
	s.indexes = index.Rebuild(view)
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.GraphLoaded})
	return nil
}

func (s *Store) loadEntities(ctx context.Context, view *kgtypes.Graph) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, entity_type, observations, tags, importance, parent_id, created_at, last_modified FROM kg_entities`)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageRead, err, "query entities")
	}
	defer rows.Close()

	for rows.Next() {
		var e kgtypes.Entity
		var observations, tags sql.NullString
		var importance sql.NullInt64
		var parentID sql.NullString
		if err := rows.Scan(&e.Name, &e.EntityType, &observations, &tags, &importance, &parentID, &e.CreatedAt, &e.LastModified); err != nil {
			return kgerr.Wrap(kgerr.StorageRead, err, "scan entity row")
		}
		if observations.Valid {
			_ = json.Unmarshal([]byte(observations.String), &e.Observations)
		}
		if tags.Valid {
			_ = json.Unmarshal([]byte(tags.String), &e.Tags)
		}
		if importance.Valid {
			v := int(importance.Int64)
			e.Importance = &v
		}
		e.ParentID = parentID.String
		view.Entities[e.Name] = &e
	}
	return rows.Err()
}

func (s *Store) loadRelations(ctx context.Context, view *kgtypes.Graph) error {
	rows, err := s.db.QueryContext(ctx, `SELECT from_name, to_name, relation_type, weight, confidence, properties, created_at, last_modified FROM kg_relations`)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageRead, err, "query relations")
	}
	defer rows.Close()

	for rows.Next() {
		var r kgtypes.Relation
		var weight, confidence sql.NullFloat64
		var properties sql.NullString
		if err := rows.Scan(&r.From, &r.To, &r.RelationType, &weight, &confidence, &properties, &r.CreatedAt, &r.LastModified); err != nil {
			return kgerr.Wrap(kgerr.StorageRead, err, "scan relation row")
		}
		if weight.Valid {
			v := weight.Float64
			r.Weight = &v
		}
		if confidence.Valid {
			v := confidence.Float64
			r.Confidence = &v
		}
		if properties.Valid {
			_ = json.Unmarshal([]byte(properties.String), &r.Properties)
		}
		view.Relations[r.Key()] = &r
	}
	return rows.Err()
}

// View returns a shared, read-only reference to the cached view.
func (s *Store) View() *kgtypes.Graph { return s.view }

// Indexes returns the current index set.
func (s *Store) Indexes() *index.Indexes { return s.indexes }

// Bus returns the store's event bus, for subscriber registration.
func (s *Store) Bus() *eventbus.Bus { return s.bus }

// AppendEntity upserts one entity row and updates the cached view/indexes.
func (s *Store) AppendEntity(ctx context.Context, e *kgtypes.Entity) error {
	if err := kgtypes.ValidateEntity(e); err != nil {
		return err
	}
	s.lock()
	defer s.unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.LastModified.IsZero() {
		e.LastModified = e.CreatedAt
	}
	if err := s.upsertEntity(ctx, e); err != nil {
		return err
	}

	s.view.Entities[e.Name] = e
	s.indexes.AddEntity(e)
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.EntityCreated, Payload: e.Name})
	return nil
}

// UpdateEntity requires e to already exist, then upserts the superseding
// row in place.
func (s *Store) UpdateEntity(ctx context.Context, e *kgtypes.Entity) error {
	if err := kgtypes.ValidateEntity(e); err != nil {
		return err
	}
	s.lock()
	defer s.unlock()

	prior, ok := s.view.Entities[e.Name]
	if !ok {
		return kgerr.New(kgerr.EntityNotFound, "entity %q not found", e.Name)
	}
	e.LastModified = s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = prior.CreatedAt
	}
	if err := s.upsertEntity(ctx, e); err != nil {
		return err
	}

	s.view.Entities[e.Name] = e
	s.indexes.AddEntity(e)
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.EntityUpdated, Payload: e.Name})
	return nil
}

func (s *Store) upsertEntity(ctx context.Context, e *kgtypes.Entity) error {
	observations, _ := json.Marshal(e.Observations)
	tags, _ := json.Marshal(e.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kg_entities (name, entity_type, observations, tags, importance, parent_id, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE entity_type=VALUES(entity_type), observations=VALUES(observations),
			tags=VALUES(tags), importance=VALUES(importance), parent_id=VALUES(parent_id),
			last_modified=VALUES(last_modified)`,
		e.Name, e.EntityType, string(observations), string(tags), e.Importance, e.ParentID, e.CreatedAt, e.LastModified)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "upsert entity %s", e.Name)
	}
	return nil
}

// AppendRelation upserts one relation row, superseding any prior record
// with the same identity triple.
func (s *Store) AppendRelation(ctx context.Context, r *kgtypes.Relation) error {
	if err := kgtypes.ValidateRelation(r); err != nil {
		return err
	}
	s.lock()
	defer s.unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.LastModified.IsZero() {
		r.LastModified = r.CreatedAt
	}
	properties, _ := json.Marshal(r.Properties)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kg_relations (from_name, to_name, relation_type, weight, confidence, properties, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE weight=VALUES(weight), confidence=VALUES(confidence),
			properties=VALUES(properties), last_modified=VALUES(last_modified)`,
		r.From, r.To, r.RelationType, r.Weight, r.Confidence, string(properties), r.CreatedAt, r.LastModified)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "upsert relation %s->%s", r.From, r.To)
	}

	key := r.Key()
	s.indexes.RemoveRelation(key)
	s.view.Relations[key] = r
	s.indexes.AddRelation(key, r)
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.RelationCreated, Payload: key})
	return nil
}

// Save replaces the entire table contents with g's entities/relations in
// one transaction, then replaces the cached view (used by the transaction
// manager on commit and rollback).
func (s *Store) Save(ctx context.Context, g *kgtypes.Graph) error {
	s.lock()
	defer s.unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "begin save transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kg_entities`); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "clear entities")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM kg_relations`); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "clear relations")
	}
	for _, e := range g.Entities {
		observations, _ := json.Marshal(e.Observations)
		tags, _ := json.Marshal(e.Tags)
		if _, err := tx.ExecContext(ctx, `INSERT INTO kg_entities (name, entity_type, observations, tags, importance, parent_id, created_at, last_modified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Name, e.EntityType, string(observations), string(tags), e.Importance, e.ParentID, e.CreatedAt, e.LastModified); err != nil {
			return kgerr.Wrap(kgerr.StorageWrite, err, "insert entity %s", e.Name)
		}
	}
	for _, r := range g.Relations {
		properties, _ := json.Marshal(r.Properties)
		if _, err := tx.ExecContext(ctx, `INSERT INTO kg_relations (from_name, to_name, relation_type, weight, confidence, properties, created_at, last_modified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.From, r.To, r.RelationType, r.Weight, r.Confidence, string(properties), r.CreatedAt, r.LastModified); err != nil {
			return kgerr.Wrap(kgerr.StorageWrite, err, "insert relation %s->%s", r.From, r.To)
		}
	}
	if err := tx.Commit(); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "commit save transaction")
	}

	s.view = g
	s.indexes = index.Rebuild(g)
	s.invalidateCache()
	s.bus.Dispatch(ctx, &eventbus.Event{Type: eventbus.GraphSaved})
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }
