// Package engine wires the core's independent packages (store, indexes,
// search dispatcher, transaction manager, cache fabric, embedding
// provider) into one construct-and-go object, the way the teacher's
// cmd/bd commands assemble a storage provider plus its dependents inline
// rather than through a dedicated container type. cmd/kg is the only
// consumer; nothing else in internal/ depends on this package, keeping
// the wiring decisions out of the packages being wired.
package engine

import (
	"context"
	"time"

	"github.com/kgraph/kgcore/internal/cache"
	"github.com/kgraph/kgcore/internal/config"
	"github.com/kgraph/kgcore/internal/embedding"
	"github.com/kgraph/kgcore/internal/eventbus"
	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
	"github.com/kgraph/kgcore/internal/obsmetrics"
	"github.com/kgraph/kgcore/internal/scheduler"
	"github.com/kgraph/kgcore/internal/search"
	"github.com/kgraph/kgcore/internal/storage/sqlbackend"
	"github.com/kgraph/kgcore/internal/store"
	"github.com/kgraph/kgcore/internal/tfidf"
	"github.com/kgraph/kgcore/internal/txn"
	"github.com/kgraph/kgcore/internal/vectorstore"
	"github.com/kgraph/kgcore/internal/workerpool"
)

// Engine owns one knowledge graph end to end: the backend (whichever
// storage kind §6's configuration picked), its secondary in-process
// collaborators (TF-IDF statistics, vector store, cache fabric), and the
// search dispatcher and transaction manager built over them.
type Engine struct {
	Backend    store.Backend
	Bus        *eventbus.Bus
	Cache      *cache.Fabric
	Stats      *tfidf.Statistics
	Vectors    *vectorstore.Store
	Embedder   embedding.Provider
	Dispatcher *search.Dispatcher
	Txn        *txn.Manager
	Config     *config.Registry
	Pool       *workerpool.Pool

	metricsShutdown obsmetrics.Shutdown
}

// Open builds an Engine from a Registry, choosing the storage backend kind
// via config.KeyStorageBackend, handing the backend the cache invalidator
// as its invalidation hook, and wiring the TF-IDF updater as an event-bus
// subscriber before the initial Load so the first replay populates it
// (§4.E, §4.P).
func Open(ctx context.Context, cfg *config.Registry, logPath string) (*Engine, error) {
	bus := eventbus.New()
	fabric := cache.New(cfg.Int(config.KeyCacheMaxSize))
	stats := tfidf.New()

	pool := workerpool.New(cfg.Int(config.KeyWorkerPoolMin), cfg.Int(config.KeyWorkerPoolMax))
	workerpool.SetDefault(pool)

	metricsShutdown, err := obsmetrics.Setup()
	if err != nil {
		return nil, err
	}

	e := &Engine{Bus: bus, Cache: fabric, Stats: stats, Config: cfg, Pool: pool, metricsShutdown: metricsShutdown}

	embedCfg := embedding.Config{
		Kind:       embedding.Kind(cfg.String(config.KeyEmbeddingProvider)),
		Dimensions: cfg.Int(config.KeyEmbeddingDimensions),
	}
	embedder, err := embedding.Build(embedCfg)
	if err != nil {
		return nil, err
	}
	e.Embedder = embedder
	e.Vectors = vectorstore.New(embedCfg.Dimensions)

	backend, err := e.openBackend(cfg, logPath, bus, fabric)
	if err != nil {
		return nil, err
	}
	e.Backend = backend
	e.registerHandlers(bus)

	if err := backend.Load(ctx); err != nil {
		return nil, err
	}

	e.Dispatcher = search.NewDispatcher(backend.View(), backend.Indexes())
	e.Dispatcher.Stats = stats
	e.Dispatcher.Vectors = e.Vectors
	e.Dispatcher.FuzzyThresh = cfg.Float64(config.KeyFuzzyThreshold)
	e.Txn = txn.New(backend)

	e.reindexStats()
	return e, nil
}

func (e *Engine) openBackend(cfg *config.Registry, logPath string, bus *eventbus.Bus, fabric *cache.Fabric) (store.Backend, error) {
	switch kind := cfg.String(config.KeyStorageBackend); kind {
	case "append-only-log", "":
		return store.New(logPath,
			store.WithEventBus(bus),
			store.WithCacheInvalidator(fabric.InvalidateAll),
		), nil
	case "sql-backed":
		return sqlbackend.Open(sqlbackend.DriverMySQL, logPath,
			sqlbackend.WithEventBus(bus),
			sqlbackend.WithCacheInvalidator(fabric.InvalidateAll),
		)
	default:
		return nil, kgerr.New(kgerr.InvalidConfig, "unknown storage backend kind %q", kind)
	}
}

// registerHandlers subscribes the TF-IDF statistics updater to entity
// mutation events, so Stats always reflects the current view without the
// dispatcher's callers needing to call UpdateDocument themselves (§4.E,
// §9's "event-driven index maintenance" design note).
func (e *Engine) registerHandlers(bus *eventbus.Bus) {
	bus.Register(&eventbus.FuncHandler{
		HandlerID:  "tfidf-statistics",
		EventTypes: []eventbus.EventType{eventbus.EntityCreated, eventbus.EntityUpdated},
		Prio:       10,
		Fn: func(_ context.Context, event *eventbus.Event) error {
			name, ok := event.Payload.(string)
			if !ok {
				return nil
			}
			entity, ok := e.Backend.View().Entities[name]
			if !ok {
				return nil
			}
			e.Stats.UpdateDocument(name, tfidf.Tokenize(entity))
			return nil
		},
	})
	bus.Register(&eventbus.FuncHandler{
		HandlerID:  "dispatcher-view-refresh",
		EventTypes: []eventbus.EventType{eventbus.GraphLoaded, eventbus.GraphSaved},
		Prio:       5,
		Fn: func(_ context.Context, _ *eventbus.Event) error {
			// Load and Save both swap in a new *Graph/*Indexes pair rather
			// than mutating in place, so the dispatcher's cached pointers
			// need re-pointing after either event.
			if e.Dispatcher != nil {
				e.Dispatcher.Graph = e.Backend.View()
				e.Dispatcher.Indexes = e.Backend.Indexes()
			}
			return nil
		},
	})
	bus.Register(&eventbus.FuncHandler{
		HandlerID:  "tfidf-statistics-reload",
		EventTypes: []eventbus.EventType{eventbus.GraphLoaded, eventbus.GraphSaved},
		Prio:       10,
		Fn: func(_ context.Context, _ *eventbus.Event) error {
			e.reindexStats()
			return nil
		},
	})
}

// reindexStats rebuilds the TF-IDF statistics from scratch against the
// current view, used after a load or a full save replaces the view wholesale
// (an incremental per-document update doesn't apply to those bulk events).
func (e *Engine) reindexStats() {
	fresh := tfidf.New()
	for name, entity := range e.Backend.View().Entities {
		fresh.AddDocument(name, tfidf.Tokenize(entity))
	}
	*e.Stats = *fresh
	if e.Dispatcher != nil {
		e.Dispatcher.Stats = e.Stats
	}
}

// BulkAppendOpts parameterises BulkAppend.
type BulkAppendOpts struct {
	BatchSize     int
	ItemTimeout   time.Duration
	ProgressEvery time.Duration
	OnProgress    func(scheduler.Progress)
}

// BulkAppend appends entities and relations concurrently, bounded by the
// engine's worker pool (config.KeyWorkerPoolMax) and chunked/progress-
// reported by scheduler.ProcessBatches (§6's "large batch import reports
// progress and tolerates per-item failure without aborting the run").
// Each item's AppendEntity/AppendRelation call is itself independently
// locked by the backend, so fanning them out across the pool is safe.
func (e *Engine) BulkAppend(ctx context.Context, entities []*kgtypes.Entity, relations []*kgtypes.Relation, opts BulkAppendOpts) (entityErrs, relationErrs []error) {
	batchOpts := scheduler.BatchOpts{
		BatchSize:     opts.BatchSize,
		ItemTimeout:   opts.ItemTimeout,
		ProgressEvery: opts.ProgressEvery,
		OnProgress:    opts.OnProgress,
	}

	entityItems := make([]any, len(entities))
	for i, ent := range entities {
		entityItems[i] = ent
	}
	entityErrs = scheduler.ProcessBatches(ctx, entityItems, func(ctx context.Context, item any) error {
		ent := item.(*kgtypes.Entity)
		future, err := e.Pool.Submit(ctx, func(ctx context.Context) (any, error) {
			return nil, e.Backend.AppendEntity(ctx, ent)
		}, opts.ItemTimeout)
		if err != nil {
			return err
		}
		_, err, cancelled := future.Wait()
		if cancelled {
			return ctx.Err()
		}
		return err
	}, batchOpts)

	relationItems := make([]any, len(relations))
	for i, rel := range relations {
		relationItems[i] = rel
	}
	relationErrs = scheduler.ProcessBatches(ctx, relationItems, func(ctx context.Context, item any) error {
		rel := item.(*kgtypes.Relation)
		future, err := e.Pool.Submit(ctx, func(ctx context.Context) (any, error) {
			return nil, e.Backend.AppendRelation(ctx, rel)
		}, opts.ItemTimeout)
		if err != nil {
			return err
		}
		_, err, cancelled := future.Wait()
		if cancelled {
			return ctx.Err()
		}
		return err
	}, batchOpts)

	return entityErrs, relationErrs
}

// Close releases any resources the chosen backend holds (a no-op for the
// append-only log, a DB handle close for the SQL-backed kind) and flushes
// the metrics exporter.
func (e *Engine) Close() error {
	if e.metricsShutdown != nil {
		_ = e.metricsShutdown(context.Background())
	}
	if closer, ok := e.Backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
