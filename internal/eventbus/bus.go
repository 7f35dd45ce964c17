// Package eventbus dispatches graph-mutation events to subscribers (§4.O).
// Dispatch is synchronous within the mutation thread: handlers run in
// priority order and a handler's error is logged and swallowed rather than
// aborting the mutation or the remaining handlers.
package eventbus

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kgraph/kgcore/internal/obslog"
)

// EventType is one of the mutation event kinds from §4.O.
type EventType string

const (
	EntityCreated   EventType = "entity:created"
	EntityUpdated   EventType = "entity:updated"
	RelationCreated EventType = "relation:created"
	RelationDeleted EventType = "relation:deleted"
	GraphLoaded     EventType = "graph:loaded"
	GraphSaved      EventType = "graph:saved"
)

// Event is dispatched to subscribers on every mutation. Payload carries the
// mutated entity/relation name(s) or nil for whole-graph events.
type Event struct {
	Type    EventType
	Payload any
}

// Handler is a subscriber. Handles returning nil means "any" — it is
// invoked for every event type.
type Handler interface {
	ID() string
	Handles() []EventType
	Priority() int
	Handle(ctx context.Context, event *Event) error
}

// FuncHandler adapts a plain function to the Handler interface, mirroring
// how simple subscribers (the TF-IDF updater, the cache invalidator) are
// registered without a dedicated type.
type FuncHandler struct {
	HandlerID  string
	EventTypes []EventType // nil means "any"
	Prio       int
	Fn         func(ctx context.Context, event *Event) error
}

func (f *FuncHandler) ID() string           { return f.HandlerID }
func (f *FuncHandler) Handles() []EventType { return f.EventTypes }
func (f *FuncHandler) Priority() int        { return f.Prio }
func (f *FuncHandler) Handle(ctx context.Context, event *Event) error {
	return f.Fn(ctx, event)
}

// Bus holds registered handlers and dispatches events in the order
// mutations complete (§5 ordering guarantee).
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Register adds a handler. Handlers are re-sorted by priority on each
// Dispatch, so registration order does not matter.
func (b *Bus) Register(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Unregister removes a handler by ID; reports whether one was removed.
func (b *Bus) Unregister(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, h := range b.handlers {
		if h.ID() == id {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch runs every handler subscribed to event.Type (or "any") in
// priority order (lowest first). A handler error is logged, not returned;
// the mutation that triggered this event has already completed by the time
// Dispatch is called, so there is nothing left to abort.
func (b *Bus) Dispatch(ctx context.Context, event *Event) {
	if event == nil {
		return
	}
	b.mu.RLock()
	matching := b.matchingHandlers(event.Type)
	b.mu.RUnlock()

	for _, h := range matching {
		if err := h.Handle(ctx, event); err != nil {
			obslog.Errorf(ctx, "eventbus", fmt.Sprintf("handler %q error for %s", h.ID(), event.Type), "err", err)
		}
	}
}

// Handlers returns all registered handlers, for introspection.
func (b *Bus) Handlers() []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, len(b.handlers))
	copy(out, b.handlers)
	return out
}

func (b *Bus) matchingHandlers(t EventType) []Handler {
	var matched []Handler
	for _, h := range b.handlers {
		types := h.Handles()
		if types == nil {
			matched = append(matched, h)
			continue
		}
		for _, et := range types {
			if et == t {
				matched = append(matched, h)
				break
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority() < matched[j].Priority()
	})
	return matched
}
