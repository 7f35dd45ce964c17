// Package cache implements the per-search-kind result cache fabric (§4.P):
// bounded LRU caches keyed by (query, filters, pagination), invalidated
// globally on any graph mutation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind identifies one of the search methods the fabric caches results for.
type Kind string

const (
	KindBasic    Kind = "basic"
	KindBoolean  Kind = "boolean"
	KindFuzzy    Kind = "fuzzy"
	KindTokenize Kind = "tokenize" // ranked search's tokenisation step
)

// DefaultSize is the per-kind LRU capacity used when none is configured.
const DefaultSize = 256

// Fabric holds one bounded LRU per search kind.
type Fabric struct {
	mu      sync.RWMutex
	caches  map[Kind]*lru.Cache[string, any]
	maxSize int
}

// New builds a Fabric with maxSize entries per kind (DefaultSize if <= 0).
func New(maxSize int) *Fabric {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &Fabric{caches: make(map[Kind]*lru.Cache[string, any]), maxSize: maxSize}
}

func (f *Fabric) cacheFor(kind Kind) *lru.Cache[string, any] {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.caches[kind]
	if !ok {
		c, _ = lru.New[string, any](f.maxSize)
		f.caches[kind] = c
	}
	return c
}

// Key derives a stable cache key from a query string plus any filter/
// pagination value, by hashing their JSON encoding (field order is
// significant; callers should use one consistent struct shape per kind).
func Key(query string, filter any) string {
	payload, _ := json.Marshal(struct {
		Query  string `json:"query"`
		Filter any    `json:"filter"`
	}{Query: query, Filter: filter})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get looks up a cached result for kind and key.
func (f *Fabric) Get(kind Kind, key string) (any, bool) {
	return f.cacheFor(kind).Get(key)
}

// Put stores a result under kind and key, evicting the least-recently-used
// entry for that kind if at capacity.
func (f *Fabric) Put(kind Kind, key string, value any) {
	f.cacheFor(kind).Add(key, value)
}

// InvalidateAll clears every kind's cache. Called after any store mutation
// (§4.P: "any graph mutation clears all caches globally").
func (f *Fabric) InvalidateAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.caches {
		c.Purge()
	}
}

// Len reports how many entries are currently cached for kind, for tests and
// diagnostics.
func (f *Fabric) Len(kind Kind) int {
	return f.cacheFor(kind).Len()
}
