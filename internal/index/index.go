// Package index maintains the secondary indexes over a knowledge graph view
// (§4.D): name→entity, type→names, a lowercase search cache, relation
// incidence, observation-word postings, and an optional integer-ID inverted
// index. All indexes are rebuilt from the view on load and maintained
// incrementally on each mutation; rebuilding from the view is required to be
// a fixed point (§8 property 3).
package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// LowerFields caches the lowercase projections of one entity used by
// substring search (§4.D "lowercase cache").
type LowerFields struct {
	Name         string
	EntityType   string
	Observations []string
}

// Indexes bundles every secondary index kept consistent with a view.
type Indexes struct {
	// NameIndex: name -> entity. O(1) get/has.
	NameIndex map[string]*kgtypes.Entity

	// TypeIndex: lowercased type -> set of names.
	TypeIndex map[string]map[string]struct{}

	// Lower: name -> lowercase cache.
	Lower map[string]LowerFields

	// Outgoing/Incoming: entity name -> relation keys.
	Outgoing map[string][]kgtypes.RelationKey
	Incoming map[string][]kgtypes.RelationKey

	// Words: lowercased alphanumeric token -> set of entity names.
	Words map[string]map[string]struct{}

	// Integer-ID inverted index, optional; built by BuildIntID / enabled via
	// EnableIntIndex. nil until enabled.
	IntIndex *IntIDIndex
}

// New returns an empty index set.
func New() *Indexes {
	return &Indexes{
		NameIndex: make(map[string]*kgtypes.Entity),
		TypeIndex: make(map[string]map[string]struct{}),
		Lower:     make(map[string]LowerFields),
		Outgoing:  make(map[string][]kgtypes.RelationKey),
		Incoming:  make(map[string][]kgtypes.RelationKey),
		Words:     make(map[string]map[string]struct{}),
	}
}

// Rebuild recomputes every index from the view from scratch. Calling this
// twice in a row must be a no-op on the resulting structures (fixed point).
func Rebuild(g *kgtypes.Graph) *Indexes {
	idx := New()
	for _, e := range g.Entities {
		idx.addEntity(e)
	}
	for key, r := range g.Relations {
		idx.addRelation(key, r)
	}
	if idx.IntIndex != nil {
		idx.IntIndex = BuildIntID(g)
	}
	return idx
}

// EnableIntIndex builds the integer-ID inverted index for the current view
// and attaches it; safe to call more than once (rebuilds).
func (idx *Indexes) EnableIntIndex(g *kgtypes.Graph) {
	idx.IntIndex = BuildIntID(g)
}

// AddEntity inserts or replaces one entity's index entries.
func (idx *Indexes) AddEntity(e *kgtypes.Entity) {
	idx.removeEntityWordsAndType(e.Name)
	idx.addEntity(e)
	if idx.IntIndex != nil {
		idx.IntIndex.Upsert(e)
	}
}

func (idx *Indexes) addEntity(e *kgtypes.Entity) {
	idx.NameIndex[e.Name] = e

	t := strings.ToLower(e.EntityType)
	if idx.TypeIndex[t] == nil {
		idx.TypeIndex[t] = make(map[string]struct{})
	}
	idx.TypeIndex[t][e.Name] = struct{}{}

	name, etype, obs := e.LowerFields()
	idx.Lower[e.Name] = LowerFields{Name: name, EntityType: etype, Observations: obs}

	for _, tok := range tokenize(e.Name) {
		idx.addWord(tok, e.Name)
	}
	for _, tok := range tokenize(e.EntityType) {
		idx.addWord(tok, e.Name)
	}
	for _, o := range e.Observations {
		for _, tok := range tokenize(o) {
			idx.addWord(tok, e.Name)
		}
	}
	for _, tag := range e.Tags {
		for _, tok := range tokenize(tag) {
			idx.addWord(tok, e.Name)
		}
	}
}

// RemoveEntity deletes every index entry for name.
func (idx *Indexes) RemoveEntity(name string) {
	idx.removeEntityWordsAndType(name)
	delete(idx.NameIndex, name)
	delete(idx.Lower, name)
	if idx.IntIndex != nil {
		idx.IntIndex.Remove(name)
	}
}

func (idx *Indexes) removeEntityWordsAndType(name string) {
	if e, ok := idx.NameIndex[name]; ok {
		t := strings.ToLower(e.EntityType)
		if set := idx.TypeIndex[t]; set != nil {
			delete(set, name)
			if len(set) == 0 {
				delete(idx.TypeIndex, t)
			}
		}
		for tok := range collectWords(e) {
			if set := idx.Words[tok]; set != nil {
				delete(set, name)
				if len(set) == 0 {
					delete(idx.Words, tok)
				}
			}
		}
	}
}

func collectWords(e *kgtypes.Entity) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(e.Name) {
		set[tok] = struct{}{}
	}
	for _, tok := range tokenize(e.EntityType) {
		set[tok] = struct{}{}
	}
	for _, o := range e.Observations {
		for _, tok := range tokenize(o) {
			set[tok] = struct{}{}
		}
	}
	for _, tag := range e.Tags {
		for _, tok := range tokenize(tag) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func (idx *Indexes) addWord(tok, name string) {
	if idx.Words[tok] == nil {
		idx.Words[tok] = make(map[string]struct{})
	}
	idx.Words[tok][name] = struct{}{}
}

// AddRelation inserts a relation into the incidence indexes, keyed to the
// identity triple so a superseding record replaces rather than duplicates.
func (idx *Indexes) AddRelation(key kgtypes.RelationKey, r *kgtypes.Relation) {
	idx.RemoveRelation(key)
	idx.addRelation(key, r)
}

func (idx *Indexes) addRelation(key kgtypes.RelationKey, r *kgtypes.Relation) {
	idx.Outgoing[r.From] = append(idx.Outgoing[r.From], key)
	idx.Incoming[r.To] = append(idx.Incoming[r.To], key)
}

// RemoveRelation deletes one relation's incidence entries.
func (idx *Indexes) RemoveRelation(key kgtypes.RelationKey) {
	idx.Outgoing[key.From] = removeKey(idx.Outgoing[key.From], key)
	idx.Incoming[key.To] = removeKey(idx.Incoming[key.To], key)
}

func removeKey(keys []kgtypes.RelationKey, target kgtypes.RelationKey) []kgtypes.RelationKey {
	out := keys[:0]
	for _, k := range keys {
		if k != target {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AllFor returns the union of incoming and outgoing relation keys for name.
func (idx *Indexes) AllFor(name string) []kgtypes.RelationKey {
	out := make([]kgtypes.RelationKey, 0, len(idx.Outgoing[name])+len(idx.Incoming[name]))
	out = append(out, idx.Outgoing[name]...)
	out = append(out, idx.Incoming[name]...)
	return out
}

// Types returns every known lowercased entity type, sorted.
func (idx *Indexes) Types() []string {
	out := make([]string, 0, len(idx.TypeIndex))
	for t := range idx.TypeIndex {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// tokenize lowercases and splits on non-alphanumeric runes, matching the
// word-index contract ("lowercased alphanumeric token").
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
		} else if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
