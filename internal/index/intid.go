package index

import (
	"sort"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// IntIDIndex maintains a bijection entity-name<->integer ID and per-term
// posting lists as sorted integer arrays, for large corpora where a
// name-keyed postings list wastes memory (§4.D). It supports merge-
// intersection and union in O(n+m), and can be Finalize()d (sorted, ready
// for fast queries) or left unfinalized for incremental edits.
type IntIDIndex struct {
	nameToID map[string]int
	idToName map[int]string
	nextID   int

	postings map[string][]int // term -> ids, may be unsorted until Finalize
	final    bool
}

// BuildIntID constructs a fresh integer-ID index from a view.
func BuildIntID(g *kgtypes.Graph) *IntIDIndex {
	ii := &IntIDIndex{
		nameToID: make(map[string]int),
		idToName: make(map[int]string),
		postings: make(map[string][]int),
	}
	names := make([]string, 0, len(g.Entities))
	for name := range g.Entities {
		names = append(names, name)
	}
	sort.Strings(names) // stable ID assignment across rebuilds of the same view
	for _, name := range names {
		ii.assignID(name)
	}
	for _, name := range names {
		ii.indexTerms(g.Entities[name])
	}
	ii.Finalize()
	return ii
}

func (ii *IntIDIndex) assignID(name string) int {
	if id, ok := ii.nameToID[name]; ok {
		return id
	}
	id := ii.nextID
	ii.nextID++
	ii.nameToID[name] = id
	ii.idToName[id] = name
	return id
}

func (ii *IntIDIndex) indexTerms(e *kgtypes.Entity) {
	id := ii.nameToID[e.Name]
	for term := range collectWords(e) {
		ii.postings[term] = append(ii.postings[term], id)
	}
}

// Upsert adds or refreshes one entity's postings. Marks the index
// unfinalized since new postings may be unsorted.
func (ii *IntIDIndex) Upsert(e *kgtypes.Entity) {
	ii.Remove(e.Name)
	ii.assignID(e.Name)
	ii.indexTerms(e)
	ii.final = false
}

// Remove deletes an entity's ID and postings entirely.
func (ii *IntIDIndex) Remove(name string) {
	id, ok := ii.nameToID[name]
	if !ok {
		return
	}
	delete(ii.nameToID, name)
	delete(ii.idToName, id)
	for term, ids := range ii.postings {
		filtered := ids[:0]
		for _, x := range ids {
			if x != id {
				filtered = append(filtered, x)
			}
		}
		if len(filtered) == 0 {
			delete(ii.postings, term)
		} else {
			ii.postings[term] = filtered
		}
	}
	ii.final = false
}

// Finalize sorts every posting list, enabling O(n+m) merge operations.
func (ii *IntIDIndex) Finalize() {
	for term, ids := range ii.postings {
		sort.Ints(ids)
		ii.postings[term] = ids
	}
	ii.final = true
}

// Finalized reports whether postings are currently sorted.
func (ii *IntIDIndex) Finalized() bool { return ii.final }

// NameOf and IDOf translate between the integer and name spaces.
func (ii *IntIDIndex) NameOf(id int) (string, bool) {
	name, ok := ii.idToName[id]
	return name, ok
}

func (ii *IntIDIndex) IDOf(name string) (int, bool) {
	id, ok := ii.nameToID[name]
	return id, ok
}

// Posting returns the (sorted, if finalized) posting list for term.
func (ii *IntIDIndex) Posting(term string) []int {
	return ii.postings[term]
}

// Intersect merges two sorted posting lists in O(n+m).
func Intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Union merges two sorted posting lists in O(n+m), deduplicating.
func Union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
