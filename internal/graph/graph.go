// Package graph implements traversal and centrality algorithms over the
// cached view and its relation index (§4.N): neighbour listing, BFS/DFS,
// shortest/all paths, connected components, and degree/betweenness/PageRank
// centrality.
package graph

import (
	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// Direction constrains which incident relations Neighbours considers.
type Direction string

const (
	DirOut  Direction = "out"
	DirIn   Direction = "in"
	DirBoth Direction = "both"
)

// NeighbourOpts filters Neighbours.
type NeighbourOpts struct {
	Direction     Direction
	RelationTypes []string // allow-list; empty means all
	EntityTypes   []string // allow-list on the neighbour's type; empty means all
}

// Neighbour is one (neighbour entity, connecting relation) pair.
type Neighbour struct {
	Entity   *kgtypes.Entity
	Relation *kgtypes.Relation
}

func allowSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// Neighbours returns every (neighbour, relation) pair incident to name,
// filtered by direction and the relation/entity-type allow-lists.
// Self-loops are skipped.
func Neighbours(g *kgtypes.Graph, idx *index.Indexes, name string, opts NeighbourOpts) []Neighbour {
	dir := opts.Direction
	if dir == "" {
		dir = DirBoth
	}
	relTypes := allowSet(opts.RelationTypes)
	entTypes := allowSet(opts.EntityTypes)

	var keys []kgtypes.RelationKey
	switch dir {
	case DirOut:
		keys = idx.Outgoing[name]
	case DirIn:
		keys = idx.Incoming[name]
	default:
		keys = idx.AllFor(name)
	}

	seen := make(map[kgtypes.RelationKey]struct{}, len(keys))
	var out []Neighbour
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		r := g.Relations[key]
		if r == nil {
			continue
		}
		other := r.To
		if r.To == name {
			other = r.From
		}
		if other == name {
			continue // self-loop
		}
		if relTypes != nil {
			if _, ok := relTypes[r.RelationType]; !ok {
				continue
			}
		}
		e := g.Entities[other]
		if e == nil {
			continue
		}
		if entTypes != nil {
			if _, ok := entTypes[e.EntityType]; !ok {
				continue
			}
		}
		out = append(out, Neighbour{Entity: e, Relation: r})
	}
	return out
}

// undirectedAdjacency builds a name -> set-of-neighbour-names map ignoring
// relation direction, used by components/shortest-path/all-paths when opts
// request the undirected projection.
func undirectedAdjacency(g *kgtypes.Graph) map[string]map[string]struct{} {
	adj := make(map[string]map[string]struct{}, len(g.Entities))
	for name := range g.Entities {
		adj[name] = make(map[string]struct{})
	}
	for _, r := range g.Relations {
		if r.From == r.To {
			continue
		}
		if adj[r.From] == nil {
			adj[r.From] = make(map[string]struct{})
		}
		if adj[r.To] == nil {
			adj[r.To] = make(map[string]struct{})
		}
		adj[r.From][r.To] = struct{}{}
		adj[r.To][r.From] = struct{}{}
	}
	return adj
}

// directedOutAdjacency builds name -> set-of-out-neighbour-names.
func directedOutAdjacency(g *kgtypes.Graph) map[string]map[string]struct{} {
	adj := make(map[string]map[string]struct{}, len(g.Entities))
	for name := range g.Entities {
		adj[name] = make(map[string]struct{})
	}
	for _, r := range g.Relations {
		if r.From == r.To {
			continue
		}
		if adj[r.From] == nil {
			adj[r.From] = make(map[string]struct{})
		}
		adj[r.From][r.To] = struct{}{}
	}
	return adj
}
