package graph

import (
	"context"
	"sort"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// AllPathsCancelCheckInterval is how often (in visited-path steps) the all-
// paths search polls ctx for cancellation (§4.N: "every K iterations,
// K≈100").
const AllPathsCancelCheckInterval = 100

// Path is one route between two entities.
type Path struct {
	Names     []string
	Length    int
	Relations []*kgtypes.Relation
}

// ShortestPath runs BFS on the (optionally directed) projection from a, and
// reconstructs the path to b if reachable.
func ShortestPath(g *kgtypes.Graph, a, b string, opts TraverseOpts) (Path, bool) {
	if _, ok := g.Entities[a]; !ok {
		return Path{}, false
	}
	if _, ok := g.Entities[b]; !ok {
		return Path{}, false
	}
	if a == b {
		return Path{Names: []string{a}, Length: 0}, true
	}

	res := BFS(g, a, TraverseOpts{Direction: opts.Direction})
	if _, reached := res.Depth[b]; !reached {
		return Path{}, false
	}

	var names []string
	cur := b
	for cur != a {
		names = append([]string{cur}, names...)
		cur = res.Parent[cur]
	}
	names = append([]string{a}, names...)

	return Path{Names: names, Length: len(names) - 1, Relations: relationsAlong(g, names)}, true
}

func relationsAlong(g *kgtypes.Graph, names []string) []*kgtypes.Relation {
	var out []*kgtypes.Relation
	for i := 0; i+1 < len(names); i++ {
		out = append(out, relationBetween(g, names[i], names[i+1]))
	}
	return out
}

func relationBetween(g *kgtypes.Graph, a, b string) *kgtypes.Relation {
	for _, r := range g.Relations {
		if (r.From == a && r.To == b) || (r.From == b && r.To == a) {
			return r
		}
	}
	return nil
}

// frame is one level of the explicit DFS stack: the node entered at this
// level and the not-yet-tried neighbours remaining to explore from it.
type frame struct {
	name      string
	remaining []string
}

// AllPaths enumerates every simple path from a to b up to maxDepth hops, via
// an iterative (explicit-stack) DFS with a visited set scoped to the current
// path. ctx is polled for cancellation every AllPathsCancelCheckInterval
// steps.
func AllPaths(ctx context.Context, g *kgtypes.Graph, a, b string, maxDepth int, opts TraverseOpts) ([]Path, error) {
	if _, ok := g.Entities[a]; !ok {
		return nil, nil
	}
	if _, ok := g.Entities[b]; !ok {
		return nil, nil
	}
	adj := adjacencyFor(g, opts.Direction)

	var results []Path
	onPath := map[string]bool{a: true}
	path := []string{a}
	stack := []*frame{{name: a, remaining: sortedAdjacent(adj, a)}}
	steps := 0

	for len(stack) > 0 {
		steps++
		if steps%AllPathsCancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		top := stack[len(stack)-1]
		if len(top.remaining) == 0 {
			stack = stack[:len(stack)-1]
			if len(path) > 1 {
				onPath[path[len(path)-1]] = false
			}
			path = path[:len(path)-1]
			continue
		}

		next := top.remaining[0]
		top.remaining = top.remaining[1:]
		if onPath[next] {
			continue
		}

		path = append(path, next)
		onPath[next] = true

		if next == b {
			names := append([]string(nil), path...)
			results = append(results, Path{Names: names, Length: len(names) - 1, Relations: relationsAlong(g, names)})
			onPath[next] = false
			path = path[:len(path)-1]
			continue
		}

		if maxDepth > 0 && len(path)-1 >= maxDepth {
			onPath[next] = false
			path = path[:len(path)-1]
			continue
		}
		stack = append(stack, &frame{name: next, remaining: sortedAdjacent(adj, next)})
	}

	sort.Slice(results, func(i, j int) bool {
		if len(results[i].Names) != len(results[j].Names) {
			return len(results[i].Names) < len(results[j].Names)
		}
		return pathLess(results[i].Names, results[j].Names)
	})
	return results, nil
}

func pathLess(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
