package graph

import (
	"sort"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// TraverseOpts bounds BFS/DFS.
type TraverseOpts struct {
	Direction Direction
	MaxDepth  int // 0 means unbounded
}

// TraverseResult is the outcome of one BFS or DFS run.
type TraverseResult struct {
	Visited []string          // visit order
	Depth   map[string]int    // name -> depth from start
	Parent  map[string]string // name -> the node it was discovered from
}

func adjacencyFor(g *kgtypes.Graph, dir Direction) map[string]map[string]struct{} {
	switch dir {
	case DirOut:
		return directedOutAdjacency(g)
	case DirIn:
		return reverseAdjacency(directedOutAdjacency(g))
	default:
		return undirectedAdjacency(g)
	}
}

func reverseAdjacency(adj map[string]map[string]struct{}) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(adj))
	for name := range adj {
		out[name] = make(map[string]struct{})
	}
	for from, tos := range adj {
		for to := range tos {
			if out[to] == nil {
				out[to] = make(map[string]struct{})
			}
			out[to][from] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// BFS visits start's component (within MaxDepth if set), breadth-first,
// visiting each node once. Returns an empty result for a nonexistent start.
func BFS(g *kgtypes.Graph, start string, opts TraverseOpts) TraverseResult {
	res := TraverseResult{Depth: map[string]int{}, Parent: map[string]string{}}
	if _, ok := g.Entities[start]; !ok {
		return res
	}
	adj := adjacencyFor(g, opts.Direction)

	visited := map[string]bool{start: true}
	queue := []string{start}
	res.Visited = append(res.Visited, start)
	res.Depth[start] = 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := res.Depth[cur]
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			continue
		}
		for _, next := range sortedAdjacent(adj, cur) {
			if visited[next] {
				continue
			}
			visited[next] = true
			res.Depth[next] = depth + 1
			res.Parent[next] = cur
			res.Visited = append(res.Visited, next)
			queue = append(queue, next)
		}
	}
	return res
}

func sortedAdjacent(adj map[string]map[string]struct{}, name string) []string {
	names := sortedKeys(adj[name])
	sort.Strings(names)
	return names
}

// DFS visits start's component depth-first using an explicit stack (§4.N:
// "DFS is iterative"), respecting MaxDepth and visiting each node once.
func DFS(g *kgtypes.Graph, start string, opts TraverseOpts) TraverseResult {
	res := TraverseResult{Depth: map[string]int{}, Parent: map[string]string{}}
	if _, ok := g.Entities[start]; !ok {
		return res
	}
	adj := adjacencyFor(g, opts.Direction)

	type frame struct {
		name  string
		depth int
	}
	visited := map[string]bool{}
	stack := []frame{{start, 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.name] {
			continue
		}
		visited[f.name] = true
		res.Visited = append(res.Visited, f.name)
		res.Depth[f.name] = f.depth

		if opts.MaxDepth > 0 && f.depth >= opts.MaxDepth {
			continue
		}
		neighbours := sortedAdjacent(adj, f.name)
		for i := len(neighbours) - 1; i >= 0; i-- {
			next := neighbours[i]
			if visited[next] {
				continue
			}
			if _, ok := res.Parent[next]; !ok {
				res.Parent[next] = f.name
			}
			stack = append(stack, frame{next, f.depth + 1})
		}
	}
	return res
}
