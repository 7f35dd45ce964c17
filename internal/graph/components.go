package graph

import (
	"sort"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// Component is one connected component of the undirected projection.
type Component struct {
	Names []string
}

// ConnectedComponents flood-fills the undirected projection, returning
// components sorted by size descending (ties broken by the lexicographically
// smallest member), plus the largest component's size.
func ConnectedComponents(g *kgtypes.Graph) (components []Component, largest int) {
	adj := undirectedAdjacency(g)
	visited := make(map[string]bool, len(g.Entities))

	names := make([]string, 0, len(g.Entities))
	for name := range g.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, start := range names {
		if visited[start] {
			continue
		}
		var members []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, next := range sortedAdjacent(adj, cur) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(members)
		components = append(components, Component{Names: members})
	}

	sort.SliceStable(components, func(i, j int) bool {
		if len(components[i].Names) != len(components[j].Names) {
			return len(components[i].Names) > len(components[j].Names)
		}
		return components[i].Names[0] < components[j].Names[0]
	})
	for _, c := range components {
		if len(c.Names) > largest {
			largest = len(c.Names)
		}
	}
	return components, largest
}
