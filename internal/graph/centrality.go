package graph

import (
	"sort"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// Scored pairs an entity name with a centrality score.
type Scored struct {
	Name  string
	Score float64
}

func topK(scores map[string]float64, k int) []Scored {
	out := make([]Scored, 0, len(scores))
	for name, score := range scores {
		out = append(out, Scored{Name: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// DegreeCentrality computes (in+out)/(n-1) per entity over the undirected
// projection (or one direction's raw degree when dir is DirIn/DirOut),
// returning the top-K.
func DegreeCentrality(g *kgtypes.Graph, dir Direction, k int) []Scored {
	n := len(g.Entities)
	scores := make(map[string]float64, n)
	if n <= 1 {
		for name := range g.Entities {
			scores[name] = 0
		}
		return topK(scores, k)
	}

	var adj map[string]map[string]struct{}
	switch dir {
	case DirOut:
		adj = directedOutAdjacency(g)
	case DirIn:
		adj = reverseAdjacency(directedOutAdjacency(g))
	default:
		adj = undirectedAdjacency(g)
	}
	for name := range g.Entities {
		scores[name] = float64(len(adj[name])) / float64(n-1)
	}
	return topK(scores, k)
}

// BetweennessOpts parameterises Brandes' algorithm.
type BetweennessOpts struct {
	Approximate bool
	SampleRate  float64 // default 0.2
	ChunkSize   int     // default 50; yield point for caller progress reporting
	Progress    func(done, total int)
}

const (
	DefaultSampleRate = 0.2
	MinSampleSources  = 10
	DefaultChunkSize  = 50
)

// BetweennessCentrality runs Brandes' algorithm over the undirected
// projection. With Approximate set, it samples ceil(SampleRate*n) source
// vertices (at least MinSampleSources, or all vertices if fewer exist) and
// scales the result by 1/SampleRate. Progress is invoked every ChunkSize
// processed source vertices.
func BetweennessCentrality(g *kgtypes.Graph, opts BetweennessOpts) map[string]float64 {
	adj := undirectedAdjacency(g)
	names := make([]string, 0, len(g.Entities))
	for name := range g.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	scores := make(map[string]float64, len(names))
	for _, name := range names {
		scores[name] = 0
	}
	if len(names) < 2 {
		return scores
	}

	sources := names
	scale := 1.0
	if opts.Approximate {
		rate := opts.SampleRate
		if rate <= 0 {
			rate = DefaultSampleRate
		}
		sampleSize := int(ceilF(rate * float64(len(names))))
		if sampleSize < MinSampleSources {
			sampleSize = MinSampleSources
		}
		if sampleSize > len(names) {
			sampleSize = len(names)
		}
		sources = names[:sampleSize]
		scale = 1.0 / rate
	}

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	for i, s := range sources {
		brandesSingleSource(adj, names, s, scores)
		if opts.Progress != nil && (i+1)%chunk == 0 {
			opts.Progress(i+1, len(sources))
		}
	}
	if opts.Progress != nil && len(sources)%chunk != 0 {
		opts.Progress(len(sources), len(sources))
	}

	if scale != 1.0 {
		for name := range scores {
			scores[name] *= scale
		}
	}
	// Undirected graphs double-count each pair's contribution (once per
	// traversal direction); halve per Brandes' standard undirected correction.
	for name := range scores {
		scores[name] /= 2
	}
	return scores
}

func ceilF(v float64) float64 {
	i := float64(int64(v))
	if v > i {
		return i + 1
	}
	return i
}

// brandesSingleSource accumulates dependency scores for one BFS from s into
// scores, following Brandes (2001).
func brandesSingleSource(adj map[string]map[string]struct{}, names []string, s string, scores map[string]float64) {
	stack := make([]string, 0, len(names))
	pred := make(map[string][]string, len(names))
	sigma := make(map[string]float64, len(names))
	dist := make(map[string]int, len(names))
	for _, v := range names {
		sigma[v] = 0
		dist[v] = -1
	}
	sigma[s] = 1
	dist[s] = 0

	queue := []string{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)
		for _, w := range sortedAdjacent(adj, v) {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	delta := make(map[string]float64, len(names))
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			scores[w] += delta[w]
		}
	}
}

// PageRankOpts parameterises the power-iteration PageRank.
type PageRankOpts struct {
	Damping       float64 // default 0.85
	Tolerance     float64 // default 1e-6
	MaxIterations int     // default 100
}

const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// PageRank runs power iteration over the directed graph, distributing
// dangling (zero-out-degree) nodes' mass uniformly across every node each
// iteration, converging when the L1 delta drops below Tolerance or
// MaxIterations is reached.
func PageRank(g *kgtypes.Graph, opts PageRankOpts) map[string]float64 {
	damping := opts.Damping
	if damping <= 0 {
		damping = DefaultDamping
	}
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	names := make([]string, 0, len(g.Entities))
	for name := range g.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	n := len(names)
	if n == 0 {
		return map[string]float64{}
	}

	out := directedOutAdjacency(g)
	rank := make(map[string]float64, n)
	for _, name := range names {
		rank[name] = 1.0 / float64(n)
	}

	for iter := 0; iter < maxIter; iter++ {
		var danglingMass float64
		for _, name := range names {
			if len(out[name]) == 0 {
				danglingMass += rank[name]
			}
		}
		next := make(map[string]float64, n)
		base := (1 - damping) / float64(n)
		for _, name := range names {
			next[name] = base + damping*danglingMass/float64(n)
		}
		inAdj := reverseAdjacency(out)
		for _, name := range names {
			for _, src := range sortedAdjacent(inAdj, name) {
				outDeg := len(out[src])
				if outDeg == 0 {
					continue
				}
				next[name] += damping * rank[src] / float64(outDeg)
			}
		}

		var delta float64
		for _, name := range names {
			diff := next[name] - rank[name]
			if diff < 0 {
				diff = -diff
			}
			delta += diff
		}
		rank = next
		if delta < tolerance {
			break
		}
	}
	return rank
}
