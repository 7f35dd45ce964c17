// Package fuzzy implements bounded Levenshtein matching with early
// termination (§4.G). Above a fixed candidate-count threshold
// (OffloadCandidateThreshold), and when the caller passes a pool size above
// 1, the per-candidate distance computations are fanned out across a
// bounded worker pool via golang.org/x/sync/errgroup; otherwise they run in
// the caller's goroutine.
package fuzzy

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// DefaultThreshold is the default similarity threshold (§4.G: default 0.7).
const DefaultThreshold = 0.7

// OffloadCandidateThreshold is the candidate-count cutoff above which
// distance computation is offloaded to the worker pool (§4.G: "e.g. >500").
const OffloadCandidateThreshold = 500

// CancelCheckInterval is how often (in candidates processed) a cancellation
// signal is checked during parallel offload.
const CancelCheckInterval = 100

// Distance computes Levenshtein edit distance between a and b, terminating
// early once the running minimum possible distance exceeds maxDist — the
// caller passes maxDist = ceil((1-threshold) * max(len(a), len(b))).
func Distance(a, b string, maxDist int) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > maxDist {
		return maxDist + 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
			if m < rowMin {
				rowMin = m
			}
		}
		if rowMin > maxDist {
			return maxDist + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity converts an edit distance to a [0,1] similarity score relative
// to the longer string's length.
func Similarity(a, b string, distance int) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(distance)/float64(maxLen)
}

// maxDistFor returns the early-termination bound for a given threshold and
// pair of string lengths: ceil((1-threshold) * max(len(a), len(b))).
func maxDistFor(threshold float64, lenA, lenB int) int {
	longer := lenA
	if lenB > longer {
		longer = lenB
	}
	bound := (1 - threshold) * float64(longer)
	i := int(bound)
	if float64(i) < bound {
		i++
	}
	return i
}

// Match is one candidate that met the threshold.
type Match struct {
	Candidate string
	Distance  int
	Score     float64
}

// FindMatches compares query against every candidate, returning those whose
// similarity is >= threshold. Threshold 1.0 matches only exact candidates;
// threshold 0.0 matches everything (§8 property 12). Above
// OffloadCandidateThreshold candidates, with poolSize above 1, work is
// split across pool workers via errgroup; ctx is checked every CancelCheckInterval candidates.
func FindMatches(ctx context.Context, query string, candidates []string, threshold float64, poolSize int) ([]Match, error) {
	if threshold < 0 || threshold > 1 {
		return nil, kgerr.New(kgerr.ValidationFailure, "fuzzy threshold must be in [0,1], got %v", threshold)
	}
	ql := strings.ToLower(query)

	if len(candidates) <= OffloadCandidateThreshold || poolSize <= 1 {
		return findMatchesSequential(ctx, ql, candidates, threshold)
	}
	return findMatchesParallel(ctx, ql, candidates, threshold, poolSize)
}

func findMatchesSequential(ctx context.Context, query string, candidates []string, threshold float64) ([]Match, error) {
	var out []Match
	for i, c := range candidates {
		if i%CancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, kgerr.Wrap(kgerr.OperationCancelled, err, "fuzzy match cancelled")
			}
		}
		if m, ok := matchOne(query, c, threshold); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func findMatchesParallel(ctx context.Context, query string, candidates []string, threshold float64, poolSize int) ([]Match, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize)

	results := make([]*Match, len(candidates))
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if i%CancelCheckInterval == 0 {
				if err := gctx.Err(); err != nil {
					return err
				}
			}
			if m, ok := matchOne(query, c, threshold); ok {
				results[i] = &m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, kgerr.Wrap(kgerr.OperationCancelled, err, "fuzzy match cancelled")
	}

	var out []Match
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func matchOne(query, candidate string, threshold float64) (Match, bool) {
	lc := strings.ToLower(candidate)
	maxDist := maxDistFor(threshold, len(query), len(lc))
	dist := Distance(query, lc, maxDist)
	if dist > maxDist {
		return Match{}, false
	}
	score := Similarity(query, lc, dist)
	if score < threshold {
		return Match{}, false
	}
	return Match{Candidate: candidate, Distance: dist, Score: score}, true
}
