// Package vectorstore maps entity names to fixed-dimension dense embeddings
// and answers cosine-similarity top-k queries (§4.F). It is optional: when
// no embeddings have been upserted for an entity, the dispatcher degrades
// gracefully and the hybrid scorer (§4.J) redistributes weights away from
// the semantic layer.
package vectorstore

import (
	"math"
	"sort"
	"sync"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// Store holds one dense vector per entity name, all of a fixed dimension.
type Store struct {
	mu   sync.RWMutex
	dim  int
	vecs map[string][]float64
}

// New returns an empty store fixed at the given dimension.
func New(dim int) *Store {
	return &Store{dim: dim, vecs: make(map[string][]float64)}
}

// Dim reports the store's fixed embedding dimension.
func (s *Store) Dim() int { return s.dim }

// Upsert stores or replaces name's embedding. The vector must match the
// store's dimension.
func (s *Store) Upsert(name string, vec []float64) error {
	if len(vec) != s.dim {
		return kgerr.New(kgerr.ValidationFailure, "embedding for %q has dimension %d, store expects %d", name, len(vec), s.dim)
	}
	cp := append([]float64(nil), vec...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vecs[name] = cp
	return nil
}

// Delete removes name's embedding, if any.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vecs, name)
}

// Has reports whether name has a stored embedding.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vecs[name]
	return ok
}

// Scored is one top-k result.
type Scored struct {
	Name  string
	Score float64
}

// TopK returns the k entities with the highest cosine similarity to query,
// optionally filtered by a minimum score.
func (s *Store) TopK(query []float64, k int, minScore float64) ([]Scored, error) {
	if len(query) != s.dim {
		return nil, kgerr.New(kgerr.ValidationFailure, "query embedding has dimension %d, store expects %d", len(query), s.dim)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	qNorm := norm(query)
	if qNorm == 0 {
		return nil, nil
	}
	out := make([]Scored, 0, len(s.vecs))
	for name, vec := range s.vecs {
		score := cosine(query, vec, qNorm)
		if score >= minScore {
			out = append(out, Scored{Name: name, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float64, aNorm float64) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (aNorm * bNorm)
}
