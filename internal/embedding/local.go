package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// LocalProvider is a deterministic, dependency-free embedding provider for
// offline use: it hashes the word tokens of each input into a fixed-dimension
// bag-of-hashes vector (the "hashing trick"), then L2-normalises. It is not
// semantically meaningful beyond lexical overlap, but it is stable,
// requires no network, and gives the hybrid scorer's semantic layer
// something to compare against when no real model is configured.
type LocalProvider struct {
	dims int
}

// NewLocal builds a hashing-trick provider at the given dimension.
func NewLocal(dims int) *LocalProvider {
	if dims <= 0 {
		dims = 128
	}
	return &LocalProvider{dims: dims}
}

func (p *LocalProvider) Dimensions() int { return p.dims }

func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.embedOne(text)
	}
	return out, nil
}

func (p *LocalProvider) embedOne(text string) []float32 {
	vec := make([]float64, p.dims)
	for _, token := range tokenizeForHash(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		idx := int(h.Sum32()) % p.dims
		if idx < 0 {
			idx += p.dims
		}
		vec[idx]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	result := make([]float32, p.dims)
	if norm == 0 {
		return result
	}
	for i, v := range vec {
		result[i] = float32(v / norm)
	}
	return result
}

func tokenizeForHash(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
