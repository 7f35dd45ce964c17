// Package embedding implements the pluggable embedding-provider contract
// (§6: "embed(batch of strings, dimensions) -> batch of fixed-length vectors
// | error"; respects a per-request timeout; providers may refuse batches
// above their token limits and the core must fall back to smaller
// batches"). The core only depends on the Provider interface; the concrete
// adapter is chosen by configuration (§6 Configuration: embedding provider
// in {openai, local, none, mock}).
package embedding

import (
	"context"
	"time"

	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/obslog"
)

// Provider turns a batch of strings into fixed-dimension dense vectors.
// Implementations must respect ctx cancellation/deadline and must not
// return partial batches: either every input gets a vector, or Embed
// returns an error.
type Provider interface {
	// Embed returns one vector per input string, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the fixed length of vectors this provider returns.
	Dimensions() int
}

// BatchLimiter is implemented by providers that refuse oversized batches;
// WithFallback uses it to split a batch into smaller ones before sending (§6).
type BatchLimiter interface {
	MaxBatchSize() int
}

var log = obslog.For("embedding")

// WithFallback wraps p so that a batch larger than the provider's
// MaxBatchSize is split up front into smaller batches and the sub-results
// are recombined in order. Errors are returned as they are; nothing is
// retried.
func WithFallback(p Provider) Provider {
	return &fallbackProvider{inner: p}
}

type fallbackProvider struct{ inner Provider }

func (f *fallbackProvider) Dimensions() int { return f.inner.Dimensions() }

func (f *fallbackProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	limit := 0
	if lim, ok := f.inner.(BatchLimiter); ok {
		limit = lim.MaxBatchSize()
	}
	if limit <= 0 || len(texts) <= limit {
		return f.inner.Embed(ctx, texts)
	}

	log.Info("splitting oversized batch", "size", len(texts), "limit", limit)
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += limit {
		end := start + limit
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := f.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// WithTimeout wraps p so every Embed call is bounded by per, regardless of
// the caller's own context deadline (§6 "respects a per-request timeout").
func WithTimeout(p Provider, per time.Duration) Provider {
	if per <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, per: per}
}

type timeoutProvider struct {
	inner Provider
	per   time.Duration
}

func (t *timeoutProvider) Dimensions() int { return t.inner.Dimensions() }

func (t *timeoutProvider) MaxBatchSize() int {
	if lim, ok := t.inner.(BatchLimiter); ok {
		return lim.MaxBatchSize()
	}
	return 0
}

func (t *timeoutProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.per)
	defer cancel()
	vecs, err := t.inner.Embed(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, kgerr.Wrap(kgerr.EmbeddingFailed, ctx.Err(), "embedding request exceeded %s", t.per)
		}
		return nil, kgerr.Wrap(kgerr.EmbeddingFailed, err, "embedding provider failed")
	}
	return vecs, nil
}
