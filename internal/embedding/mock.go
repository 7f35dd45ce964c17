package embedding

import (
	"context"

	"github.com/kgraph/kgcore/internal/kgerr"
)

var errNoProvider = kgerr.New(kgerr.EmbeddingFailed, "no embedding provider configured")

// MockProvider returns caller-supplied canned vectors, for deterministic
// tests of components downstream of embedding (vectorstore, hybrid scorer)
// without exercising the hashing or network adapters.
type MockProvider struct {
	dims  int
	Vec   func(text string) []float32
	Err   error
	Calls []string
}

// NewMock builds a provider at dims that returns Vec(text) for each input,
// or a zero vector if Vec is nil.
func NewMock(dims int) *MockProvider {
	return &MockProvider{dims: dims}
}

func (p *MockProvider) Dimensions() int { return p.dims }

func (p *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		p.Calls = append(p.Calls, text)
		if p.Vec != nil {
			out[i] = p.Vec(text)
			continue
		}
		out[i] = make([]float32, p.dims)
	}
	return out, nil
}

// NoneProvider is the explicit "no embedding provider configured" adapter
// (§6 Configuration: embedding provider in {openai, local, none, mock}).
// Embed always fails with EmbeddingFailed so dispatch degrades gracefully
// (§4.F: "when embeddings are unavailable... the dispatcher... omits the
// semantic layer").
type NoneProvider struct{ dims int }

// NewNone builds a provider that reports dims but never produces vectors.
func NewNone(dims int) *NoneProvider { return &NoneProvider{dims: dims} }

func (p *NoneProvider) Dimensions() int { return p.dims }

func (p *NoneProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errNoProvider
}
