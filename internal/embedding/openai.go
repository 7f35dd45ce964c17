package embedding

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// openAITokenBatchLimit is a conservative request-size cap; OpenAI's
// embeddings endpoint rejects batches beyond its own per-model token
// budget, and the fallback wrapper needs a count to split on rather than
// the provider finding out mid-request.
const openAITokenBatchLimit = 2048

// OpenAIClient is the subset of *openai.Client this adapter calls, so
// tests can substitute a fake without hitting the network.
type OpenAIClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIProvider adapts OpenAI's embeddings endpoint to Provider via
// github.com/sashabaranov/go-openai.
type OpenAIProvider struct {
	client OpenAIClient
	model  openai.EmbeddingModel
	dims   int
}

// NewOpenAI builds a provider backed by an OpenAI API key. dims must match
// the chosen model's native output dimension (the API does not truncate).
func NewOpenAI(apiKey string, model openai.EmbeddingModel, dims int) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model, dims: dims}
}

// NewOpenAIWithClient builds a provider around an already-constructed
// client, for callers wiring custom base URLs/proxies, or tests.
func NewOpenAIWithClient(client OpenAIClient, model openai.EmbeddingModel, dims int) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model, dims: dims}
}

func (p *OpenAIProvider) Dimensions() int   { return p.dims }
func (p *OpenAIProvider) MaxBatchSize() int { return openAITokenBatchLimit }

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, kgerr.Wrap(kgerr.EmbeddingFailed, err, "openai embeddings request failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, kgerr.New(kgerr.EmbeddingFailed, "openai returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, kgerr.New(kgerr.EmbeddingFailed, "openai response index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
