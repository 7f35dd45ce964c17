package embedding

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpenAIClient struct {
	resp openai.EmbeddingResponse
	err  error
}

func (f *fakeOpenAIClient) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return f.resp, f.err
}

func TestOpenAIProviderMapsResponseByIndex(t *testing.T) {
	client := &fakeOpenAIClient{resp: openai.EmbeddingResponse{Data: []openai.Embedding{
		{Index: 1, Embedding: []float32{0, 1}},
		{Index: 0, Embedding: []float32{1, 0}},
	}}}
	p := NewOpenAIWithClient(client, openai.SmallEmbedding3, 2)

	vecs, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1}, vecs[1])
}

func TestOpenAIProviderErrorsOnShortResponse(t *testing.T) {
	client := &fakeOpenAIClient{resp: openai.EmbeddingResponse{Data: []openai.Embedding{
		{Index: 0, Embedding: []float32{1}},
	}}}
	p := NewOpenAIWithClient(client, openai.SmallEmbedding3, 1)

	_, err := p.Embed(context.Background(), []string{"first", "second"})
	assert.Error(t, err)
}

func TestOpenAIProviderEmptyBatchIsNoop(t *testing.T) {
	p := NewOpenAIWithClient(&fakeOpenAIClient{}, openai.SmallEmbedding3, 1)
	vecs, err := p.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
