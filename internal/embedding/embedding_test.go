package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderIsDeterministic(t *testing.T) {
	p := NewLocal(32)
	v1, err := p.Embed(context.Background(), []string{"graph database"})
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), []string{"graph database"})
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1[0], 32)
}

func TestLocalProviderDiffersForDifferentText(t *testing.T) {
	p := NewLocal(64)
	vecs, err := p.Embed(context.Background(), []string{"alpha", "omega"})
	require.NoError(t, err)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestNoneProviderAlwaysFails(t *testing.T) {
	p := NewNone(16)
	_, err := p.Embed(context.Background(), []string{"anything"})
	assert.Error(t, err)
}

func TestMockProviderReturnsConfiguredVectors(t *testing.T) {
	p := NewMock(2)
	p.Vec = func(text string) []float32 {
		if text == "a" {
			return []float32{1, 0}
		}
		return []float32{0, 1}
	}
	vecs, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1}, vecs[1])
	assert.Equal(t, []string{"a", "b"}, p.Calls)
}

type countingProvider struct {
	dims     int
	batches  [][]string
	maxBatch int
}

func (c *countingProvider) Dimensions() int  { return c.dims }
func (c *countingProvider) MaxBatchSize() int { return c.maxBatch }
func (c *countingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, c.dims)
	}
	return out, nil
}

func TestWithFallbackSplitsOversizedBatches(t *testing.T) {
	inner := &countingProvider{dims: 4, maxBatch: 2}
	p := WithFallback(inner)
	vecs, err := p.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, vecs, 5)
	assert.Len(t, inner.batches, 3)
	assert.Equal(t, []string{"a", "b"}, inner.batches[0])
	assert.Equal(t, []string{"e"}, inner.batches[2])
}

type slowProvider struct{ dims int }

func (s *slowProvider) Dimensions() int { return s.dims }
func (s *slowProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	select {
	case <-time.After(50 * time.Millisecond):
		return make([][]float32, len(texts)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestWithTimeoutFailsSlowProvider(t *testing.T) {
	p := WithTimeout(&slowProvider{dims: 4}, 5*time.Millisecond)
	_, err := p.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(Config{Kind: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestBuildRejectsOpenAIWithoutKey(t *testing.T) {
	_, err := Build(Config{Kind: KindOpenAI})
	assert.Error(t, err)
}

func TestBuildDefaultsToNone(t *testing.T) {
	p, err := Build(Config{})
	require.NoError(t, err)
	_, err = p.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestBuildLocalProducesVectorsOfConfiguredDimension(t *testing.T) {
	p, err := Build(Config{Kind: KindLocal, Dimensions: 48})
	require.NoError(t, err)
	vecs, err := p.Embed(context.Background(), []string{"entity name"})
	require.NoError(t, err)
	assert.Len(t, vecs[0], 48)
}
