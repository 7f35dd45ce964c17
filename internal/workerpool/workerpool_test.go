package workerpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsFuncAndResolvesFuture(t *testing.T) {
	p := New(1, 2)
	future, err := p.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return 42, nil
	}, 0)
	require.NoError(t, err)

	val, ferr, cancelled := future.Wait()
	assert.NoError(t, ferr)
	assert.False(t, cancelled)
	assert.Equal(t, 42, val)
}

func TestSubmitRejectsNonFunction(t *testing.T) {
	p := New(1, 2)
	_, err := p.Submit(context.Background(), "not a function", 0)
	assert.Error(t, err)
}

func TestSubmitTimeoutMarksCancelled(t *testing.T) {
	p := New(1, 2)
	future, err := p.Submit(context.Background(), func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, errors.New("should not surface")
	}, 10*time.Millisecond)
	require.NoError(t, err)

	_, ferr, cancelled := future.Wait()
	assert.Error(t, ferr)
	assert.True(t, cancelled)
}

func TestSubmitAllBoundsConcurrencyAndPreservesOrder(t *testing.T) {
	p := New(1, 2)
	tasks := make([]func(context.Context) (any, error), 5)
	for i := 0; i < 5; i++ {
		i := i
		tasks[i] = func(ctx context.Context) (any, error) { return i * i, nil }
	}
	results, err := p.SubmitAll(context.Background(), tasks)
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
}
