package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsInPriorityOrder(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	var order []string
	var mu orderLock
	block := make(chan struct{})

	// First task occupies the single worker so the rest queue up.
	first, err := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		<-block
		return nil, nil
	}), Normal, 0)
	require.NoError(t, err)

	low, _ := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		mu.append(&order, "low")
		return nil, nil
	}), Low, 0)
	critical, _ := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		mu.append(&order, "critical")
		return nil, nil
	}), Critical, 0)

	time.Sleep(20 * time.Millisecond) // let both queue up behind `first`
	close(block)
	first.Result()
	low.Result()
	critical.Result()

	require.Len(t, order, 2)
	assert.Equal(t, "critical", order[0])
	assert.Equal(t, "low", order[1])
}

type orderLock struct{ m sync.Mutex }

func (o *orderLock) append(order *[]string, v string) {
	o.m.Lock()
	defer o.m.Unlock()
	*order = append(*order, v)
}

func TestTaskTimeoutReplacesResultWithError(t *testing.T) {
	q := NewQueue(2)
	defer q.Close()

	task, err := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return "too-late", nil
	}), Normal, 20*time.Millisecond)
	require.NoError(t, err)

	result := task.Result()
	assert.Error(t, result.Err)
	assert.Equal(t, TaskTimedOut, task.State())
}

func TestCancelOnlyAffectsPendingTask(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	block := make(chan struct{})
	running, _ := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		<-block
		return nil, nil
	}), Normal, 0)
	time.Sleep(10 * time.Millisecond)

	pending, _ := q.Submit(TaskFunc(func(ctx context.Context) (any, error) {
		return nil, nil
	}), Normal, 0)

	ok := pending.Cancel()
	assert.True(t, ok)
	assert.Equal(t, TaskCancelled, pending.State())

	close(block)
	running.Result()
}

func TestSubmitRejectsNonFunction(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()
	_, err := q.Submit("not a function", Normal, 0)
	assert.Error(t, err)
}

func TestRetryWithBackoffStopsOnSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, RetryOpts{Base: time.Millisecond, MaxDelay: 10 * time.Millisecond, MaxRetries: 5})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	}, RetryOpts{Base: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxRetries: 2})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
}

func TestRateLimiterAllowThrottles(t *testing.T) {
	rl := NewRateLimiter(1000) // 1 per ms, generous for a fast test
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestProcessBatchesCollectsPerItemErrors(t *testing.T) {
	items := []any{1, 2, 3, 4}
	errs := ProcessBatches(context.Background(), items, func(ctx context.Context, item any) error {
		if item.(int) == 3 {
			return errors.New("boom")
		}
		return nil
	}, BatchOpts{BatchSize: 2})

	require.Len(t, errs, 4)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[2])
}

func TestDebounceCollapsesBurstsIntoOneCall(t *testing.T) {
	calls := 0
	debounced := Debounce(func() { calls++ }, 20*time.Millisecond)
	debounced()
	debounced()
	debounced()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, calls)
}

func TestThrottleDropsCallsWithinInterval(t *testing.T) {
	calls := 0
	throttled := Throttle(func() { calls++ }, 30*time.Millisecond)
	throttled()
	throttled()
	assert.Equal(t, 1, calls)
}
