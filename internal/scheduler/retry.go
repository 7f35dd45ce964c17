package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOpts parameterises RetryWithBackoff (§4.Q: "exponential base·2^attempt,
// capped at maxDelay, with optional on-retry callback").
type RetryOpts struct {
	Base       time.Duration
	MaxDelay   time.Duration
	MaxRetries int
	OnRetry    func(attempt int, err error, delay time.Duration)
}

const (
	DefaultRetryBase     = 100 * time.Millisecond
	DefaultRetryMaxDelay = 30 * time.Second
	DefaultMaxRetries    = 5
)

// RetryWithBackoff calls fn until it succeeds or MaxRetries is exhausted,
// waiting base*2^attempt (capped at MaxDelay) between attempts. The delay
// schedule is built on cenkalti/backoff's exponential backoff with jitter
// disabled, so it matches the spec's deterministic doubling exactly.
func RetryWithBackoff(ctx context.Context, fn func() error, opts RetryOpts) error {
	base := opts.Base
	if base <= 0 {
		base = DefaultRetryBase
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultRetryMaxDelay
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0 // bounded by maxRetries, not elapsed time

	bounded := backoff.WithMaxRetries(bo, uint64(maxRetries))
	withCtx := backoff.WithContext(bounded, ctx)

	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err, delay)
		}
	}
	return backoff.RetryNotify(fn, withCtx, notify)
}
