package scheduler

import (
	"context"
	"time"
)

// Progress reports how far a batch run has gotten.
type Progress struct {
	Processed int
	Total     int
}

// BatchOpts parameterises ProcessBatches.
type BatchOpts struct {
	BatchSize     int
	ItemTimeout   time.Duration
	ProgressEvery time.Duration // minimum interval between progress calls
	OnProgress    func(Progress)
}

const DefaultBatchSize = 100

// ItemFunc processes one item, returning an error that does not stop the
// batch (per-item failures are collected, not fatal to the run).
type ItemFunc func(ctx context.Context, item any) error

// ProcessBatches splits items into chunks of BatchSize and runs fn over each
// item in order, honouring ItemTimeout per item and throttling progress
// callbacks to at most one per ProgressEvery. Returns the per-item errors,
// indexed the same as items (nil where an item succeeded).
func ProcessBatches(ctx context.Context, items []any, fn ItemFunc, opts BatchOpts) []error {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	errs := make([]error, len(items))
	lastReport := time.Time{}

	report := func(processed int) {
		if opts.OnProgress == nil {
			return
		}
		now := time.Now()
		if opts.ProgressEvery > 0 && !lastReport.IsZero() && now.Sub(lastReport) < opts.ProgressEvery {
			return
		}
		lastReport = now
		opts.OnProgress(Progress{Processed: processed, Total: len(items)})
	}

	processed := 0
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			itemCtx := ctx
			var cancel context.CancelFunc
			if opts.ItemTimeout > 0 {
				itemCtx, cancel = context.WithTimeout(ctx, opts.ItemTimeout)
			}
			errs[i] = fn(itemCtx, items[i])
			if cancel != nil {
				cancel()
			}
			processed++
		}
		report(processed)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(Progress{Processed: processed, Total: len(items)})
	}
	return errs
}
