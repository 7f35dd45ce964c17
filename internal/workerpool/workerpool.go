// Package workerpool implements the process-wide worker pool contract
// (§6: "submit(task, priority, timeout) -> future<result | error |
// cancelled>"), bounded by a weighted semaphore and fanned out with
// errgroup, mirroring the fuzzy matcher's offload pattern at process scope.
// Submit takes no priority argument: waiting tasks acquire slots in the
// order they called Submit.
package workerpool

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Future is the result of one submitted task, ready once Done is closed.
type Future struct {
	Done chan struct{}
	mu   sync.Mutex

	value     any
	err       error
	cancelled bool
}

// Wait blocks until the task finishes and returns its outcome.
func (f *Future) Wait() (any, error, bool) {
	<-f.Done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err, f.cancelled
}

func (f *Future) resolve(value any, err error, cancelled bool) {
	f.mu.Lock()
	f.value, f.err, f.cancelled = value, err, cancelled
	f.mu.Unlock()
	close(f.Done)
}

// Pool is a bounded worker pool; a single process-wide instance is expected
// (see Default), but additional instances may be built for isolated tests.
type Pool struct {
	sem *semaphore.Weighted
	min int
	max int
}

// New builds a pool allowing up to maxWorkers concurrent tasks. min is
// informational (reported via Stats); the semaphore itself only bounds the
// max.
func New(min, max int) *Pool {
	if max <= 0 {
		max = 1
	}
	if min < 0 {
		min = 0
	}
	return &Pool{sem: semaphore.NewWeighted(int64(max)), min: min, max: max}
}

// Stats reports the pool's configured bounds.
type Stats struct {
	Min int
	Max int
}

func (p *Pool) Stats() Stats { return Stats{Min: p.min, Max: p.max} }

// Submit validates task is a real callable (never a string or other
// data masquerading as code — §6 worker pool contract), acquires a slot
// (blocking while the pool is full), and runs it with an optional timeout,
// returning a Future as soon as the slot is acquired.
func (p *Pool) Submit(ctx context.Context, task any, timeout time.Duration) (*Future, error) {
	fn, err := asTaskFunc(task)
	if err != nil {
		return nil, err
	}

	future := &Future{Done: make(chan struct{})}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		future.resolve(nil, err, true)
		return future, nil
	}

	go func() {
		defer p.sem.Release(1)

		runCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resultCh := make(chan struct {
			val any
			err error
		}, 1)
		go func() {
			v, e := fn(runCtx)
			resultCh <- struct {
				val any
				err error
			}{v, e}
		}()

		select {
		case r := <-resultCh:
			future.resolve(r.val, r.err, false)
		case <-runCtx.Done():
			future.resolve(nil, runCtx.Err(), true)
		}
	}()
	return future, nil
}

// SubmitAll runs every task concurrently (bounded by the pool), via
// errgroup, and waits for all to finish, returning results in input order.
func (p *Pool) SubmitAll(ctx context.Context, tasks []func(ctx context.Context) (any, error)) ([]any, error) {
	results := make([]any, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := p.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer p.sem.Release(1)
			v, err := task(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func asTaskFunc(task any) (func(ctx context.Context) (any, error), error) {
	if fn, ok := task.(func(ctx context.Context) (any, error)); ok {
		return fn, nil
	}
	if task == nil {
		return nil, fmt.Errorf("workerpool: task must not be nil")
	}
	v := reflect.ValueOf(task)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("workerpool: task must be a function, got %T", task)
	}
	t := v.Type()
	return func(ctx context.Context) (any, error) {
		var args []reflect.Value
		if t.NumIn() == 1 && t.In(0).String() == "context.Context" {
			args = []reflect.Value{reflect.ValueOf(ctx)}
		}
		out := v.Call(args)
		var val any
		var err error
		for _, o := range out {
			if e, ok := o.Interface().(error); ok {
				err = e
				continue
			}
			val = o.Interface()
		}
		return val, err
	}, nil
}

var (
	defaultMu   sync.Mutex
	defaultPool *Pool
)

// Default returns the process-wide singleton pool, sized 1..4 workers
// unless initialised otherwise via SetDefault.
func Default() *Pool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultPool == nil {
		defaultPool = New(1, 4)
	}
	return defaultPool
}

// SetDefault overrides the process-wide singleton, for core startup
// configuration (§9: "the worker pool is instantiated once at core startup
// and passed into components that need it").
func SetDefault(p *Pool) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultPool = p
}
