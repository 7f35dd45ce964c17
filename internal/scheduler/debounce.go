package scheduler

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Debounce returns a function that, each time it is called, delays fn until
// delay has elapsed with no further calls; a call during the delay window
// resets the timer. fn must be callable or Debounce panics at build time,
// the same non-function guard as the queue's Submit.
func Debounce(fn any, delay time.Duration) func() {
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("scheduler: Debounce requires a function, got %T", fn))
	}
	call := callAdapter(fn)

	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, call)
	}
}

// Throttle returns a function that invokes fn at most once per interval; any
// calls within an active interval are dropped.
func Throttle(fn any, interval time.Duration) func() {
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("scheduler: Throttle requires a function, got %T", fn))
	}
	call := callAdapter(fn)

	var mu sync.Mutex
	var last time.Time
	return func() {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < interval {
			return
		}
		last = now
		call()
	}
}

func callAdapter(fn any) func() {
	v := reflect.ValueOf(fn)
	return func() { v.Call(nil) }
}
