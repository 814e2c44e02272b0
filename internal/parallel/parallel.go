// Package parallel runs independent per-index work across a bounded pool of
// goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBatch is the smallest index range handed to a single goroutine.
const minBatch = 256

// Workers returns the effective worker count for n (0 or less means
// GOMAXPROCS).
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// For calls body for every index in [0, n) using at most workers goroutines.
// body must only write to slots owned by its index.
func For(n, workers int, body func(i int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	batch := (n + workers - 1) / workers
	if batch < minBatch {
		batch = minBatch
	}
	if batch >= n {
		for i := 0; i < n; i++ {
			body(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				body(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Invoke runs fns concurrently and returns the first error.
func Invoke(ctx context.Context, fns ...func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error {
			return fn(ctx)
		})
	}
	return g.Wait()
}
