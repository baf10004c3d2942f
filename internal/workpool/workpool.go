// Package workpool runs a function over a slice with bounded concurrency.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a caller passes a non-positive worker count.
const DefaultWorkers = 10

// Map calls fn for every item using at most workers goroutines and returns
// the results in input order. It returns after every started call has
// finished. The first error cancels the context passed to the remaining
// calls and is returned alongside the partial results.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, int, T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			value, err := fn(gCtx, i, item)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
