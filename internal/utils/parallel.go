package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work that can be executed in parallel.
type Task func(ctx context.Context) error

// RunParallel executes the tasks concurrently and waits for all of them.
// The first error cancels the context handed to the remaining tasks and is returned.
func RunParallel(ctx context.Context, tasks ...Task) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			return task(ctx)
		})
	}
	return g.Wait()
}

// ForEach runs fn for every item with at most limit calls in flight.
// A limit below one means no limit.
func ForEach[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			return fn(ctx, item)
		})
	}
	return g.Wait()
}
