package utils

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent is used when a processor is created with a
// non-positive limit
const DefaultMaxConcurrent = 10

// BatchProcessor processes items concurrently in batches
type BatchProcessor[T any, R any] struct {
	maxConcurrent int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor[T any, R any](maxConcurrent int) *BatchProcessor[T, R] {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &BatchProcessor[T, R]{
		maxConcurrent: maxConcurrent,
	}
}

// MaxConcurrent returns the concurrency limit
func (b *BatchProcessor[T, R]) MaxConcurrent() int {
	return b.maxConcurrent
}

// ProcessResult contains the result of processing a single item
type ProcessResult[R any] struct {
	Index  int
	Result R
	Error  error
}

// Process executes the processor function on all items concurrently.
// Results are indexed by input position. Items that have not started when
// ctx is done are not processed and carry ctx.Err().
func (b *BatchProcessor[T, R]) Process(ctx context.Context, items []T, processor func(context.Context, T) (R, error)) []ProcessResult[R] {
	return b.ProcessWithProgress(ctx, items, processor, nil)
}

// ProcessWithProgress is Process with a callback after every finished item.
// progress may be nil; calls to it are serialised.
func (b *BatchProcessor[T, R]) ProcessWithProgress(
	ctx context.Context,
	items []T,
	processor func(context.Context, T) (R, error),
	progress func(completed, total int),
) []ProcessResult[R] {

	results := make([]ProcessResult[R], len(items))
	completed := 0
	var mu sync.Mutex

	// errors are recorded per item, never returned to the group, so one
	// failure does not cancel its siblings
	var g errgroup.Group
	g.SetLimit(b.maxConcurrent)

	for i, item := range items {
		i, item := i, item

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = ProcessResult[R]{Index: i, Error: err}
			} else {
				result, err := processor(ctx, item)
				results[i] = ProcessResult[R]{Index: i, Result: result, Error: err}
			}

			if progress != nil {
				mu.Lock()
				completed++
				progress(completed, len(items))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	return results
}
