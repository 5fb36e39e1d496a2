package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	p := NewBatchProcessor[int, int](3)

	results := p.Process(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		// finish in a different order than submitted
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n, nil
	})

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.NoError(t, r.Error)
		assert.Equal(t, items[i]*items[i], r.Result)
	}
}

func TestBatchProcessor_IsolatesErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewBatchProcessor[int, int](2)

	results := p.Process(context.Background(), []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})

	assert.NoError(t, results[0].Error)
	assert.ErrorIs(t, results[1].Error, boom)
	assert.NoError(t, results[2].Error)
	assert.Equal(t, 3, results[2].Result)
}

func TestBatchProcessor_RespectsLimit(t *testing.T) {
	var running, peak int32
	p := NewBatchProcessor[int, int](2)

	p.Process(context.Background(), make([]int, 8), func(ctx context.Context, _ int) (int, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return 0, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := int32(0)
	p := NewBatchProcessor[int, int](0)
	results := p.Process(ctx, []int{1, 2}, func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&called, 1)
		return n, nil
	})

	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Equal(t, DefaultMaxConcurrent, p.MaxConcurrent())
}

func TestBatchProcessor_Progress(t *testing.T) {
	var last int
	p := NewBatchProcessor[int, int](4)

	p.ProcessWithProgress(context.Background(), make([]int, 6), func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, func(completed, total int) {
		assert.Equal(t, 6, total)
		last = completed
	})

	assert.Equal(t, 6, last)
}
