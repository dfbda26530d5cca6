// Package scatter runs independent backend lookups concurrently on a
// bounded pool and gathers their results through typed futures.
package scatter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrently running tasks. Submission blocks
// while the pool is saturated.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 16
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Future holds the pending result of one submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the task finishes or ctx is done, whichever is first.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go submits fn to the pool. It blocks until a worker slot is free; if ctx
// is done before a slot frees up, the returned future carries ctx's error.
func Go[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		f.err = err
		close(f.done)
		return f
	}
	go func() {
		defer p.sem.Release(1)
		f.value, f.err = fn(ctx)
		close(f.done)
	}()
	return f
}
