package paging

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Dispatcher runs pure data transforms off the caller's goroutine.
type Dispatcher interface {
	// Dispatch runs fn and waits for it. When ctx ends first Dispatch returns
	// the cancellation cause; fn keeps running and its result must be dropped.
	Dispatch(ctx context.Context, fn func()) error
}

type inline struct{}

func (inline) Dispatch(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	fn()
	return nil
}

// Inline returns a Dispatcher that runs fn on the calling goroutine.
func Inline() Dispatcher { return inline{} }

// Pool is a Dispatcher bounded to a fixed number of concurrent transforms.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool running at most size transforms at once.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Background is the shared pool used for merges and modifier transforms.
var Background = NewPool(runtime.GOMAXPROCS(0))

// Dispatch runs fn on a pool goroutine.
func (p *Pool) Dispatch(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return context.Cause(ctx)
	}
	done := make(chan struct{})
	go func() {
		defer p.sem.Release(1)
		defer close(done)
		fn()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
