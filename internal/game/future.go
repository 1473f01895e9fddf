package game

import (
	"context"
	"sync"
)

// Future is a single-shot result of a collaborator call. It is resolved or
// rejected exactly once; later completions are ignored.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewFuture creates a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes the future with v.
func (f *Future[T]) Resolve(v T) {
	f.complete(v, nil)
}

// Reject completes the future with err.
func (f *Future[T]) Reject(err error) {
	var zero T
	f.complete(zero, err)
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future[T]) Result() (T, error) {
	return f.val, f.err
}

// Wait blocks until the future completes or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
