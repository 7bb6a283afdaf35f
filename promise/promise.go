package promise

import (
	"context"
	"sync"
)

// Promise is a single-assignment future. It completes exactly once, either
// resolved with a value or rejected with an error; later completions are
// no-ops. The zero Promise is not usable; create instances with New,
// Resolved or Rejected.
type Promise[T any] struct {
	done chan struct{}
	err  error
	val  T
	once sync.Once
}

// New creates an incomplete promise. The producer completes it with Resolve
// or Reject; consumers wait with Await or Done.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolved returns a promise already completed with value.
func Resolved[T any](value T) *Promise[T] {
	p := New[T]()
	p.Resolve(value)
	return p
}

// Rejected returns a promise already failed with err.
func Rejected[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

// Resolve completes the promise with value. Only the first completion wins.
func (p *Promise[T]) Resolve(value T) {
	p.once.Do(func() {
		p.val = value
		close(p.done)
	})
}

// Reject fails the promise with err. Only the first completion wins.
func (p *Promise[T]) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Await blocks until the promise completes or ctx is done. Cancelling ctx
// abandons the wait, not the producer: the promise may still complete later
// and its result is simply discarded.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the promise completes.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Peek returns the result without blocking. ok is false while the promise is
// incomplete.
func (p *Promise[T]) Peek() (value T, err error, ok bool) {
	select {
	case <-p.done:
		return p.val, p.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
