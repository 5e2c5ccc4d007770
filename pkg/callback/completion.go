package callback

import (
	"context"
	"sync"
)

// Completion is a single-assignment resolve/reject pair. Exactly one of
// Resolve or Reject takes effect; later calls are no-ops and report false.
type Completion[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewCompletion returns an unfulfilled completion.
func NewCompletion[T any]() *Completion[T] {
	return &Completion[T]{done: make(chan struct{})}
}

// Resolve fulfills the completion with a value. Returns true if this call won.
func (c *Completion[T]) Resolve(value T) bool {
	won := false
	c.once.Do(func() {
		c.value = value
		won = true
		close(c.done)
	})
	return won
}

// Reject fulfills the completion with an error. Returns true if this call won.
func (c *Completion[T]) Reject(err error) bool {
	won := false
	c.once.Do(func() {
		c.err = err
		won = true
		close(c.done)
	})
	return won
}

// Done is closed once the completion is fulfilled either way.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the completion is fulfilled or the context ends.
func (c *Completion[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-c.done:
		return c.value, c.err
	}
}
