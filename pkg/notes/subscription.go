package notes

import (
	"context"
	"sync"
)

// Subscription is a live view. Every value received from Updates is a
// full replacement of the previous one.
type Subscription[T any] struct {
	out    chan T
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription[T any](cancel context.CancelFunc) *Subscription[T] {
	return &Subscription[T]{
		out:    make(chan T),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Updates returns the emission channel. It is closed when the subscription ends.
func (s *Subscription[T]) Updates() <-chan T {
	return s.out
}

// Done is closed once delivery has stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe detaches the listener and waits for delivery to stop.
// Nothing is emitted after it returns. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()
	<-s.done
}

// Err reports why the stream ended on its own, or nil.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
