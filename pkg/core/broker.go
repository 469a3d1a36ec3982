package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEventBuffer is the per-subscriber channel capacity used when none is configured.
const DefaultEventBuffer = 100

// Broker fans store events out to pattern-filtered subscribers.
// Publish must never be called while holding a lock that a subscriber
// may need to make progress.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

type subscriber struct {
	pattern string
	ch      chan Event
	ctx     context.Context
	stop    func() bool
}

// NewBroker creates a broker. A buffer <= 0 means DefaultEventBuffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a subscriber for paths matching pattern.
// The returned channel is closed when ctx is done or the broker closes.
func (b *Broker) Subscribe(ctx context.Context, pattern string) (<-chan Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	s := &subscriber{
		pattern: pattern,
		ch:      make(chan Event, b.buffer),
		ctx:     ctx,
	}
	b.subs[s] = struct{}{}
	s.stop = context.AfterFunc(ctx, func() { b.remove(s) })

	b.logger.Debug("watch subscribed", "pattern", pattern, "subscribers", len(b.subs))
	return s.ch, nil
}

func (b *Broker) remove(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
	b.logger.Debug("watch unsubscribed", "pattern", s.pattern, "subscribers", len(b.subs))
}

// Publish delivers e to every matching subscriber in subscription order.
// A full subscriber buffer blocks until the subscriber reads or cancels.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for s := range b.subs {
		ok, err := doublestar.Match(s.pattern, e.Path)
		if err != nil || !ok {
			continue
		}
		select {
		case s.ch <- e:
		case <-s.ctx.Done():
		}
	}
}

// Close detaches and closes every subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.stop()
		close(s.ch)
		delete(b.subs, s)
	}
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
