package pubsub

import "context"

// Listener wraps a broker subscription and hands out events one at a time.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to the broker for the lifetime of ctx.
func NewListener[T any](ctx context.Context, sub Subscriber[T]) *Listener[T] {
	return &Listener[T]{
		ctx: ctx,
		ch:  sub.Subscribe(ctx),
	}
}

// Next blocks until an event arrives.
// Returns false once the context is cancelled or the broker is closed.
func (l *Listener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}

// Each calls fn for every event until the listener stops.
func (l *Listener[T]) Each(fn func(Event[T])) {
	for {
		event, ok := l.Next()
		if !ok {
			return
		}
		fn(event)
	}
}
