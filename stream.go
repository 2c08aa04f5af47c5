package gresult

import (
	"context"
)

// Processor handles one item delivered by a stream.
type Processor[T any] func(ctx context.Context, v T)

// Observer receives the signals of one subscription: zero or more items
// followed by at most one terminal signal, either OnError or OnComplete.
// Nil callbacks are ignored.
type Observer[T any] struct {
	OnNext     Processor[T]
	OnError    func(ctx context.Context, err error)
	OnComplete func(ctx context.Context)
}

func (o Observer[T]) next(ctx context.Context, v T) {
	if o.OnNext != nil {
		o.OnNext(ctx, v)
	}
}

func (o Observer[T]) fail(ctx context.Context, err error) {
	if o.OnError != nil {
		o.OnError(ctx, err)
	}
}

func (o Observer[T]) complete(ctx context.Context) {
	if o.OnComplete != nil {
		o.OnComplete(ctx)
	}
}

// Stream is a cold stream of T. Every call to Subscribe runs an independent
// pipeline and blocks until the stream terminates or ctx is done.
// Cancelling ctx is the teardown request: the stream stops emitting and
// no further signal is delivered to the observer.
type Stream[T any] interface {
	Subscribe(ctx context.Context, o Observer[T])
}

// New creates a stream from a subscribe function. The observer handed to
// subscribe drops every signal after the first terminal one, and the ctx
// handed to subscribe is cancelled as soon as a terminal signal was
// delivered, so anything feeding the stream stops early.
func New[T any](subscribe func(ctx context.Context, o Observer[T])) Stream[T] {
	return &stream[T]{
		subscribe: subscribe,
	}
}

type stream[T any] struct {
	subscribe func(ctx context.Context, o Observer[T])
}

var _ Stream[any] = &stream[any]{}

func (s *stream[T]) Subscribe(ctx context.Context, o Observer[T]) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.subscribe(ctx, newSafeObserver(o, cancel))
}

// newSafeObserver enforces the signal grammar of one subscription.
// Subscriptions are delivered sequentially, so no locking is required.
func newSafeObserver[T any](o Observer[T], cancel context.CancelFunc) Observer[T] {
	done := false
	return Observer[T]{
		OnNext: func(ctx context.Context, v T) {
			if done {
				return
			}
			o.next(ctx, v)
		},
		OnError: func(ctx context.Context, err error) {
			if done {
				return
			}
			done = true
			o.fail(ctx, err)
			cancel()
		},
		OnComplete: func(ctx context.Context) {
			if done {
				return
			}
			done = true
			o.complete(ctx)
			cancel()
		},
	}
}

// lift applies an operator supplier to every subscription of s.
func lift[T, TR any](s Stream[T], supplier ProcessorSupplier[T, TR]) Stream[TR] {
	return New(func(ctx context.Context, o Observer[TR]) {
		s.Subscribe(ctx, supplier.Observer(o))
	})
}
