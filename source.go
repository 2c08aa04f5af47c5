package gresult

import (
	"context"
)

// Of emits values in order and completes.
func Of[T any](values ...T) Stream[T] {
	return FromSlice(values)
}

func FromSlice[T any](slice []T) Stream[T] {
	return New(func(ctx context.Context, o Observer[T]) {
		for _, v := range slice {
			if ctx.Err() != nil {
				return
			}
			o.next(ctx, v)
		}
		o.complete(ctx)
	})
}

// FromChan emits every value received from source and completes when source
// is closed. The channel is not closed on cancellation, it belongs to the
// producer.
func FromChan[T any](source <-chan T) Stream[T] {
	return New(func(ctx context.Context, o Observer[T]) {
		for {
			select {
			case v, ok := <-source:
				if !ok {
					o.complete(ctx)
					return
				}
				if ctx.Err() != nil {
					return
				}
				o.next(ctx, v)
			case <-ctx.Done():
				return
			}
		}
	})
}

func Empty[T any]() Stream[T] {
	return New(func(ctx context.Context, o Observer[T]) {
		o.complete(ctx)
	})
}

// Throw fails immediately with err.
func Throw[T any](err error) Stream[T] {
	return New(func(ctx context.Context, o Observer[T]) {
		o.fail(ctx, err)
	})
}

// Defer calls factory on every subscription. A panicking factory fails the
// subscription with a *PanicError.
func Defer[T any](factory func() Stream[T]) Stream[T] {
	build := func(context.Context, struct{}) (Stream[T], error) {
		return factory(), nil
	}
	return New(func(ctx context.Context, o Observer[T]) {
		s, err := call(build, ctx, struct{}{})
		if err != nil {
			o.fail(ctx, err)
			return
		}
		s.Subscribe(ctx, o)
	})
}
