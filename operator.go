package gresult

import (
	"context"

	"github.com/KumKeeHyun/gresult/options/pipe"
)

func Map[T, TR any](s Stream[T], mapper func(context.Context, T) TR) Stream[TR] {
	return lift[T, TR](s, newMapSupplier(mapper))
}

// MapErr maps every item with mapper. An error returned by mapper is the
// failure signal of the resulting stream, which terminates it.
func MapErr[T, TR any](s Stream[T], mapper func(context.Context, T) (TR, error)) Stream[TR] {
	return lift[T, TR](s, newMapErrSupplier(mapper))
}

func Filter[T any](s Stream[T], filter func(T) bool) Stream[T] {
	return lift[T, T](s, newFilterSupplier(filter))
}

func FlatMap[T, TR any](s Stream[T], flatMapper func(context.Context, T) []TR) Stream[TR] {
	return lift[T, TR](s, newFlatMapSupplier(flatMapper))
}

// Tap calls fn for every item and forwards the item unchanged. A panic in
// fn is the failure signal of the resulting stream.
func Tap[T any](s Stream[T], fn func(context.Context, T)) Stream[T] {
	return lift[T, T](s, newTapSupplier(fn))
}

// ConcatMap subscribes to the stream projected from each item, one at a
// time and in order, and forwards its items. A failing inner stream fails
// the resulting stream; inner completion only moves on to the next item.
// A panic while projecting or subscribing the inner stream fails the
// resulting stream with a *PanicError.
func ConcatMap[T, TR any](s Stream[T], project func(context.Context, T) Stream[TR]) Stream[TR] {
	return New(func(ctx context.Context, o Observer[TR]) {
		concat := func(ctx context.Context, v T) (struct{}, error) {
			project(ctx, v).Subscribe(ctx, Observer[TR]{
				OnNext:  o.OnNext,
				OnError: o.OnError,
			})
			return struct{}{}, nil
		}
		s.Subscribe(ctx, passTerminal(func(ctx context.Context, v T) {
			if _, err := call(concat, ctx, v); err != nil {
				o.fail(ctx, err)
			}
		}, []Observer[TR]{o}))
	})
}

// Catch substitutes the stream returned by handler at the point s fails.
// The failed subscription is released before the replacement is subscribed.
func Catch[T any](s Stream[T], handler func(context.Context, error) Stream[T]) Stream[T] {
	handle := func(ctx context.Context, err error) (Stream[T], error) {
		return handler(ctx, err), nil
	}
	return New(func(ctx context.Context, o Observer[T]) {
		var (
			caught  bool
			failure error
		)
		s.Subscribe(ctx, Observer[T]{
			OnNext: o.OnNext,
			OnError: func(_ context.Context, err error) {
				caught = true
				failure = err
			},
			OnComplete: o.OnComplete,
		})
		if !caught || ctx.Err() != nil {
			return
		}

		replacement, err := call(handle, ctx, failure)
		if err != nil {
			o.fail(ctx, err)
			return
		}
		replacement.Subscribe(ctx, o)
	})
}

// Pipe moves the upstream subscription to its own goroutine and hands
// items over through a channel, unbuffered unless pipe.WithBufferedChan is
// given. Order and terminal signals are preserved.
func Pipe[T any](s Stream[T], opts ...pipe.Option) Stream[T] {
	return New(func(ctx context.Context, o Observer[T]) {
		opt := newPipeOption[T](opts...)
		p := opt.BuildPipe()

		var (
			completed bool
			failed    bool
			failure   error
		)
		go func() {
			defer close(p)
			s.Subscribe(ctx, Observer[T]{
				OnNext: func(_ context.Context, v T) {
					select {
					case p <- v:
					case <-ctx.Done():
					}
				},
				OnError: func(_ context.Context, err error) {
					failed = true
					failure = err
				},
				OnComplete: func(_ context.Context) {
					completed = true
				},
			})
		}()

		for v := range p {
			o.next(ctx, v)
		}
		if ctx.Err() != nil {
			return
		}
		switch {
		case failed:
			o.fail(ctx, failure)
		case completed:
			o.complete(ctx)
		}
	})
}
