package gresult

import (
	"context"
)

// Capture wraps every item of s in a success Result. When s fails, the
// failure is emitted as one failure Result and the stream completes
// normally, so the resulting stream never fails.
//
// Capture absorbs failures at the point it is applied. Applied around a
// whole stream, the first failure still ends that stream; apply it to the
// inner stream of each independent operation, as CaptureMap and
// CaptureConcat do, to keep the outer stream alive.
func Capture[T any](s Stream[T]) Stream[Result[T]] {
	wrapped := Map(s, func(_ context.Context, v T) Result[T] {
		return Success(v)
	})
	return Catch(wrapped, func(_ context.Context, err error) Stream[Result[T]] {
		return Of(Failure[T](err))
	})
}

// CaptureMap runs mapper for every item inside its own captured inner
// stream. A failing or panicking mapper yields a failure Result for that
// item and processing continues with the next one.
func CaptureMap[T, TR any](s Stream[T], mapper func(context.Context, T) (TR, error)) Stream[Result[TR]] {
	return CaptureConcat(s, func(_ context.Context, v T) Stream[TR] {
		return MapErr(Of(v), mapper)
	})
}

// CaptureConcat captures the stream projected from each item separately
// and concatenates the results in item order.
func CaptureConcat[T, TR any](s Stream[T], project func(context.Context, T) Stream[TR]) Stream[Result[TR]] {
	return ConcatMap(s, func(ctx context.Context, v T) Stream[Result[TR]] {
		return Capture(project(ctx, v))
	})
}
