package gresult

import (
	"context"
)

// Successes unwraps the success Results of s, in order, and drops the
// failures.
func Successes[T any](s Stream[Result[T]]) Stream[T] {
	return lift[Result[T], T](s, newProjectionSupplier(KindSuccess, Result[T].Value))
}

// Failures unwraps the failure payloads of s, in order, and drops the
// successes.
func Failures[T any](s Stream[Result[T]]) Stream[error] {
	return lift[Result[T], error](s, newProjectionSupplier(KindFailure, Result[T].Err))
}

// Split shares one subscription of s between its success and failure
// projections. Both returned streams must be subscribed concurrently, the
// source runs once the second one is subscribed. See Broadcast.
func Split[T any](s Stream[Result[T]]) (Stream[T], Stream[error]) {
	shared := Broadcast(s, 2)
	return Successes(shared[0]), Failures(shared[1])
}

// -------------------------------

func newProjectionSupplier[T, TR any](kind Kind, unwrap func(Result[T]) TR) *projectionSupplier[T, TR] {
	return &projectionSupplier[T, TR]{
		kind:   kind,
		unwrap: unwrap,
	}
}

type projectionSupplier[T, TR any] struct {
	kind   Kind
	unwrap func(Result[T]) TR
}

var _ ProcessorSupplier[Result[any], any] = &projectionSupplier[any, any]{}

func (p *projectionSupplier[T, TR]) Observer(forwards ...Observer[TR]) Observer[Result[T]] {
	return passTerminal(func(ctx context.Context, r Result[T]) {
		switch r.Kind() {
		case p.kind:
			v := p.unwrap(r)
			for _, forward := range forwards {
				forward.next(ctx, v)
			}
		default:
			// the other variant, or an untagged zero Result
		}
	}, forwards)
}
