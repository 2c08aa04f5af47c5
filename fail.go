package gresult

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fail is a failure payload that remembers the item it was caused by.
type Fail[T any] struct {
	Arg T
	Err error
}

func NewFail[T any](v T, err error) Fail[T] {
	return Fail[T]{
		Arg: v,
		Err: err,
	}
}

func (f Fail[T]) Error() string {
	return fmt.Sprintf("%v: %v", f.Arg, f.Err)
}

func (f Fail[T]) Unwrap() error {
	return f.Err
}

// ArgOf returns the item carried by the first Fail[T] in err's chain.
func ArgOf[T any](err error) (T, bool) {
	var f Fail[T]
	if errors.As(err, &f) {
		return f.Arg, true
	}
	var zero T
	return zero, false
}

// PanicError is the failure payload of a per-item transform that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
