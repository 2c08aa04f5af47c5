package gresult

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the two variants of a Result.
type Kind string

const (
	KindSuccess Kind = "SuccessWrapper"
	KindFailure Kind = "ErrorWrapper"
)

var (
	ErrUnknownKind     = errors.New("unknown result kind")
	ErrMalformedResult = errors.New("malformed result")
)

// Result is either a success carrying the emitted value or a failure
// carrying the failure payload of a stream. It cannot be changed once
// constructed. Only Kind tells the variants apart: Failure(nil) is a
// failure and Success of an error value is a success.
//
// The zero Result is neither; no operator produces it.
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

func Success[T any](v T) Result[T] {
	return Result[T]{
		kind:  KindSuccess,
		value: v,
	}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{
		kind: KindFailure,
		err:  err,
	}
}

func (r Result[T]) Kind() Kind {
	return r.kind
}

func (r Result[T]) IsSuccess() bool {
	return r.kind == KindSuccess
}

func (r Result[T]) IsFailure() bool {
	return r.kind == KindFailure
}

// Value returns the success payload, or the zero T for a failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure payload, or nil for a success.
func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

func (r Result[T]) String() string {
	switch r.kind {
	case KindSuccess:
		return fmt.Sprintf("%s(%v)", r.kind, r.value)
	case KindFailure:
		return fmt.Sprintf("%s(%v)", r.kind, r.err)
	default:
		return "Result()"
	}
}

// -------------------------------

// MarshaledError is the failure payload of a Result decoded from JSON.
// Only the message of the original error survives encoding.
type MarshaledError struct {
	Message string
}

func (e *MarshaledError) Error() string {
	return e.Message
}

type wireResult struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// MarshalJSON renders {"type":"SuccessWrapper","value":...} or
// {"type":"ErrorWrapper","error":"message"}. A nil failure payload is
// rendered as "error":null.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindSuccess:
		b, err := json.Marshal(r.value)
		if err != nil {
			return nil, errors.Wrap(err, "marshal success value")
		}
		return json.Marshal(wireResult{Type: r.kind, Value: b})
	case KindFailure:
		b := []byte("null")
		if r.err != nil {
			b, _ = json.Marshal(r.err.Error())
		}
		return json.Marshal(wireResult{Type: r.kind, Error: b})
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "marshal %q", r.kind)
	}
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var w wireResult
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "unmarshal result")
	}

	switch w.Type {
	case KindSuccess:
		if len(w.Value) == 0 || len(w.Error) != 0 {
			return errors.Wrap(ErrMalformedResult, "success must carry exactly a value")
		}
		var v T
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return errors.Wrap(err, "unmarshal success value")
		}
		*r = Success(v)
	case KindFailure:
		if len(w.Error) == 0 || len(w.Value) != 0 {
			return errors.Wrap(ErrMalformedResult, "failure must carry exactly an error")
		}
		var msg *string
		if err := json.Unmarshal(w.Error, &msg); err != nil {
			return errors.Wrap(err, "unmarshal failure payload")
		}
		if msg == nil {
			*r = Failure[T](nil)
		} else {
			*r = Failure[T](&MarshaledError{Message: *msg})
		}
	default:
		return errors.Wrapf(ErrUnknownKind, "unmarshal %q", w.Type)
	}
	return nil
}
