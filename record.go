package gresult

import (
	"context"

	"github.com/KumKeeHyun/gresult/state"
	"github.com/pkg/errors"
)

type KeyValue[K, V any] struct {
	Key   K
	Value V
}

func NewKeyValue[K, V any](k K, v V) KeyValue[K, V] {
	return KeyValue[K, V]{
		Key:   k,
		Value: v,
	}
}

// Change is the value a key held before and after a write.
type Change[T any] struct {
	OldValue, NewValue T
}

func NewChange[T any](ov, nv T) Change[T] {
	return Change[T]{
		OldValue: ov,
		NewValue: nv,
	}
}

// Sequence numbers the items of every subscription from 0. Recording the
// sequence of a combined Result stream before projecting it keeps the joint
// order of successes and failures.
func Sequence[T any](s Stream[T]) Stream[KeyValue[uint64, T]] {
	return lift[T, KeyValue[uint64, T]](s, newSequenceSupplier[T]())
}

// Record writes every item into kvstore and forwards the change it made.
// A store error is the failure signal of the resulting stream.
func Record[K, V any](s Stream[KeyValue[K, V]], kvstore state.KeyValueStore[K, V]) Stream[KeyValue[K, Change[V]]] {
	return lift[KeyValue[K, V], KeyValue[K, Change[V]]](s, newRecordSupplier(kvstore))
}

var errStopRange = errors.New("stop range")

// FromStore emits the entries of kvstore in key order and completes.
func FromStore[K, V any](kvstore state.ReadOnlyKeyValueStore[K, V]) Stream[KeyValue[K, V]] {
	return New(func(ctx context.Context, o Observer[KeyValue[K, V]]) {
		err := kvstore.Range(func(k K, v V) error {
			if ctx.Err() != nil {
				return errStopRange
			}
			o.next(ctx, NewKeyValue(k, v))
			return nil
		})
		switch {
		case errors.Is(err, errStopRange):
		case err != nil:
			o.fail(ctx, err)
		default:
			o.complete(ctx)
		}
	})
}
