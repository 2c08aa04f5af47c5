package gresult

import (
	"context"

	"github.com/KumKeeHyun/gresult/state"
)

type ProcessorSupplier[T, TR any] interface {
	Observer(forwards ...Observer[TR]) Observer[T]
}

// passTerminal builds an observer that handles items with next and hands
// terminal signals to every forward unchanged.
func passTerminal[T, TR any](next Processor[T], forwards []Observer[TR]) Observer[T] {
	return Observer[T]{
		OnNext: next,
		OnError: func(ctx context.Context, err error) {
			for _, forward := range forwards {
				forward.fail(ctx, err)
			}
		},
		OnComplete: func(ctx context.Context) {
			for _, forward := range forwards {
				forward.complete(ctx)
			}
		},
	}
}

func failAll[TR any](ctx context.Context, forwards []Observer[TR], err error) {
	for _, forward := range forwards {
		forward.fail(ctx, err)
	}
}

// call runs a user function, turning a panic into a *PanicError.
func call[T, TR any](fn func(context.Context, T) (TR, error), ctx context.Context, v T) (res TR, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx, v)
}

// -------------------------------

func newFallThroughSupplier[T any]() *fallThroughSupplier[T] {
	return &fallThroughSupplier[T]{}
}

type fallThroughSupplier[T any] struct{}

var _ ProcessorSupplier[any, any] = &fallThroughSupplier[any]{}

func (p *fallThroughSupplier[T]) Observer(forwards ...Observer[T]) Observer[T] {
	return passTerminal(func(ctx context.Context, v T) {
		for _, forward := range forwards {
			forward.next(ctx, v)
		}
	}, forwards)
}

// -------------------------------

func newFilterSupplier[T any](filter func(T) bool) *filterSupplier[T] {
	return &filterSupplier[T]{
		filter: filter,
	}
}

type filterSupplier[T any] struct {
	filter func(T) bool
}

var _ ProcessorSupplier[any, any] = &filterSupplier[any]{}

func (p *filterSupplier[T]) Observer(forwards ...Observer[T]) Observer[T] {
	filter := func(_ context.Context, v T) (bool, error) {
		return p.filter(v), nil
	}
	return passTerminal(func(ctx context.Context, v T) {
		ok, err := call(filter, ctx, v)
		if err != nil {
			failAll(ctx, forwards, err)
			return
		}
		if ok {
			for _, forward := range forwards {
				forward.next(ctx, v)
			}
		}
	}, forwards)
}

// -------------------------------

func newTapSupplier[T any](tap func(context.Context, T)) *tapSupplier[T] {
	return &tapSupplier[T]{
		tap: tap,
	}
}

type tapSupplier[T any] struct {
	tap func(context.Context, T)
}

var _ ProcessorSupplier[any, any] = &tapSupplier[any]{}

func (p *tapSupplier[T]) Observer(forwards ...Observer[T]) Observer[T] {
	tap := func(ctx context.Context, v T) (struct{}, error) {
		p.tap(ctx, v)
		return struct{}{}, nil
	}
	return passTerminal(func(ctx context.Context, v T) {
		if _, err := call(tap, ctx, v); err != nil {
			failAll(ctx, forwards, err)
			return
		}
		for _, forward := range forwards {
			forward.next(ctx, v)
		}
	}, forwards)
}

// -------------------------------

func newMapSupplier[T, TR any](mapper func(context.Context, T) TR) *mapSupplier[T, TR] {
	return newMapErrSupplier(func(ctx context.Context, v T) (TR, error) {
		return mapper(ctx, v), nil
	})
}

func newMapErrSupplier[T, TR any](mapper func(context.Context, T) (TR, error)) *mapSupplier[T, TR] {
	return &mapSupplier[T, TR]{
		mapper: mapper,
	}
}

type mapSupplier[T, TR any] struct {
	mapper func(context.Context, T) (TR, error)
}

var _ ProcessorSupplier[any, any] = &mapSupplier[any, any]{}

func (p *mapSupplier[T, TR]) Observer(forwards ...Observer[TR]) Observer[T] {
	return passTerminal(func(ctx context.Context, v T) {
		vr, err := call(p.mapper, ctx, v)
		if err != nil {
			failAll(ctx, forwards, err)
			return
		}
		for _, forward := range forwards {
			forward.next(ctx, vr)
		}
	}, forwards)
}

// -------------------------------

func newFlatMapSupplier[T, TR any](flatMapper func(context.Context, T) []TR) *flatMapSupplier[T, TR] {
	return &flatMapSupplier[T, TR]{
		flatMapper: flatMapper,
	}
}

type flatMapSupplier[T, TR any] struct {
	flatMapper func(context.Context, T) []TR
}

var _ ProcessorSupplier[any, any] = &flatMapSupplier[any, any]{}

func (p *flatMapSupplier[T, TR]) Observer(forwards ...Observer[TR]) Observer[T] {
	flatMapper := func(ctx context.Context, v T) ([]TR, error) {
		return p.flatMapper(ctx, v), nil
	}
	return passTerminal(func(ctx context.Context, v T) {
		vrs, err := call(flatMapper, ctx, v)
		if err != nil {
			failAll(ctx, forwards, err)
			return
		}
		for _, vr := range vrs {
			for _, forward := range forwards {
				forward.next(ctx, vr)
			}
		}
	}, forwards)
}

// -------------------------------

func newSequenceSupplier[T any]() *sequenceSupplier[T] {
	return &sequenceSupplier[T]{}
}

type sequenceSupplier[T any] struct{}

var _ ProcessorSupplier[any, KeyValue[uint64, any]] = &sequenceSupplier[any]{}

func (p *sequenceSupplier[T]) Observer(forwards ...Observer[KeyValue[uint64, T]]) Observer[T] {
	var seq uint64
	return passTerminal(func(ctx context.Context, v T) {
		kv := NewKeyValue(seq, v)
		seq++
		for _, forward := range forwards {
			forward.next(ctx, kv)
		}
	}, forwards)
}

// -------------------------------

func newRecordSupplier[K, V any](kvstore state.KeyValueStore[K, V]) *recordSupplier[K, V] {
	return &recordSupplier[K, V]{
		kvstore: kvstore,
	}
}

type recordSupplier[K, V any] struct {
	kvstore state.KeyValueStore[K, V]
}

var _ ProcessorSupplier[KeyValue[any, any], KeyValue[any, Change[any]]] = &recordSupplier[any, any]{}

func (p *recordSupplier[K, V]) Observer(forwards ...Observer[KeyValue[K, Change[V]]]) Observer[KeyValue[K, V]] {
	return passTerminal(func(ctx context.Context, kv KeyValue[K, V]) {
		old, err := p.kvstore.Get(kv.Key)
		if err != nil && !state.IsNotFound(err) {
			failAll(ctx, forwards, err)
			return
		}
		if err := p.kvstore.Put(kv.Key, kv.Value); err != nil {
			failAll(ctx, forwards, err)
			return
		}

		ckv := NewKeyValue(kv.Key, NewChange(old, kv.Value))
		for _, forward := range forwards {
			forward.next(ctx, ckv)
		}
	}, forwards)
}
