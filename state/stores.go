package state

import (
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("cannot find value")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type ReadOnlyKeyValueStore[K, V any] interface {
	Get(key K) (V, error)
	// Range calls fn for every entry in the byte order of the serialized
	// keys, stopping at the first error fn returns.
	Range(fn func(K, V) error) error
}

type KeyValueStore[K, V any] interface {
	ReadOnlyKeyValueStore[K, V]

	Put(key K, value V) error
	Delete(key K) error
	Close() error
}

func NewKeyValueStore[K, V any](opts Options[K, V]) (KeyValueStore[K, V], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.StoreType() == BoltDB {
		return newBoltDBKeyValueStore(opts)
	}
	return newMemKeyValueStore(opts), nil
}

// Clear deletes every entry of kvs.
func Clear[K, V any](kvs KeyValueStore[K, V]) error {
	return kvs.Range(func(k K, _ V) error {
		return errors.Wrapf(kvs.Delete(k), "clear key %v", k)
	})
}
