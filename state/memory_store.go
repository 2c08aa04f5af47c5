package state

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

func newMemKeyValueStore[K, V any](opts Options[K, V]) KeyValueStore[K, V] {
	return &memKeyValueStore[K, V]{
		store:    make(map[string]memEntry[K, V], 100),
		keySerde: opts.KeySerde(),
		mu:       sync.Mutex{},
	}
}

type memEntry[K, V any] struct {
	key   K
	value V
}

type memKeyValueStore[K, V any] struct {
	store    map[string]memEntry[K, V]
	keySerde Serde[K]
	mu       sync.Mutex
}

var _ KeyValueStore[any, any] = &memKeyValueStore[any, any]{}

func (kvs *memKeyValueStore[K, V]) Get(key K) (V, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	var zero V
	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return zero, err
	}
	e, exists := kvs.store[string(keySer)]
	if exists {
		return e.value, nil
	}
	return zero, errors.Wrapf(ErrNotFound, "key %v", key)
}

func (kvs *memKeyValueStore[K, V]) Put(key K, value V) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return err
	}
	kvs.store[string(keySer)] = memEntry[K, V]{key: key, value: value}
	return nil
}

func (kvs *memKeyValueStore[K, V]) Delete(key K) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return err
	}
	delete(kvs.store, string(keySer))
	return nil
}

// Range works on a snapshot taken under the lock, fn may write to kvs.
func (kvs *memKeyValueStore[K, V]) Range(fn func(K, V) error) error {
	kvs.mu.Lock()
	keys := make([]string, 0, len(kvs.store))
	for k := range kvs.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]memEntry[K, V], len(keys))
	for i, k := range keys {
		entries[i] = kvs.store[k]
	}
	kvs.mu.Unlock()

	for _, e := range entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func (kvs *memKeyValueStore[K, V]) Close() error {
	return nil
}
