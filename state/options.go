package state

import (
	"fmt"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// StoreType selects the backend of a KeyValueStore.
type StoreType int

const (
	InMemory StoreType = iota
	BoltDB
)

func (t StoreType) String() string {
	switch t {
	case InMemory:
		return "memory"
	case BoltDB:
		return "boltdb"
	default:
		return fmt.Sprintf("StoreType(%d)", int(t))
	}
}

// Options configures NewKeyValueStore.
type Options[K, V any] interface {
	KeySerde() Serde[K]
	ValueSerde() Serde[V]
	StoreType() StoreType
	// Bucket names the BoltDB bucket holding the entries.
	Bucket() string
	// Dir is the directory of the BoltDB file.
	Dir() string
	Logger() log.Interface
	// Validate reports a configuration the selected backend cannot open.
	Validate() error
}

// NewOptions returns JSON serdes and an in-memory backend unless opts say
// otherwise.
func NewOptions[K, V any](opts ...Option[K, V]) Options[K, V] {
	so := &storeOptions[K, V]{
		keys:    JSONSerde[K](),
		values:  JSONSerde[V](),
		backend: InMemory,
		logger:  log.Log,
	}
	for _, opt := range opts {
		opt(so)
	}
	return so
}

type boltConfig struct {
	bucket string
	dir    string
}

type storeOptions[K, V any] struct {
	keys    Serde[K]
	values  Serde[V]
	backend StoreType
	bolt    boltConfig
	logger  log.Interface
}

var _ Options[any, any] = &storeOptions[any, any]{}

func (so *storeOptions[K, V]) KeySerde() Serde[K]    { return so.keys }
func (so *storeOptions[K, V]) ValueSerde() Serde[V]  { return so.values }
func (so *storeOptions[K, V]) StoreType() StoreType  { return so.backend }
func (so *storeOptions[K, V]) Bucket() string        { return so.bolt.bucket }
func (so *storeOptions[K, V]) Dir() string           { return so.bolt.dir }
func (so *storeOptions[K, V]) Logger() log.Interface { return so.logger }

func (so *storeOptions[K, V]) Validate() error {
	switch so.backend {
	case InMemory:
		return nil
	case BoltDB:
		if so.bolt.bucket == "" {
			return errors.New("boltdb store needs a bucket name")
		}
		return nil
	default:
		return errors.Errorf("unknown store type %s", so.backend)
	}
}

type Option[K, V any] func(*storeOptions[K, V])

// WithKeySerde replaces the JSON key serde. The byte order of serialized
// keys is the order of Range.
func WithKeySerde[K, V any](keySerde Serde[K]) Option[K, V] {
	return func(so *storeOptions[K, V]) {
		if keySerde != nil {
			so.keys = keySerde
		}
	}
}

func WithValueSerde[K, V any](valueSerde Serde[V]) Option[K, V] {
	return func(so *storeOptions[K, V]) {
		if valueSerde != nil {
			so.values = valueSerde
		}
	}
}

func WithInMemory[K, V any]() Option[K, V] {
	return func(so *storeOptions[K, V]) {
		so.backend = InMemory
	}
}

// WithBoltDB keeps the entries in bucket of the BoltDB file found in the
// directory given by WithDirPath.
func WithBoltDB[K, V any](bucket string) Option[K, V] {
	return func(so *storeOptions[K, V]) {
		so.backend = BoltDB
		so.bolt.bucket = bucket
	}
}

func WithDirPath[K, V any](dir string) Option[K, V] {
	return func(so *storeOptions[K, V]) {
		so.bolt.dir = dir
	}
}

func WithLogger[K, V any](logger log.Interface) Option[K, V] {
	return func(so *storeOptions[K, V]) {
		if logger != nil {
			so.logger = logger
		}
	}
}
