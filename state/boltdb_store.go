package state

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	dbFile = "gresult.db"
)

// sharedDB is one open BoltDB file and the number of stores using it.
type sharedDB struct {
	db   *bolt.DB
	refs int
}

var (
	dbs     = map[string]*sharedDB{}
	dbslock = sync.Mutex{}
)

func acquireBoltDB(path string, logger log.Interface) (*bolt.DB, error) {
	dbslock.Lock()
	defer dbslock.Unlock()

	if shared, exists := dbs[path]; exists {
		shared.refs++
		return shared.db, nil
	}

	db, err := openBoltDB(path)
	if err != nil {
		return nil, err
	}
	logger.WithField("path", path).Debug("opened boltdb")
	dbs[path] = &sharedDB{db: db, refs: 1}
	return db, nil
}

func releaseBoltDB(path string, logger log.Interface) error {
	dbslock.Lock()
	defer dbslock.Unlock()

	shared, exists := dbs[path]
	if !exists {
		return nil
	}
	shared.refs--
	if shared.refs > 0 {
		return nil
	}
	delete(dbs, path)
	logger.WithField("path", path).Debug("closing boltdb")
	return errors.Wrapf(shared.db.Close(), "close boltdb %s", path)
}

func openBoltDB(path string) (*bolt.DB, error) {
	bopts := &bolt.Options{}
	bopts.Timeout = time.Second

	db, err := bolt.Open(path, 0600, bopts)
	return db, errors.Wrapf(err, "open boltdb %s", path)
}

func newBoltDBKeyValueStore[K, V any](opts Options[K, V]) (KeyValueStore[K, V], error) {
	dbPath := filepath.Join(opts.Dir(), dbFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create boltdb dir")
	}
	db, err := acquireBoltDB(dbPath, opts.Logger())
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(opts.Bucket()))
		return err
	})
	if err != nil {
		_ = releaseBoltDB(dbPath, opts.Logger())
		return nil, errors.Wrapf(err, "create bucket %s", opts.Bucket())
	}

	return &boltDBKeyValueStore[K, V]{
		db:       db,
		path:     dbPath,
		bucket:   []byte(opts.Bucket()),
		keySerde: opts.KeySerde(),
		valSerde: opts.ValueSerde(),
		logger:   opts.Logger(),
	}, nil
}

type boltDBKeyValueStore[K, V any] struct {
	db       *bolt.DB
	path     string
	bucket   []byte
	keySerde Serde[K]
	valSerde Serde[V]
	logger   log.Interface
	once     sync.Once
}

var _ KeyValueStore[any, any] = &boltDBKeyValueStore[any, any]{}

func (kvs *boltDBKeyValueStore[K, V]) Get(key K) (v V, err error) {
	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return v, err
	}

	var bv []byte
	err = kvs.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(kvs.bucket)
		if raw := b.Get(keySer); raw != nil {
			// raw is only valid inside the transaction.
			bv = append([]byte{}, raw...)
		}
		return nil
	})
	if err != nil {
		return v, errors.Wrap(err, "boltdb get")
	}
	if bv == nil {
		return v, errors.Wrapf(ErrNotFound, "key %v", key)
	}
	return kvs.valSerde.Deserialize(bv)
}

func (kvs *boltDBKeyValueStore[K, V]) Put(key K, value V) error {
	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return err
	}
	valSer, err := kvs.valSerde.Serialize(value)
	if err != nil {
		return err
	}

	err = kvs.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(kvs.bucket)
		return b.Put(keySer, valSer)
	})
	return errors.Wrap(err, "boltdb put")
}

func (kvs *boltDBKeyValueStore[K, V]) Delete(key K) error {
	keySer, err := kvs.keySerde.Serialize(key)
	if err != nil {
		return err
	}

	err = kvs.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(kvs.bucket)
		return b.Delete(keySer)
	})
	return errors.Wrap(err, "boltdb delete")
}

// Range copies the bucket in one read transaction and calls fn outside of
// it, so fn may write to the same file.
func (kvs *boltDBKeyValueStore[K, V]) Range(fn func(K, V) error) error {
	var raws [][2][]byte
	err := kvs.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(kvs.bucket).ForEach(func(k, v []byte) error {
			raws = append(raws, [2][]byte{
				append([]byte{}, k...),
				append([]byte{}, v...),
			})
			return nil
		})
	})
	if err != nil {
		return errors.Wrap(err, "boltdb range")
	}

	for _, raw := range raws {
		k, err := kvs.keySerde.Deserialize(raw[0])
		if err != nil {
			return err
		}
		v, err := kvs.valSerde.Deserialize(raw[1])
		if err != nil {
			return err
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the store's reference to the shared file, closing it with
// the last store.
func (kvs *boltDBKeyValueStore[K, V]) Close() (err error) {
	kvs.once.Do(func() {
		err = releaseBoltDB(kvs.path, kvs.logger)
	})
	return
}
