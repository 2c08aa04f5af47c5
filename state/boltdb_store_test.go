package state

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoltStore[K, V any](t *testing.T, dir, bucket string, opts ...Option[K, V]) KeyValueStore[K, V] {
	t.Helper()

	opts = append(opts, WithBoltDB[K, V](bucket), WithDirPath[K, V](dir))
	kvs, err := NewKeyValueStore(NewOptions(opts...))
	require.NoError(t, err)
	return kvs
}

func TestBoltDBKeyValueStore(t *testing.T) {
	kvs := newTestBoltStore[string, int](t, t.TempDir(), "counts")
	defer kvs.Close()

	_, err := kvs.Get("a")
	assert.True(t, IsNotFound(err))

	require.NoError(t, kvs.Put("a", 1))
	require.NoError(t, kvs.Put("a", 2))
	v, err := kvs.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	require.NoError(t, kvs.Delete("a"))
	_, err = kvs.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltDBKeyValueStoreRange(t *testing.T) {
	kvs := newTestBoltStore(t, t.TempDir(), "seq", WithKeySerde[uint64, string](Uint64Serde))
	defer kvs.Close()

	for _, k := range []uint64{300, 2, 10} {
		require.NoError(t, kvs.Put(k, "v"))
	}

	want := []entry[uint64, string]{{2, "v"}, {10, "v"}, {300, "v"}}
	if diff := cmp.Diff(want, collect[uint64, string](t, kvs)); diff != "" {
		t.Errorf("Range() mismatch (-want +got):\n%s", diff)
	}

	stop := errors.New("stop")
	calls := 0
	err := kvs.Range(func(uint64, string) error {
		calls++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, calls)
}

func TestBoltDBKeyValueStoreRangeWrites(t *testing.T) {
	kvs := newTestBoltStore(t, t.TempDir(), "ints", WithKeySerde[int, int](IntSerde))
	defer kvs.Close()

	require.NoError(t, kvs.Put(1, 1))
	require.NoError(t, kvs.Put(2, 2))

	err := kvs.Range(func(k, v int) error {
		return kvs.Put(k+10, v)
	})
	require.NoError(t, err)
	assert.Len(t, collect[int, int](t, kvs), 4)
}

func refs(path string) int {
	dbslock.Lock()
	defer dbslock.Unlock()

	if shared, ok := dbs[path]; ok {
		return shared.refs
	}
	return 0
}

func TestBoltDBSharesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, dbFile)

	first := newTestBoltStore[string, int](t, dir, "first")
	second := newTestBoltStore[string, int](t, dir, "second")
	assert.Equal(t, 2, refs(path))

	require.NoError(t, first.Put("a", 1))
	_, err := second.Get("a")
	assert.True(t, IsNotFound(err), "buckets are separate")

	require.NoError(t, first.Close())
	require.NoError(t, first.Close())
	assert.Equal(t, 1, refs(path))

	reopened := newTestBoltStore[string, int](t, dir, "first")
	v, err := reopened.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, refs(path))

	require.NoError(t, second.Close())
	require.NoError(t, reopened.Close())
	assert.Equal(t, 0, refs(path))
}

func TestBoltDBNeedsBucket(t *testing.T) {
	_, err := NewKeyValueStore(NewOptions(
		WithBoltDB[string, int](""),
		WithDirPath[string, int](t.TempDir()),
	))
	assert.Error(t, err)
}

func TestBoltDBClear(t *testing.T) {
	dir := t.TempDir()
	kvs := newTestBoltStore(t, dir, "run", WithKeySerde[uint64, int](Uint64Serde))
	defer kvs.Close()

	for k := uint64(0); k < 5; k++ {
		require.NoError(t, kvs.Put(k, int(k)))
	}
	require.NoError(t, Clear(kvs))
	assert.Empty(t, collect[uint64, int](t, kvs))

	// a shorter second run leaves nothing from the first one
	require.NoError(t, kvs.Put(0, 10))
	want := []entry[uint64, int]{{0, 10}}
	if diff := cmp.Diff(want, collect[uint64, int](t, kvs)); diff != "" {
		t.Errorf("Range() mismatch (-want +got):\n%s", diff)
	}
}
