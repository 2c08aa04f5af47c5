package gresult

import (
	"context"
	"errors"
	"testing"

	"github.com/KumKeeHyun/gresult/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	s := Sequence(Of("a", "b", "c"))

	res, err := Collect(context.Background(), s)
	require.NoError(t, err)
	want := []KeyValue[uint64, string]{
		{Key: 0, Value: "a"},
		{Key: 1, Value: "b"},
		{Key: 2, Value: "c"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}

	// a new subscription numbers from 0 again
	res, err = Collect(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res[0].Key)
}

func TestRecord(t *testing.T) {
	kvs, err := state.NewKeyValueStore(state.NewOptions[string, int]())
	require.NoError(t, err)
	defer kvs.Close()

	s := Record(Of(
		NewKeyValue("a", 1),
		NewKeyValue("b", 2),
		NewKeyValue("a", 3),
	), kvs)

	res, err := Collect(context.Background(), s)
	require.NoError(t, err)
	want := []KeyValue[string, Change[int]]{
		{Key: "a", Value: NewChange(0, 1)},
		{Key: "b", Value: NewChange(0, 2)},
		{Key: "a", Value: NewChange(1, 3)},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Record() mismatch (-want +got):\n%s", diff)
	}

	v, err := kvs.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestRecordStoreFailure(t *testing.T) {
	mockErr := errors.New("mock error")
	kvs := &mockKvstore{store: map[int]int{}, putErr: mockErr}

	r := record(Record[int, int](Of(NewKeyValue(1, 1), NewKeyValue(2, 2)), kvs))
	assert.Empty(t, r.values)
	assert.Equal(t, []error{mockErr}, r.errs)
}

// sequenceResults records a Result stream keyed by its sequence and
// replays it from the store.
func sequenceResults(t *testing.T, kvs state.KeyValueStore[uint64, Result[int]]) []KeyValue[uint64, Result[int]] {
	t.Helper()

	captured := CaptureMap(Of(0, 1, 2, 3, 4, 5), failOnMultiplesOf3)
	_, err := Collect(context.Background(), Record(Sequence(captured), kvs))
	require.NoError(t, err)

	res, err := Collect(context.Background(), FromStore[uint64, Result[int]](kvs))
	require.NoError(t, err)
	return res
}

func assertJointOrder(t *testing.T, res []KeyValue[uint64, Result[int]]) {
	t.Helper()

	require.Len(t, res, 6)
	for i, kv := range res {
		assert.Equal(t, uint64(i), kv.Key)
		assert.Equal(t, i%3 == 0, kv.Value.IsFailure(), "item %d", i)
		if kv.Value.IsSuccess() {
			assert.Equal(t, i, kv.Value.Value())
		}
	}
}

func TestFromStoreInMemory(t *testing.T) {
	kvs, err := state.NewKeyValueStore(state.NewOptions(
		state.WithKeySerde[uint64, Result[int]](state.Uint64Serde),
	))
	require.NoError(t, err)
	defer kvs.Close()

	res := sequenceResults(t, kvs)
	assertJointOrder(t, res)
	assert.Same(t, errDivisible, errors.Unwrap(res[0].Value.Err()))
}

func TestFromStoreBoltDB(t *testing.T) {
	kvs, err := state.NewKeyValueStore(state.NewOptions(
		state.WithKeySerde[uint64, Result[int]](state.Uint64Serde),
		state.WithBoltDB[uint64, Result[int]]("results"),
		state.WithDirPath[uint64, Result[int]](t.TempDir()),
	))
	require.NoError(t, err)
	defer kvs.Close()

	res := sequenceResults(t, kvs)
	assertJointOrder(t, res)

	// failures come back as their message
	var me *MarshaledError
	require.ErrorAs(t, res[0].Value.Err(), &me)
	assert.Equal(t, "0: divisible by 3", me.Message)
}

func TestFromStoreCancelled(t *testing.T) {
	kvs, err := state.NewKeyValueStore(state.NewOptions[string, int]())
	require.NoError(t, err)
	require.NoError(t, kvs.Put("a", 1))
	require.NoError(t, kvs.Put("b", 2))

	ctx, cancel := context.WithCancel(context.Background())
	var keys []string
	err = Foreach(ctx, FromStore[string, int](kvs), func(_ context.Context, kv KeyValue[string, int]) {
		keys = append(keys, kv.Key)
		cancel()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, keys)
}
