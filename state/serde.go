package state

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"
)

type Serde[T any] interface {
	Serialize(T) ([]byte, error)
	Deserialize([]byte) (T, error)
}

var (
	IntSerde    Serde[int]    = &intSerde{}
	Uint64Serde Serde[uint64] = &uint64Serde{}
	StringSerde Serde[string] = &stringSerde{}
)

// JSONSerde returns the default serde, which encodes T as JSON.
func JSONSerde[T any]() Serde[T] {
	return &jsonSerde[T]{}
}

type jsonSerde[T any] struct{}

var _ Serde[any] = &jsonSerde[any]{}

func (*jsonSerde[T]) Serialize(o T) ([]byte, error) {
	res, err := json.Marshal(o)
	return res, errors.Wrap(err, "json serialize")
}

func (*jsonSerde[T]) Deserialize(b []byte) (T, error) {
	var res T
	err := json.Unmarshal(b, &res)
	return res, errors.Wrap(err, "json deserialize")
}

// intSerde flips the sign bit, so negative keys sort before positive ones.
type intSerde struct{}

const signBit = uint64(1) << 63

func (*intSerde) Serialize(i int) ([]byte, error) {
	return Uint64Serde.Serialize(uint64(i) ^ signBit)
}

func (*intSerde) Deserialize(b []byte) (int, error) {
	u, err := Uint64Serde.Deserialize(b)
	return int(u ^ signBit), err
}

// uint64Serde is big endian, so the byte order of keys is their numeric
// order.
type uint64Serde struct{}

func (*uint64Serde) Serialize(u uint64) ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, u)
	return b, nil
}

func (*uint64Serde) Deserialize(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.Errorf("uint64 deserialize: want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

type stringSerde struct{}

func (*stringSerde) Serialize(s string) ([]byte, error) {
	return []byte(s), nil
}

func (*stringSerde) Deserialize(b []byte) (string, error) {
	return string(b), nil
}
