package korm

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/IgniparousTempest/korm/internal/coder"
)

// SQLite storage types for use with [RegisterCoder].
const (
	Integer = coder.Integer
	Real    = coder.Real
	Text    = coder.Text
	Blob    = coder.Blob
)

// RegisterCoder teaches korm to store values of type T in columns of
// storageType. encode turns a value into one the sqlite3 driver accepts
// (int64, float64, string, []byte or bool); decode does the reverse and is
// never called with NULL. Coders are process wide and a later registration
// for the same type replaces an earlier one, including for the built-in
// types.
func RegisterCoder[T any](storageType string, encode func(T) (any, error), decode func(src any) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	coder.Default().Register(t, storageType,
		func(v reflect.Value) (any, error) {
			return encode(v.Interface().(T))
		},
		func(src any) (reflect.Value, error) {
			decoded, err := decode(src)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&decoded).Elem(), nil
		})
}

// RegisterMsgpackCoder stores values of type T as msgpack encoded BLOBs.
func RegisterMsgpackCoder[T any]() {
	RegisterCoder[T](Blob, encodeMsgpack[T], decodeMsgpack[T])
}

func encodeMsgpack[T any](v T) (any, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T using msgpack: %w", v, err)
	}
	return buf.Bytes(), nil
}

func decodeMsgpack[T any](src any) (T, error) {
	var v T
	var b []byte
	switch src := src.(type) {
	case []byte:
		b = src
	case string:
		b = []byte(src)
	default:
		return v, fmt.Errorf("cannot decode %T as msgpack", src)
	}
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("cannot decode msgpack into %T: %w", v, err)
	}
	return v, nil
}
