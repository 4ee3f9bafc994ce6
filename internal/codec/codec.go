// Package codec serializes cached values.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Supported codec names.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameCBOR    = "cbor"
)

// New returns the codec registered under name.
func New[V any](name string) (Codec[V], error) {
	switch name {
	case NameJSON, "":
		return JSON[V]{}, nil
	case NameMsgpack:
		return Msgpack[V]{}, nil
	case NameCBOR:
		return NewCBOR[V]()
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSON encodes values with encoding/json. The zero value is ready to use.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Msgpack encodes values with vmihailenco/msgpack. The zero value is ready to use.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

// CBOR encodes values with fxamacker/cbor. Construct with NewCBOR.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR builds a CBOR codec that decodes untyped maps as map[string]any,
// so decoded documents stay JSON-encodable.
func NewCBOR[V any]() (CBOR[V], error) {
	em, err := cbor.PreferredUnsortedEncOptions().EncMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("cbor enc mode: %w", err)
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("cbor dec mode: %w", err)
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
