// Package codec serializes entities to and from the bytes stored in the
// cache. A decode failure is always recoverable for callers: the cache layer
// treats it as a miss and drops the offending entry.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for cache storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Names accepted by ByName.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameCBOR    = "cbor"
)

// ByName returns the codec registered under name. The set matches what the
// cache config accepts; an unknown name is a configuration error.
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case NameJSON, "":
		return JSON[V]{}, nil
	case NameMsgpack:
		return Msgpack[V]{}, nil
	case NameCBOR:
		return NewCBOR[V]()
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
