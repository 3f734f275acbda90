package cache

import (
	"context"
	"time"

	"github.com/oinconquistado/omni-sub001/codec"
	"github.com/oinconquistado/omni-sub001/logging"
)

// Typed is a typed view over a Store: one value type, one codec. Several
// Typed views share the same Store (and namespace), one per entity family.
//
// Serialization failures never surface: an entry that fails to decode is
// deleted and read as a miss, and a value that fails to encode is logged and
// not stored.
type Typed[V any] struct {
	store *Store
	codec codec.Codec[V]
}

func NewTyped[V any](store *Store, c codec.Codec[V]) Typed[V] {
	return Typed[V]{store: store, codec: c}
}

// Get returns the cached value, or ok=false on absence, expiry, provider
// failure, or an undecodable entry (which is dropped).
func (t Typed[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, ok := t.store.Get(ctx, key)
	if !ok {
		return zero, false
	}
	v, err := t.codec.Decode(raw)
	if err != nil {
		// self-heal corrupt entry
		t.store.hooks.SelfHeal(key)
		t.store.log.Warn("cache entry undecodable, dropping", logging.Fields{"key": key, "err": err})
		_ = t.store.Delete(ctx, key)
		return zero, false
	}
	return v, true
}

// Set encodes and stores value. ttl=0 applies the store default.
func (t Typed[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) bool {
	raw, err := t.codec.Encode(value)
	if err != nil {
		t.store.log.Error("cache value unencodable, skipping set", logging.Fields{"key": key, "err": err})
		return false
	}
	return t.store.Set(ctx, key, raw, ttl)
}

// Delete removes key.
func (t Typed[V]) Delete(ctx context.Context, key string) bool {
	return t.store.Delete(ctx, key)
}
