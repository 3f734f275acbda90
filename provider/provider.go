// Package provider defines the byte-store abstraction under the cache layer.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for the same key (no prepended metadata,
// no re-encoding). If a store performs internal transforms they must be fully
// reversed before Get returns.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote errors are returned as (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL, resetting any existing TTL window.
	// May ignore cost if unsupported. Returns ok=false when the store rejected
	// the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key; removing a missing key is not an error and reports
	// removed=false.
	Del(ctx context.Context, key string) (removed bool, err error)

	// Exists reports whether the key currently holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// Flush clears every key in the store's namespace. Operator tooling only.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
