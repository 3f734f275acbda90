// Package cache implements the fail-open key-value layer between the service
// and a TTL-capable byte provider. Every provider failure is converted to a
// soft result at this layer (absent for reads, false for writes/deletes) so a
// cache outage can degrade performance but never correctness; the relational
// store stays the fallback of record.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/oinconquistado/omni-sub001/logging"
	"github.com/oinconquistado/omni-sub001/provider"
)

const defaultTTL = 10 * time.Minute

// Store wraps a provider with a key-prefix namespace, a per-operation command
// timeout, and fail-open error handling.
type Store struct {
	prefix     string
	provider   provider.Provider
	log        logging.Logger
	hooks      Hooks
	cmdTimeout time.Duration
	defaultTTL time.Duration
	enabled    bool
}

// Options tune the Store. Only Provider is required.
type Options struct {
	Provider provider.Provider

	// Prefix namespaces every key; distinct deployments sharing one cluster
	// must use distinct prefixes.
	Prefix string

	Logger logging.Logger
	Hooks  Hooks

	// CommandTimeout bounds each provider call independently of the caller's
	// context. 0 disables the extra bound. A timed-out read is a miss.
	CommandTimeout time.Duration

	DefaultTTL time.Duration // 0 => 10m
	Disabled   bool          // a disabled store misses every read and drops every write
}

func NewStore(opts Options) (*Store, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("cache: provider is required")
	}
	s := &Store{
		prefix:     opts.Prefix,
		provider:   opts.Provider,
		log:        logging.OrNop(opts.Logger),
		cmdTimeout: opts.CommandTimeout,
		enabled:    !opts.Disabled,
	}
	s.hooks = opts.Hooks
	if s.hooks == nil {
		s.hooks = NopHooks{}
	}
	s.defaultTTL = opts.DefaultTTL
	if s.defaultTTL == 0 {
		s.defaultTTL = defaultTTL
	}
	return s, nil
}

// DefaultTTL is the TTL applied when callers pass 0.
func (s *Store) DefaultTTL() time.Duration { return s.defaultTTL }

// Get returns the stored bytes, or ok=false when the key is absent, expired,
// or the provider failed.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.enabled {
		return nil, false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	k := s.storageKey(key)
	b, ok, err := s.provider.Get(ctx, k)
	if err != nil {
		s.failOpen("get", key, err)
		return nil, false
	}
	if !ok {
		s.hooks.Miss(key)
		return nil, false
	}
	s.hooks.Hit(key)
	return b, true
}

// Set stores value under key, (re)starting the TTL window from now. ttl=0
// applies the store default. Reports false when the write did not land.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if !s.enabled {
		return false
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	k := s.storageKey(key)
	ok, err := s.provider.Set(ctx, k, value, int64(len(value)), ttl)
	if err != nil {
		s.failOpen("set", key, err)
		return false
	}
	if !ok {
		s.log.Debug("cache set rejected by provider", logging.Fields{"key": key})
	}
	return ok
}

// Delete removes key. Removing an absent key is not an error and reports
// false; so does a provider failure.
func (s *Store) Delete(ctx context.Context, key string) bool {
	if !s.enabled {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	removed, err := s.provider.Del(ctx, s.storageKey(key))
	if err != nil {
		s.failOpen("delete", key, err)
		return false
	}
	if removed {
		s.hooks.Invalidation(key)
	}
	return removed
}

// Exists reports whether key holds a live entry.
func (s *Store) Exists(ctx context.Context, key string) bool {
	if !s.enabled {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ok, err := s.provider.Exists(ctx, s.storageKey(key))
	if err != nil {
		s.failOpen("exists", key, err)
		return false
	}
	return ok
}

// Flush clears the store's namespace. Operator tooling only; unlike the
// request-path operations it reports the provider error.
func (s *Store) Flush(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.provider.Flush(ctx)
}

// Close releases the underlying provider.
func (s *Store) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

func (s *Store) storageKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cmdTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cmdTimeout)
}

func (s *Store) failOpen(op, key string, err error) {
	s.hooks.FailOpen(op, key)
	s.log.Warn("cache "+op+" failed open", logging.Fields{"key": key, "err": err})
}
