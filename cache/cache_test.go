package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oinconquistado/omni-sub001/codec"
	"github.com/oinconquistado/omni-sub001/provider/memory"
)

type badProvider struct{ err error }

func (p badProvider) Get(context.Context, string) ([]byte, bool, error) { return nil, false, p.err }
func (p badProvider) Set(context.Context, string, []byte, int64, time.Duration) (bool, error) {
	return false, p.err
}
func (p badProvider) Del(context.Context, string) (bool, error)    { return false, p.err }
func (p badProvider) Exists(context.Context, string) (bool, error) { return false, p.err }
func (p badProvider) Flush(context.Context) error                  { return p.err }
func (p badProvider) Close(context.Context) error                  { return nil }

type entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Provider == nil {
		opts.Provider = memory.New()
	}
	s, err := NewStore(opts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{Prefix: "p"})

	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("empty store should miss")
	}
	if !s.Set(ctx, "k", []byte("v"), 0) {
		t.Fatalf("Set failed")
	}
	if !s.Exists(ctx, "k") {
		t.Fatalf("Exists false after set")
	}
	got, ok := s.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get: ok=%v val=%q", ok, got)
	}
	if !s.Delete(ctx, "k") {
		t.Fatalf("Delete missed an existing key")
	}
	if s.Delete(ctx, "k") {
		t.Fatalf("deleting an absent key should report false")
	}
}

func TestTTLExpiryBehavesAsAbsent(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := newTestStore(t, Options{Provider: mem})

	s.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("entry outlived its TTL")
	}
	if s.Exists(ctx, "k") {
		t.Fatalf("Exists true past TTL")
	}
}

func TestSetResetsTTLWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	s.Set(ctx, "k", []byte("v1"), 30*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Set(ctx, "k", []byte("v2"), 30*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// 40ms after the first write, but only 20ms after the second
	got, ok := s.Get(ctx, "k")
	if !ok || string(got) != "v2" {
		t.Fatalf("rewrite did not restart the TTL window: ok=%v val=%q", ok, got)
	}
}

func TestFailOpenOnProviderErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{Provider: badProvider{err: errors.New("boom")}})

	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("Get must fail open to a miss")
	}
	if s.Set(ctx, "k", []byte("v"), 0) {
		t.Fatalf("Set must fail open to false")
	}
	if s.Delete(ctx, "k") {
		t.Fatalf("Delete must fail open to false")
	}
	if s.Exists(ctx, "k") {
		t.Fatalf("Exists must fail open to false")
	}
	// Flush is operator tooling; it surfaces the error
	if err := s.Flush(ctx); err == nil {
		t.Fatalf("Flush should report the provider error")
	}
}

func TestDisabledStoreMissesEverything(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := newTestStore(t, Options{Provider: mem, Disabled: true})

	if s.Set(ctx, "k", []byte("v"), 0) {
		t.Fatalf("disabled store accepted a write")
	}
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("disabled store returned a hit")
	}
	if mem.Len() != 0 {
		t.Fatalf("disabled store wrote to the provider")
	}
}

func TestPrefixIsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s1 := newTestStore(t, Options{Provider: mem, Prefix: "a"})
	s2 := newTestStore(t, Options{Provider: mem, Prefix: "b"})

	s1.Set(ctx, "k", []byte("one"), 0)
	if _, ok := s2.Get(ctx, "k"); ok {
		t.Fatalf("prefixes do not isolate namespaces")
	}
}

func TestTypedSelfHealOnCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := newTestStore(t, Options{Provider: mem, Prefix: "p"})
	tc := NewTyped[entity](s, codec.JSON[entity]{})

	// inject bytes no codec can decode
	if ok, err := mem.Set(ctx, "p:bad", []byte("{not json"), 1, time.Minute); err != nil || !ok {
		t.Fatalf("inject: ok=%v err=%v", ok, err)
	}
	if _, ok := tc.Get(ctx, "bad"); ok {
		t.Fatalf("corrupt entry decoded")
	}
	// corrupt entry was dropped
	if _, ok, _ := mem.Get(ctx, "p:bad"); ok {
		t.Fatalf("corrupt entry was not self-healed")
	}
}

func TestTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})
	tc := NewTyped[entity](s, codec.JSON[entity]{})

	v := entity{ID: "1", Name: "Ada"}
	if !tc.Set(ctx, "e:1", v, 0) {
		t.Fatalf("Set failed")
	}
	got, ok := tc.Get(ctx, "e:1")
	if !ok || got != v {
		t.Fatalf("Get: ok=%v got=%+v", ok, got)
	}
	tc.Delete(ctx, "e:1")
	if _, ok := tc.Get(ctx, "e:1"); ok {
		t.Fatalf("deleted entry still readable")
	}
}

// countingHooks records events for assertions.
type countingHooks struct {
	hits, misses, failOpens, invalidations, selfHeals int
}

func (h *countingHooks) Hit(string)              { h.hits++ }
func (h *countingHooks) Miss(string)             { h.misses++ }
func (h *countingHooks) FailOpen(string, string) { h.failOpens++ }
func (h *countingHooks) Invalidation(string)     { h.invalidations++ }
func (h *countingHooks) SelfHeal(string)         { h.selfHeals++ }

func TestHooksFire(t *testing.T) {
	ctx := context.Background()
	h := &countingHooks{}
	s := newTestStore(t, Options{Hooks: h})

	s.Get(ctx, "k") // miss
	s.Set(ctx, "k", []byte("v"), 0)
	s.Get(ctx, "k") // hit
	s.Delete(ctx, "k")

	if h.misses != 1 || h.hits != 1 || h.invalidations != 1 {
		t.Fatalf("hook counts: %+v", *h)
	}

	bad := newTestStore(t, Options{Provider: badProvider{err: errors.New("x")}, Hooks: h})
	bad.Get(ctx, "k")
	if h.failOpens != 1 {
		t.Fatalf("fail-open hook did not fire: %+v", *h)
	}
}
