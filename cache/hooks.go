package cache

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; the store calls them on hot
// paths. Keys passed in are logical (pre-prefix) keys.
type Hooks interface {
	Hit(key string)
	Miss(key string)

	// A provider failure was converted to a soft result.
	// op is one of "get", "set", "delete", "exists".
	FailOpen(op, key string)

	// A key was explicitly removed.
	Invalidation(key string)

	// A stored entry could not be decoded and was dropped.
	SelfHeal(key string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Hit(string)              {}
func (NopHooks) Miss(string)             {}
func (NopHooks) FailOpen(string, string) {}
func (NopHooks) Invalidation(string)     {}
func (NopHooks) SelfHeal(string)         {}
