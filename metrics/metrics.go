// Package metrics exposes cache observability as Prometheus counters behind
// the cache.Hooks interface. The composition root registers one instance and
// passes it into cache.Options.Hooks.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oinconquistado/omni-sub001/cache"
)

// CacheMetrics implements cache.Hooks. Counters are labeled by the entity
// segment of the logical key (account, session, item, stock).
type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	FailOpens     *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	SelfHeals     *prometheus.CounterVec
}

var _ cache.Hooks = (*CacheMetrics)(nil)

// New creates and registers the counters on the default registerer.
func New() *CacheMetrics {
	return &CacheMetrics{
		Hits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"entity"},
		),
		Misses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"entity"},
		),
		FailOpens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_fail_open_total",
				Help: "Total number of provider failures absorbed as soft results",
			},
			[]string{"op", "entity"},
		),
		Invalidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_invalidations_total",
				Help: "Total number of explicit key invalidations",
			},
			[]string{"entity"},
		),
		SelfHeals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_self_heals_total",
				Help: "Total number of undecodable entries dropped on read",
			},
			[]string{"entity"},
		),
	}
}

func (m *CacheMetrics) Hit(key string)  { m.Hits.WithLabelValues(entityOf(key)).Inc() }
func (m *CacheMetrics) Miss(key string) { m.Misses.WithLabelValues(entityOf(key)).Inc() }

func (m *CacheMetrics) FailOpen(op, key string) {
	m.FailOpens.WithLabelValues(op, entityOf(key)).Inc()
}

func (m *CacheMetrics) Invalidation(key string) {
	m.Invalidations.WithLabelValues(entityOf(key)).Inc()
}

func (m *CacheMetrics) SelfHeal(key string) {
	m.SelfHeals.WithLabelValues(entityOf(key)).Inc()
}

// entityOf extracts the leading key segment ("account:..." -> "account").
func entityOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
