package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store ("file", "redis")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovhcli_cache_hits_total",
			Help: "Total number of API response cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses (absent, expired or empty entries)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ovhcli_cache_misses_total",
			Help: "Total number of API response cache misses",
		},
	)

	// CacheSize tracks bytes written by store during this process
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ovhcli_cache_size_bytes",
			Help: "Bytes written to the API response cache by this process",
		},
		[]string{"store"},
	)

	// CacheInvalidations tracks entries removed by the proxy
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovhcli_cache_invalidations_total",
			Help: "Total number of cache entries invalidated",
		},
		[]string{"reason"}, // "mutation", "uncacheable"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovhcli_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)
