package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by keyspace (products, token)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashback_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"keyspace"},
	)

	// CacheMisses tracks cache misses by keyspace
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashback_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"keyspace"},
	)

	// CacheWrites tracks successful writes by keyspace
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashback_cache_writes_total",
			Help: "Total number of successful cache writes",
		},
		[]string{"keyspace"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashback_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "ping"
	)
)
