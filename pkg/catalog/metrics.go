package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashback_catalog_responses_total",
		Help: "Total product query responses by source",
	}, []string{"source"}) // "cache", "api", "error"

	catalogTokenRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashback_catalog_token_refreshes_total",
		Help: "Total number of cache misses that had to request a fresh upstream token",
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cashback_http_request_duration_seconds",
		Help:    "Inbound HTTP request duration in seconds by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
