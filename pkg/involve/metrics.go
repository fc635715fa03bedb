package involve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashback_token_requests_total",
		Help: "Total upstream token requests by outcome",
	}, []string{"outcome"})

	pageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashback_page_fetches_total",
		Help: "Total product page fetches by outcome",
	}, []string{"outcome"}) // "success", "http_error", "invalid", "missing"

	pageListingsFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cashback_page_listings",
		Help:    "Number of listings per successfully fetched page",
		Buckets: []float64{0, 1, 10, 25, 50, 100, 250},
	})
)
