package geolib

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	cacheResultHit   = "hit"
	cacheResultMiss  = "miss"
	cacheResultStale = "stale"
	cacheResultError = "error"
)

var (
	metricLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geolocator_lookups_total",
		Help: "The total number of lookups by variant and outcome code",
	}, []string{"variant", "outcome"})

	metricCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geolocator_cache_reads_total",
		Help: "The total number of cache reads by table and result",
	}, []string{"table", "result"})

	metricProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geolocator_provider_requests_total",
		Help: "The total number of provider requests",
	}, []string{"provider", "variant", "result"})

	metricProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geolocator_provider_duration_ms",
		Help:    "Provider request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	}, []string{"provider", "variant"})
)

func lookupOutcome(err error) string {
	if err == nil {
		return "ok"
	}

	return string(AsLookupError(err, "").Code)
}
