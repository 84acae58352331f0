// Package observability holds the Prometheus collectors for the gateway.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream failure kinds.
const (
	FailureStatus    = "status"
	FailureTransport = "transport"
	FailureRead      = "read"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream", "outcome"},
	)

	upstreamFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_failures_total",
			Help: "Failed upstream calls by kind and upstream status code.",
		},
		[]string{"upstream", "kind", "code"},
	)

	upstreamResponseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_response_bytes",
			Help:    "Size of successful upstream response bodies.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
		},
		[]string{"upstream"},
	)
)

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		upstreamLatencySeconds,
		upstreamFailuresTotal,
		upstreamResponseBytes,
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream, outcome string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream, outcome).Observe(durationSeconds)
}

// IncUpstreamFailure counts a failed call; code is 0 when no response was received.
func IncUpstreamFailure(upstream, kind string, code int) {
	c := "none"
	if code > 0 {
		c = strconv.Itoa(code)
	}
	upstreamFailuresTotal.WithLabelValues(upstream, kind, c).Inc()
}

func ObserveUpstreamBytes(upstream string, n int) {
	upstreamResponseBytes.WithLabelValues(upstream).Observe(float64(n))
}
