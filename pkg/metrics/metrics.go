// Package metrics exposes Prometheus collectors for outbound API traffic and
// response-cache behavior.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the library-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tenantgrid",
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight API requests.",
		},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tenantgrid",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests issued.",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tenantgrid",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "endpoint"},
	)

	apiRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tenantgrid",
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Total number of API request retries.",
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tenantgrid",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of response cache lookups.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		apiInFlight,
		apiRequests,
		apiDuration,
		apiRetries,
		cacheLookups,
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records one completed API request. A status of zero means the
// request never produced an HTTP response.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(method, endpoint, code).Inc()
	apiDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRetry records one retry attempt against an endpoint.
func RecordRetry(endpoint string) {
	apiRetries.WithLabelValues(endpoint).Inc()
}

// RequestStarted marks a request as in flight and returns a done callback.
func RequestStarted() func() {
	apiInFlight.Inc()
	return apiInFlight.Dec
}

// RecordCacheHit counts a response cache hit.
func RecordCacheHit() { cacheLookups.WithLabelValues("hit").Inc() }

// RecordCacheMiss counts a response cache miss.
func RecordCacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }
