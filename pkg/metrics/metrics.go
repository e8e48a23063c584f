// Package metrics exposes Prometheus metrics for outbound Dradis API
// traffic. It uses a private registry so the process never leaks Go
// runtime collectors it did not ask for into scrapes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts and times Dradis API round-trips.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	networkErrors   *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dradis_mcp",
			Name:      "api_requests_total",
			Help:      "Dradis API requests by resource, method and HTTP status code.",
		}, []string{"resource", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dradis_mcp",
			Name:      "api_request_duration_seconds",
			Help:      "Dradis API request latency by resource and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		networkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dradis_mcp",
			Name:      "api_network_errors_total",
			Help:      "Requests that never produced an HTTP response.",
		}, []string{"resource", "method"}),
	}

	registry.MustRegister(r.requestsTotal, r.requestDuration, r.networkErrors)
	return r
}

// ObserveRequest records a completed round-trip. A zero status code means
// the request failed before any HTTP response arrived.
func (r *Recorder) ObserveRequest(resource, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if status == 0 {
		r.networkErrors.WithLabelValues(resource, method).Inc()
	} else {
		r.requestsTotal.WithLabelValues(resource, method, strconv.Itoa(status)).Inc()
	}
	r.requestDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// Handler returns the /metrics scrape handler for this recorder.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Gatherer exposes the underlying registry for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }
