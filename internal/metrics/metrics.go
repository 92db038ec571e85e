// Package metrics exposes Prometheus collectors for the curator service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction outcomes recorded per field.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

var (
	extractionsTotal            *prometheus.CounterVec
	proxyRequestsTotal          *prometheus.CounterVec
	proxyRequestDurationSeconds prometheus.Histogram
	headlessPromotionsTotal     prometheus.Counter
	persistenceFailuresTotal    *prometheus.CounterVec
	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDurationSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curator_extractions_total",
				Help: "Field extractions, labeled by field, marketplace, and outcome.",
			},
			[]string{"field", "marketplace", "outcome"},
		)

		proxyRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curator_proxy_requests_total",
				Help: "Read-through proxy fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		proxyRequestDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "curator_proxy_request_duration_seconds",
				Help:    "Latency of read-through proxy fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
		)

		headlessPromotionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "curator_headless_promotions_total",
				Help: "Pages re-fetched with the headless renderer.",
			},
		)

		persistenceFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curator_persistence_failures_total",
				Help: "Persistence calls that fell back to local-only mutation.",
			},
			[]string{"operation"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests served, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// ObserveExtraction records a completed field extraction.
func ObserveExtraction(field, marketplace, outcome string) {
	if extractionsTotal == nil {
		return
	}
	extractionsTotal.WithLabelValues(field, marketplace, outcome).Inc()
}

// ObserveProxyRequest records a proxy fetch and its latency.
func ObserveProxyRequest(outcome string, d time.Duration) {
	if proxyRequestsTotal == nil {
		return
	}
	proxyRequestsTotal.WithLabelValues(outcome).Inc()
	proxyRequestDurationSeconds.Observe(d.Seconds())
}

// IncHeadlessPromotion counts a headless re-fetch.
func IncHeadlessPromotion() {
	if headlessPromotionsTotal == nil {
		return
	}
	headlessPromotionsTotal.Inc()
}

// IncPersistenceFailure counts a persistence call that degraded to a
// local-only mutation.
func IncPersistenceFailure(operation string) {
	if persistenceFailuresTotal == nil {
		return
	}
	persistenceFailuresTotal.WithLabelValues(operation).Inc()
}

// ObserveHTTPRequest records a served HTTP request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
