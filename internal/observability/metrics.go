// Package observability exposes Prometheus metrics for the HTTP surface and
// the acquisition layer.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	scrapesTotal    *prometheus.CounterVec
	providerResults *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkforge_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkforge_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	scrapes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkforge_scrapes_total",
		Help: "Page acquisitions by source domain and fetch outcome.",
	}, []string{"source", "outcome"})
	providerResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkforge_provider_results_total",
		Help: "Products returned per affiliate provider search.",
	}, []string{"provider"})
	registry.MustRegister(requests, duration, scrapes, providerResults)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		scrapesTotal:    scrapes,
		providerResults: providerResults,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveScrape implements the acquisition observer for page fetches.
func (m *Metrics) ObserveScrape(source, outcome string) {
	if m == nil {
		return
	}
	m.scrapesTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveProviderSearch implements the acquisition observer for provider
// fan-out results.
func (m *Metrics) ObserveProviderSearch(provider string, count int) {
	if m == nil {
		return
	}
	m.providerResults.WithLabelValues(provider).Add(float64(count))
}

// Middleware records request counts and latencies using the chi route
// pattern as the label, keeping cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
