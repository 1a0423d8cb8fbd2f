package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	Resolutions        *prometheus.CounterVec
	Extractions        *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram

	// Repository metrics
	StoreOperations *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Daily game resolutions by outcome",
			},
			[]string{"outcome"},
		),
		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Live page extraction attempts by result",
			},
			[]string{"result"},
		),
		ExtractionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "Wall time of a full extraction attempt",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
			},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Content store operations by outcome",
			},
			[]string{"operation", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Resolutions,
		c.Extractions,
		c.ExtractionDuration,
		c.StoreOperations,
	)

	return c
}

// Registry exposes the underlying registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTP records one served request
func (c *Collector) RecordHTTP(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordResolution counts a resolver outcome
func (c *Collector) RecordResolution(outcome string) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(outcome).Inc()
}

// RecordExtraction counts an extraction attempt and its duration
func (c *Collector) RecordExtraction(ok bool, d time.Duration) {
	if c == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	c.Extractions.WithLabelValues(result).Inc()
	c.ExtractionDuration.Observe(d.Seconds())
}

// RecordStoreOperation counts a store call
func (c *Collector) RecordStoreOperation(operation, status string) {
	if c == nil {
		return
	}
	c.StoreOperations.WithLabelValues(operation, status).Inc()
}
