// Package metrics provides Prometheus collectors for the QR panel service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPLatencyBuckets are latency buckets for full HTTP request/response cycle.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}

// EncodeLatencyBuckets are latency buckets for PNG encodes.
var EncodeLatencyBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25}

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// EncodeTotal counts finished encodes by result ("ok" or "error").
	EncodeTotal *prometheus.CounterVec

	// EncodeDuration tracks PNG encode latency.
	EncodeDuration prometheus.Histogram

	// EncodesInFlight tracks encodes issued but not yet resolved.
	EncodesInFlight prometheus.Gauge

	// StaleImages counts encodes that resolved after a newer one and still
	// replaced the downloadable image.
	StaleImages prometheus.Counter

	// ThemeSelections counts explicit theme choices by preference.
	ThemeSelections *prometheus.CounterVec

	// HTTPRequestDuration tracks full HTTP request duration.
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		EncodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrlink_encode_total",
				Help: "Total PNG encodes by result",
			},
			[]string{"result"},
		),
		EncodeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrlink_encode_duration_seconds",
				Help:    "PNG encode latency in seconds",
				Buckets: EncodeLatencyBuckets,
			},
		),
		EncodesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "qrlink_encodes_in_flight",
				Help: "Encodes issued but not yet resolved",
			},
		),
		StaleImages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "qrlink_stale_images_total",
				Help: "Encodes that resolved out of order and replaced a fresher image",
			},
		),
		ThemeSelections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrlink_theme_selections_total",
				Help: "Explicit theme selections by preference",
			},
			[]string{"preference"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds (full request/response cycle)",
				Buckets: HTTPLatencyBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.EncodeTotal,
		m.EncodeDuration,
		m.EncodesInFlight,
		m.StaleImages,
		m.ThemeSelections,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEncode records one finished encode.
func (m *Metrics) ObserveEncode(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EncodeTotal.WithLabelValues(result).Inc()
	m.EncodeDuration.Observe(d.Seconds())
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// AddInFlight adjusts the in-flight encode gauge by delta.
func (m *Metrics) AddInFlight(delta float64) {
	if m == nil {
		return
	}
	m.EncodesInFlight.Add(delta)
}

// StaleImage counts one out-of-order image replacement.
func (m *Metrics) StaleImage() {
	if m == nil {
		return
	}
	m.StaleImages.Inc()
}

// ThemeSelected counts one explicit theme selection.
func (m *Metrics) ThemeSelected(preference string) {
	if m == nil {
		return
	}
	m.ThemeSelections.WithLabelValues(preference).Inc()
}
