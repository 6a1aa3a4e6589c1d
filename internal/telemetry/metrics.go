package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. It implements transsmart.Recorder.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LoginsTotal     *prometheus.CounterVec
	LoginDuration   prometheus.Histogram
}

// NewMetrics creates metrics and registers them on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transsmart_requests_total",
				Help: "Total number of Transsmart API requests by operation, method, and status",
			},
			[]string{"operation", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transsmart_request_duration_seconds",
				Help:    "Transsmart API request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transsmart_logins_total",
				Help: "Total number of Transsmart logins by outcome",
			},
			[]string{"status"},
		),
		LoginDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transsmart_login_duration_seconds",
				Help:    "Transsmart login duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordRequest records an upstream request.
func (m *Metrics) RecordRequest(operation, method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(operation, method, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLogin records a login exchange.
func (m *Metrics) RecordLogin(status string, duration time.Duration) {
	m.LoginsTotal.WithLabelValues(status).Inc()
	m.LoginDuration.Observe(duration.Seconds())
}
