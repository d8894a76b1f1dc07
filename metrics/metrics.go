// Package metrics defines the sandbox API's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. Each instance registers on its own registry so servers in tests don't clash.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Record metrics
	RecordOperations *prometheus.CounterVec
	UploadedBytes    prometheus.Counter
}

// New creates the collectors under prefix, e.g. "retailadmin".
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		RecordOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_record_operations_total",
				Help: "Record operations by collection and operation",
			},
			[]string{"collection", "operation"},
		),
		UploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_uploaded_bytes_total",
			Help: "Bytes received by the upload endpoint",
		}),
	}
}
