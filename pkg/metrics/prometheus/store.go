package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	storeerrors "github.com/marmos91/nfs4d/pkg/metadata/errors"
	"github.com/marmos91/nfs4d/pkg/metrics"
)

// storeMetrics is the Prometheus implementation of metrics.StoreMetrics.
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	entries           *prometheus.GaugeVec
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() metrics.StoreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfs4d_store_operations_total",
				Help: "Total number of metadata store calls by backend, operation and result",
			},
			[]string{"backend", "operation", "result"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nfs4d_store_operation_duration_seconds",
				Help:    "Duration of metadata store calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs .. ~2.6s
			},
			[]string{"backend", "operation"},
		),
		entries: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nfs4d_store_entries",
				Help: "Number of attribute records held by the metadata store",
			},
			[]string{"backend"},
		),
	}
}

// RecordStoreOperation records one store call. The result label is "ok" or
// the store error code name.
func (m *storeMetrics) RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(backend, operation, resultLabel(err)).Inc()
	m.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetEntries updates the record count gauge.
func (m *storeMetrics) SetEntries(backend string, count int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(backend).Set(float64(count))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := storeerrors.CodeOf(err); code != 0 {
		return code.String()
	}
	return "error"
}
