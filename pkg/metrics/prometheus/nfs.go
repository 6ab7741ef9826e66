package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/nfs4d/pkg/metrics"
)

// nfsMetrics is the Prometheus implementation of metrics.NFSMetrics.
type nfsMetrics struct {
	requestsTotal          *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	requestsInFlight       *prometheus.GaugeVec
	operationsTotal        *prometheus.CounterVec
	bytesTotal             *prometheus.CounterVec
	activeConnections      prometheus.Gauge
	connectionsAccepted    prometheus.Counter
	connectionsClosed      prometheus.Counter
	connectionsForceClosed prometheus.Counter
}

// NewNFSMetrics creates a new Prometheus-backed NFSMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewNFSMetrics() metrics.NFSMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopNFSMetrics()
	}

	reg := metrics.GetRegistry()

	return &nfsMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfs4d_rpc_requests_total",
				Help: "Total number of RPC calls by procedure and outcome",
			},
			[]string{"procedure", "outcome"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nfs4d_rpc_request_duration_milliseconds",
				Help: "Duration of RPC calls in milliseconds",
				Buckets: []float64{
					0.1,  // 100µs
					1,    // 1ms
					10,   // 10ms
					100,  // 100ms
					1000, // 1s
				},
			},
			[]string{"procedure"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nfs4d_rpc_requests_in_flight",
				Help: "Current number of RPC calls being processed",
			},
			[]string{"procedure"},
		),
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfs4d_compound_operations_total",
				Help: "Total number of COMPOUND operations by operation and status",
			},
			[]string{"op", "status"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfs4d_bytes_total",
				Help: "Total bytes received and sent, including record marks",
			},
			[]string{"direction"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nfs4d_connections_active",
				Help: "Current number of open client connections",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "nfs4d_connections_accepted_total",
				Help: "Total number of accepted client connections",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "nfs4d_connections_closed_total",
				Help: "Total number of closed client connections",
			},
		),
		connectionsForceClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "nfs4d_connections_force_closed_total",
				Help: "Total number of connections force-closed at shutdown",
			},
		),
	}
}

func (m *nfsMetrics) RecordRequest(procedure string, duration time.Duration, outcome string) {
	m.requestsTotal.WithLabelValues(procedure, outcome).Inc()
	m.requestDuration.WithLabelValues(procedure).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *nfsMetrics) RecordRequestStart(procedure string) {
	m.requestsInFlight.WithLabelValues(procedure).Inc()
}

func (m *nfsMetrics) RecordRequestEnd(procedure string) {
	m.requestsInFlight.WithLabelValues(procedure).Dec()
}

func (m *nfsMetrics) RecordOperation(op string, status string) {
	m.operationsTotal.WithLabelValues(op, status).Inc()
}

func (m *nfsMetrics) RecordBytes(direction string, bytes uint64) {
	m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

func (m *nfsMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *nfsMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *nfsMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

func (m *nfsMetrics) RecordConnectionForceClosed() {
	m.connectionsForceClosed.Inc()
}
