package config

import (
	"github.com/marmos91/nfs4d/pkg/metrics"
	promMetrics "github.com/marmos91/nfs4d/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// NFSMetrics is the collector for the NFS adapter (never nil)
	NFSMetrics metrics.NFSMetrics

	// StoreMetrics is the collector for the metadata store (nil if disabled)
	StoreMetrics metrics.StoreMetrics
}

// InitializeMetrics initializes the global registry and the Prometheus
// collectors when metrics are enabled, and no-op collectors otherwise.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			NFSMetrics: metrics.NewNoopNFSMetrics(),
		}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server:       metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port}),
		NFSMetrics:   promMetrics.NewNFSMetrics(),
		StoreMetrics: promMetrics.NewStoreMetrics(),
	}
}
