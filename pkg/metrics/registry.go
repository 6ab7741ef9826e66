// Package metrics provides Prometheus metrics collection for nfs4d components.
//
// All metrics are optional. If the registry is never initialized, components
// use no-op implementations, so the server runs the same with or without
// collection enabled.
//
// Usage:
//
//	// Initialize global registry (typically in the start command)
//	metrics.InitRegistry()
//
//	// Create metrics instances for components
//	nfsMetrics := prometheus.NewNFSMetrics()
//	storeMetrics := prometheus.NewStoreMetrics()
//
//	// Or use nil for no-op behavior
//	adapter := nfs.New(config, handler, nil)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all nfs4d metrics.
	// Written once under registryOnce, read many times.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// This must be called before creating any metrics instances. It's safe to
// call multiple times; subsequent calls are ignored.
//
// The registry also carries the standard Go runtime and process collectors.
func InitRegistry() {
	registryOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
		registry = reg
	})
}

// GetRegistry returns the global Prometheus registry, or nil if
// InitRegistry has not been called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}
