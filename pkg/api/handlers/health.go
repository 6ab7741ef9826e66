// Package handlers implements the HTTP endpoints of the nfs4d API server.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

const storeCheckTimeout = 5 * time.Second

// ConnectionCounter reports how many NFS connections are being served.
type ConnectionCounter interface {
	GetActiveConnections() int32
}

// HealthHandler serves liveness, readiness and backend stats.
type HealthHandler struct {
	store metadata.MetadataStore
	conns ConnectionCounter
}

// NewHealthHandler creates a new health handler. Either argument may be nil;
// readiness and stats then report the store as unavailable.
func NewHealthHandler(store metadata.MetadataStore, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{store: store, conns: conns}
}

// Liveness handles GET /health. It succeeds whenever the process answers HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "nfs4d",
	}))
}

// ReadinessInfo is the payload of a successful readiness probe.
type ReadinessInfo struct {
	Backend           string `json:"backend"`
	Latency           string `json:"latency"`
	ActiveConnections int32  `json:"active_connections"`
}

// Readiness handles GET /health/ready. It runs the store healthcheck and
// answers 503 when it fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("metadata store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.store.Healthcheck(ctx); err != nil {
		logger.Warn("Readiness check failed", logger.Err(err))
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	info := ReadinessInfo{Latency: time.Since(start).String()}
	if stats, err := h.store.Stats(ctx); err == nil {
		info.Backend = stats.Backend
	}
	if h.conns != nil {
		info.ActiveConnections = h.conns.GetActiveConnections()
	}
	writeJSON(w, http.StatusOK, healthyResponse(info))
}

// Stats handles GET /stats with the store's summary counters.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("metadata store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeCheckTimeout)
	defer cancel()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		logger.Error("Failed to collect store stats", logger.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(stats))
}
