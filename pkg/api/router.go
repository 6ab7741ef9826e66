package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/pkg/api/handlers"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

// NewRouter builds the API handler.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe (store healthcheck)
//   - GET /stats - Metadata store counters
func NewRouter(store metadata.MetadataStore, conns handlers.ConnectionCounter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	health := handlers.NewHealthHandler(store, conns)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})
	r.Get("/stats", health.Stats)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs each request at DEBUG with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debug("API request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(float64(time.Since(start).Microseconds())/1000.0),
		)
	})
}
