package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency probe in /health.
const healthCheckTimeout = 2 * time.Second

// defaultWSPath is used when the websocket config leaves the path unset.
const defaultWSPath = "/ws"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware())
	if s.secCfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware())
	}
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health and metrics (no auth required)
		r.Get("/health", s.handleHealth)
		if s.metrics != nil {
			r.Handle("/metrics", s.metrics.Handler())
		}

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/gateways", func(r chi.Router) {
				r.Get("/", s.handleListGateways)
				r.Post("/", s.handleCreateGateway)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetGateway)
					r.Put("/", s.handleUpdateGateway)
					r.Patch("/", s.handleUpdateGateway)
					r.Delete("/", s.handleDeleteGateway)
					r.Get("/logs", s.handleListGatewayLogs)

					r.Route("/devices", func(r chi.Router) {
						r.Post("/", s.handleAttachDevice)
						r.Delete("/", s.handleDetachDevice)
						r.Delete("/{deviceId}", s.handleDetachDevice)
					})
				})
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Put("/", s.handleUpdateDevice)
					r.Patch("/", s.handleUpdateDevice)
					r.Delete("/", s.handleDeleteDevice)
				})
			})

			r.Get("/device-types", s.handleListDeviceTypes)

			r.Get(s.wsPath(), s.handleWebSocket)
		})
	})

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return defaultWSPath
	}
	return s.wsCfg.Path
}

// handleHealth reports the server version and the state of each dependency.
// Any failing dependency turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(s.healthChecks))

	for name, checker := range s.healthChecks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()

		if err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
