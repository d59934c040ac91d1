package routers

import (
	"github.com/go-chi/chi/v5"

	"tutor/ai/internal/handlers"
	"tutor/ai/internal/metrics"
)

func HealthRoutes(router chi.Router, healthHandler *handlers.HealthHandler) {
	router.Get("/health", healthHandler.HealthzHandler)
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Method("GET", "/metrics", metrics.Handler())
}
