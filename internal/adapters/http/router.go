package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/application"
)

// Handler is the HTTP adapter entrypoint for dashboard queries.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the dashboard routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queues/{queue}/brands", handler.queueBrands)
		r.Get("/queues/{queue}/stats", handler.queueStats)
		r.Post("/cache/clear", handler.clearCaches)
		r.Get("/metrics", handler.metrics)
		r.Post("/metrics/reset", handler.resetMetrics)
	})

	return r
}
