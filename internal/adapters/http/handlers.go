package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/application"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

// queueBrands serves the paginated queue view with conditional-GET support.
// The rendered body is served verbatim; a matching If-None-Match yields 304
// with the ETag header only.
func (h *Handler) queueBrands(w http.ResponseWriter, r *http.Request) {
	queue, err := domain.ParseQueueName(chi.URLParam(r, "queue"))
	if err != nil {
		writeMappedError(r.Context(), w, "queue_brands", err)
		return
	}

	query := r.URL.Query()
	req := application.PageRequest{
		Queue:       queue,
		Page:        parseIntDefault(query.Get("page"), 1),
		Limit:       parseIntDefault(query.Get("limit"), 0),
		SortBy:      domain.ParseSortField(query.Get("sort_by")),
		SortOrder:   domain.ParseSortOrder(query.Get("sort_order")),
		IfNoneMatch: r.Header.Get("If-None-Match"),
	}

	result, err := h.service.QueuePage(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "queue_brands", err)
		return
	}

	w.Header().Set("ETag", `"`+result.ETag+`"`)
	if result.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}

func (h *Handler) queueStats(w http.ResponseWriter, r *http.Request) {
	queue, err := domain.ParseQueueName(chi.URLParam(r, "queue"))
	if err != nil {
		writeMappedError(r.Context(), w, "queue_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, h.service.Stats(r.Context(), queue))
}

func (h *Handler) clearCaches(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCaches(r.Context()); err != nil {
		writeMappedError(r.Context(), w, "clear_caches", err)
		return
	}
	writeMessage(w, http.StatusOK, "caches cleared")
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.service.Metrics())
}

func (h *Handler) resetMetrics(w http.ResponseWriter, r *http.Request) {
	h.service.ResetMetrics()
	writeMessage(w, http.StatusOK, "metrics reset")
}
