package availability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts calendar and availability endpoints on the /vendors router.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/{id}/calendar", h.Calendar)
	r.Post("/{id}/calendar/selection", h.Plan)
	r.Get("/{id}/availability", h.GetSettings)
	r.Get("/{id}/blocked-dates", h.ListBlocked)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Put("/{id}/availability", h.UpdateSettings)
		r.Post("/{id}/blocked-dates", h.Block)
		r.Delete("/{id}/blocked-dates/{date}", h.Unblock)
	})
}
