package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts rating endpoints on the /vendors router.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/{id}/ratings", h.List)
	r.Get("/{id}/ratings/summary", h.Summary)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/{id}/ratings", h.Create)
		r.Delete("/{id}/ratings/{ratingId}", h.Delete)
	})
}
