package view

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts view endpoints on the /vendors router.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/{id}/views", h.Record)
	r.With(authMiddleware).Get("/{id}/views", h.Counts)
}
