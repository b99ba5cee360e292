package message

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /messages router. Every endpoint requires auth.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/unread", h.Unread)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/{id}/read", h.MarkRead)

	return r
}
