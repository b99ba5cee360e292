package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /requests router. Every endpoint needs a session.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Submit)
	r.Get("/my", h.ListMine)
	r.Get("/payments", h.PaymentQueue)
	r.Post("/payments/{id}/settle", h.SettleQueued)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/respond", h.Respond)

	return r
}

// RegisterVendorRoutes mounts the vendor-side request views on the /vendors router.
func (h *Handler) RegisterVendorRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/{id}/requests", h.ListForVendor)
		r.Get("/{id}/queue", h.VendorQueue)
		r.Post("/{id}/queue/{requestId}/decline", h.DeclineQueued)
	})
}
