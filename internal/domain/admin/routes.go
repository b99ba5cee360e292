package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /api/admin router. Callers mount it behind auth and RequireAdmin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/applications", func(r chi.Router) {
		r.Get("/", h.ListApplications)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
	r.Get("/stats", h.Stats)
	r.Post("/requests/expire", h.Expire)
	r.Get("/audit", h.AuditLogs)

	return r
}

// RegisterPublicRoutes mounts onboarding endpoints that need no session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/onboarding/applications", h.Apply)
	r.Get("/invitations/{token}", h.GetInvitation)
}
