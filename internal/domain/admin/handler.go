package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
	"github.com/vendora/vendora-api/internal/pkg/validator"
)

// Handler handles admin and onboarding HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Apply handles POST /onboarding/applications
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	a, err := h.service.Apply(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, ApplicationResponseFrom(a))
}

// GetInvitation handles GET /invitations/{token}
func (h *Handler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvitation(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, InvitationResponse{
		VendorID:   inv.VendorID.String(),
		VendorName: inv.VendorName,
		Email:      inv.Email,
		ExpiresAt:  inv.ExpiresAt.Format(time.RFC3339),
		Usable:     inv.Usable(time.Now()),
	})
}

// ListApplications handles GET /admin/applications?status=pending
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	status := ApplicationStatus(r.URL.Query().Get("status"))

	apps, total, err := h.service.ListApplications(r.Context(), session.FromContext(r.Context()), status, limit, (page-1)*limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		items = append(items, ApplicationResponseFrom(a))
	}
	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

// Approve handles POST /admin/applications/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid application ID")
		return
	}

	a, inv, err := h.service.Approve(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ApprovalResponse{
		Application: ApplicationResponseFrom(a),
		VendorID:    inv.VendorID.String(),
		InviteURL:   h.service.InviteURL(inv.Token),
		ExpiresAt:   inv.ExpiresAt.Format(time.RFC3339),
	})
}

// Reject handles POST /admin/applications/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid application ID")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	a, err := h.service.Reject(r.Context(), session.FromContext(r.Context()), id, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ApplicationResponseFrom(a))
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, stats)
}

// Expire handles POST /admin/requests/expire
func (h *Handler) Expire(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ExpireStale(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ExpireResponse{Expired: n})
}

// AuditLogs handles GET /admin/audit
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	filter := AuditFilter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entity_type"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	logs, total, err := h.service.AuditLogs(r.Context(), session.FromContext(r.Context()), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.WithMeta(w, logs, response.NewMeta(total, page, limit))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		response.Forbidden(w, "Admin access required")
	case errors.Is(err, ErrApplicationNotFound):
		response.NotFound(w, "Application not found")
	case errors.Is(err, ErrInvitationNotFound):
		response.NotFound(w, "Invitation not found")
	case errors.Is(err, ErrApplicationNotPending):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrDuplicateApplication):
		response.Conflict(w, err.Error())
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Admin request failed", err)
	}
}
