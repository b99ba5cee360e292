package availability

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
	"github.com/vendora/vendora-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func vendorID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// Calendar handles GET /vendors/{id}/calendar?month=YYYY-MM
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	cal, err := h.service.GetCalendar(r.Context(), id, r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, cal)
}

// Plan handles POST /vendors/{id}/calendar/selection
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	out, err := h.service.Plan(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// GetSettings handles GET /vendors/{id}/availability
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	st, configured, err := h.service.GetSettings(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, SettingsResponseFrom(st, configured))
}

// UpdateSettings handles PUT /vendors/{id}/availability
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	st, err := h.service.UpdateSettings(r.Context(), session.FromContext(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, SettingsResponseFrom(st, true))
}

// ListBlocked handles GET /vendors/{id}/blocked-dates?from=&to=
func (h *Handler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	items, err := h.service.ListBlocked(r.Context(), id, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, BlockedResponseFrom(items))
}

// Block handles POST /vendors/{id}/blocked-dates
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.BlockDate(r.Context(), session.FromContext(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, BlockedResponseFrom([]*BlockedDate{b})[0])
}

// Unblock handles DELETE /vendors/{id}/blocked-dates/{date}
func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	id, ok := vendorID(r)
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	if err := h.service.UnblockDate(r.Context(), session.FromContext(r.Context()), id, chi.URLParam(r, "date")); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrVendorNotFound):
		response.NotFound(w, "Vendor not found")
	case errors.Is(err, ErrNotVendorOwner):
		response.Forbidden(w, "Only the vendor owner can change availability")
	case errors.Is(err, ErrInvalidMonth):
		response.ValidationError(w, map[string]string{"month": ErrInvalidMonth.Error()})
	case errors.Is(err, ErrInvalidDate):
		response.ValidationError(w, map[string]string{"date": ErrInvalidDate.Error()})
	case errors.Is(err, ErrInvalidWeekday):
		response.ValidationError(w, map[string]string{"days_off": err.Error()})
	case errors.Is(err, ErrAlreadyBlocked):
		response.Conflict(w, "Date is already blocked")
	case errors.Is(err, ErrBlockedNotFound):
		response.NotFound(w, "Blocked date not found")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Availability request failed", err)
	}
}
