package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
	"github.com/vendora/vendora-api/internal/pkg/validator"
)

// Handler handles booking request HTTP requests
type Handler struct {
	service *Service
	metrics *metrics.Metrics
}

func NewHandler(service *Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// DeskResponse is returned by queue endpoints.
type DeskResponse struct {
	Request *ItemResponse  `json:"request,omitempty"`
	Queue   []ItemResponse `json:"queue"`
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func parseFilter(r *http.Request) (ListFilter, map[string]string) {
	var f ListFilter
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return f, nil
	}
	for _, part := range strings.Split(raw, ",") {
		st, err := ParseStatus(strings.TrimSpace(part))
		if err != nil {
			return f, map[string]string{"status": err.Error()}
		}
		f.Statuses = append(f.Statuses, st)
	}
	return f, nil
}

// Submit handles POST /requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	created, err := h.service.Submit(r.Context(), session.FromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, ToItem(Classify(created)))
}

// ListMine handles GET /requests/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r)
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	reqs, err := h.service.ListForViewer(r.Context(), session.FromContext(r.Context()), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToItems(reqs))
}

// ListForVendor handles GET /vendors/{id}/requests
func (h *Handler) ListForVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}
	filter, errs := parseFilter(r)
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	reqs, err := h.service.ListForVendor(r.Context(), session.FromContext(r.Context()), vendorID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToItems(reqs))
}

// Get handles GET /requests/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	req, err := h.service.Get(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToItem(Classify(req)))
}

// Respond handles POST /requests/{id}/respond
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	updated, err := h.service.Respond(r.Context(), session.FromContext(r.Context()), id, req.Command())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToItem(Classify(updated)))
}

// VendorQueue handles GET /vendors/{id}/queue
func (h *Handler) VendorQueue(w http.ResponseWriter, r *http.Request) {
	desk, ok := h.vendorDesk(w, r)
	if !ok {
		return
	}
	response.OK(w, DeskResponse{Queue: ToItems(desk.Actionable())})
}

// DeclineQueued handles POST /vendors/{id}/queue/{requestId}/decline
func (h *Handler) DeclineQueued(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(r, "requestId")
	if !ok {
		response.BadRequest(w, "Invalid request ID")
		return
	}
	desk, ok := h.vendorDesk(w, r)
	if !ok {
		return
	}

	declined, err := desk.Decline(r.Context(), requestID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item := ToItem(Classify(declined))
	response.OK(w, DeskResponse{Request: &item, Queue: ToItems(desk.Actionable())})
}

// PaymentQueue handles GET /requests/payments
func (h *Handler) PaymentQueue(w http.ResponseWriter, r *http.Request) {
	desk, ok := h.viewerDesk(w, r)
	if !ok {
		return
	}
	response.OK(w, DeskResponse{Queue: ToItems(desk.Payments())})
}

// SettleQueued handles POST /requests/payments/{id}/settle
func (h *Handler) SettleQueued(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid request ID")
		return
	}
	desk, ok := h.viewerDesk(w, r)
	if !ok {
		return
	}

	settled, err := desk.Settle(r.Context(), requestID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item := ToItem(Classify(settled))
	response.OK(w, DeskResponse{Request: &item, Queue: ToItems(desk.Payments())})
}

func (h *Handler) vendorDesk(w http.ResponseWriter, r *http.Request) (*Desk, bool) {
	vendorID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid vendor ID")
		return nil, false
	}
	sess := session.FromContext(r.Context())
	reqs, err := h.service.ListForVendor(r.Context(), sess, vendorID, ListFilter{Statuses: []Status{StatusPending}})
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return NewDesk(sess, h.service, h.metrics, reqs), true
}

func (h *Handler) viewerDesk(w http.ResponseWriter, r *http.Request) (*Desk, bool) {
	sess := session.FromContext(r.Context())
	reqs, err := h.service.ListForViewer(r.Context(), sess, ListFilter{Statuses: []Status{StatusAccepted, StatusCountered}})
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return NewDesk(sess, h.service, h.metrics, reqs), true
}

// writeError maps the booking error kinds onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *Error
	if !errors.As(err, &be) {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Booking request failed", err)
		return
	}

	switch be.Kind {
	case KindValidation:
		msg := be.Msg
		if be.Err != nil {
			msg = be.Err.Error()
		}
		details := be.Fields
		if details == nil {
			details = map[string]string{"request": msg}
		}
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg, details)
	case KindTransition:
		response.ErrorWithDetails(w, http.StatusConflict, "INVALID_TRANSITION", be.Msg,
			map[string]string{"from": string(be.From)})
	case KindRemote:
		errorhandler.HandleRetryable(r.Context(), w, "Booking service is temporarily unavailable, please retry", err)
	case KindAuthorization:
		response.Forbidden(w, be.Err.Error())
	case KindConflict:
		response.RetryableError(w, http.StatusConflict, "STALE_VERSION", "Request changed since it was loaded, refresh and try again")
	case KindNotFound:
		response.NotFound(w, be.Err.Error())
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Booking request failed", err)
	}
}
