package rating

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// List handles GET /vendors/{id}/ratings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	ratings, err := h.service.List(r.Context(), vendorID, limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]Response, 0, len(ratings))
	for _, rt := range ratings {
		items = append(items, rt.ToResponse())
	}
	response.OK(w, ListResponse{Summary: summary, Items: items})
}

// Summary handles GET /vendors/{id}/ratings/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}
	summary, err := h.service.Summary(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, summary)
}

// Create handles POST /vendors/{id}/ratings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rt, err := h.service.Create(r.Context(), session.FromContext(r.Context()), vendorID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, rt.ToResponse())
}

// Delete handles DELETE /vendors/{id}/ratings/{ratingId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ratingId"))
	if err != nil {
		response.BadRequest(w, "Invalid rating ID")
		return
	}
	if err := h.service.Delete(r.Context(), session.FromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrVendorNotFound):
		response.NotFound(w, "Vendor not found")
	case errors.Is(err, ErrRatingNotFound):
		response.NotFound(w, "Rating not found")
	case errors.Is(err, ErrAlreadyRated):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrOwnVendor), errors.Is(err, ErrNotRatingAuthor):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidScore):
		response.ValidationError(w, map[string]string{"rating": err.Error()})
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Rating request failed", err)
	}
}
