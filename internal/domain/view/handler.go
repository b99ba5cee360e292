package view

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func remoteAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Record handles POST /vendors/{id}/views
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}

	counted, err := h.service.Record(r.Context(), session.FromContext(r.Context()), vendorID, remoteAddr(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, map[string]bool{"counted": counted})
}

// Counts handles GET /vendors/{id}/views?days=30
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor ID")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	counts, err := h.service.Counts(r.Context(), session.FromContext(r.Context()), vendorID, days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, counts)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrVendorNotFound):
		response.NotFound(w, "Vendor not found")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidRange):
		response.ValidationError(w, map[string]string{"days": "days must be at most 366"})
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "View request failed", err)
	}
}
