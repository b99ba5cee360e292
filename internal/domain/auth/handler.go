package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
	"github.com/vendora/vendora-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout", err)
		return
	}
	response.NoContent(w)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.service.Me(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, me)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Conflict(w, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, ErrUserInactive):
		response.Forbidden(w, "Account is disabled")
	case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrRefreshTokenRequired):
		response.Unauthorized(w, "Invalid or expired refresh token")
	case errors.Is(err, ErrInvalidInvitation):
		response.Error(w, http.StatusGone, "INVITATION_INVALID", "Invitation is invalid or expired")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication request failed", err)
	}
}
