package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type fakeResolver struct {
	ids []uuid.UUID
	err error
}

func (f fakeResolver) VendorIDsForOwner(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.ids, f.err
}

func captureSession(got *session.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthBuildsVendorSession(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	vendorID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(userID, string(session.RoleVendor))
	require.NoError(t, err)

	var got session.Session
	h := Auth(jwtSvc, fakeResolver{ids: []uuid.UUID{vendorID}})(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, session.RoleVendor, got.Role)
	assert.True(t, got.OwnsVendor(vendorID))
}

func TestAuthResolverFailureStillAuthenticates(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	token, err := jwtSvc.GenerateAccessToken(uuid.New(), string(session.RoleVendor))
	require.NoError(t, err)

	var got session.Session
	h := Auth(jwtSvc, fakeResolver{err: errors.New("db down")})(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, got.VendorIDs)
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	h := Auth(jwtSvc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	refresh, _, err := jwtSvc.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	h := Auth(jwtSvc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	var got session.Session
	h := OptionalAuth(jwtSvc, nil)(captureSession(&got))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vendors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.IsZero())
}

func TestRequireRole(t *testing.T) {
	h := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(session.WithContext(req.Context(), session.Session{UserID: uuid.New(), Role: session.RoleViewer}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = req.WithContext(session.WithContext(req.Context(), session.Session{UserID: uuid.New(), Role: session.RoleAdmin}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
