package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/pkg/response"
)

func TestRegisterHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": "short"})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "email")
	assert.Contains(t, resp.Error.Details, "password")
	assert.Contains(t, resp.Error.Details, "full_name")
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)

	body, _ := json.Marshal(LoginRequest{Email: "ghost@example.com", Password: "whatever-pass"})
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
