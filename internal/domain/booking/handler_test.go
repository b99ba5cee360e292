package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

func withSession(sess session.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}

func doRespond(t *testing.T, f *fixture, sess session.Session, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	router := chi.NewRouter()
	router.Mount("/requests", NewHandler(f.svc, nil).Routes(withSession(sess)))

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)))

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondHandler(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "2025-06-14")
	path := "/requests/" + req.ID.String() + "/respond"

	w, resp := doRespond(t, f, f.viewer, path, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
	assert.Equal(t, "pending", resp.Error.Details["from"])

	w, resp = doRespond(t, f, f.owner, path, map[string]string{"action": "counter", "counter_offer_details": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Error.Details, "counter_offer_details")

	w, resp = doRespond(t, f, f.owner, path, map[string]string{"action": "launch"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Error.Details, "action")

	w, resp = doRespond(t, f, f.owner, path, map[string]interface{}{"action": "accept", "version": 9})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_VERSION", resp.Error.Code)
	assert.True(t, resp.Error.Retryable)

	w, resp = doRespond(t, f, f.owner, path, map[string]string{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pending_payment", data["kind"])
	assert.Equal(t, "accepted", data["status"])
}

func TestRespondHandlerRemoteFailure(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "2025-06-14")
	f.repo.updateErr = errBackend

	w, resp := doRespond(t, f, f.owner, "/requests/"+req.ID.String()+"/respond", map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "REMOTE_FAILURE", resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
}

func TestWriteErrorValidationWithoutCause(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/requests/x/respond", nil)
	require.NotPanics(t, func() {
		h.writeError(w, r, &Error{Kind: KindValidation, Op: "next", Msg: `unknown status "archived"`})
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, `unknown status "archived"`, resp.Error.Details["request"])
}

func TestSettleQueuedHandler(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "2025-06-14")
	f.respond(t, f.owner, req.ID, Command{Action: ActionAccept})

	w, resp := doRespond(t, f, f.viewer, "/requests/payments/"+req.ID.String()+"/settle", map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "settled_offline", data["request"].(map[string]interface{})["status"])
	assert.Empty(t, data["queue"])
}
