package chat

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/kharcha/internal/domain/routing"
)

func newTestRouter(t *testing.T, secret string) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t, routing.DefaultConfig())
	h := NewHandler(f.svc, secret, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	h.RegisterRoutes(r)
	return r, f
}

func postWebhook(t *testing.T, r *gin.Engine, body map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleWebhook_LogsExpense(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := postWebhook(t, r, map[string]string{
		"user_id": "u1", "message_id": "m1", "text": "coffee 100",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp webhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(routing.IntentExpenseLog), resp.Intent)
	assert.Equal(t, 0.95, resp.Confidence)
	assert.NotEmpty(t, resp.Reply)
}

func TestHandleWebhook_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := postWebhook(t, r, map[string]string{"user_id": "u1"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhook_TokenRequired(t *testing.T) {
	r, _ := newTestRouter(t, "s3cret")
	body := map[string]string{"user_id": "u1", "message_id": "m1", "text": "hello"}

	w := postWebhook(t, r, body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(t, r, body, map[string]string{"X-Webhook-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(t, r, body, map[string]string{"X-Webhook-Token": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleWebhook_BengaliRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := postWebhook(t, r, map[string]string{
		"user_id": "u1", "message_id": "m1", "text": "চা ৫০ টাকা খরচ করেছি",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp webhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(routing.IntentExpenseLog), resp.Intent)
	assert.Contains(t, resp.Reply, "৳")
}
