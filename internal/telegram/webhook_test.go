package telegram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookRouter(secret string, d Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/telegram/webhook", WebhookHandler(secret, d, nil))
	return r
}

func postUpdate(r *gin.Engine, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

const textUpdate = `{"update_id":1,"message":{"message_id":1,"from":{"id":7},"chat":{"id":7},"text":"hello"}}`

func TestWebhookDispatchesUpdate(t *testing.T) {
	d := &recordingDispatcher{}
	r := newWebhookRouter("s3cr3t", d)

	resp := postUpdate(r, "s3cr3t", textUpdate)

	assert.Equal(t, http.StatusOK, resp.Code)
	events := d.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Text)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	d := &recordingDispatcher{}
	r := newWebhookRouter("s3cr3t", d)

	assert.Equal(t, http.StatusUnauthorized, postUpdate(r, "nope", textUpdate).Code)
	assert.Equal(t, http.StatusUnauthorized, postUpdate(r, "", textUpdate).Code)
	assert.Empty(t, d.Events())
}

func TestWebhookBadJSON(t *testing.T) {
	d := &recordingDispatcher{}
	r := newWebhookRouter("", d)

	assert.Equal(t, http.StatusBadRequest, postUpdate(r, "", "{").Code)
	assert.Empty(t, d.Events())
}

func TestWebhookIgnoredUpdateStillOK(t *testing.T) {
	d := &recordingDispatcher{}
	r := newWebhookRouter("", d)

	assert.Equal(t, http.StatusOK, postUpdate(r, "", `{"update_id":9}`).Code)
	assert.Empty(t, d.Events())
}

func TestWebhookUnavailableAfterShutdown(t *testing.T) {
	d := &recordingDispatcher{closed: true}
	r := newWebhookRouter("", d)

	resp := postUpdate(r, "", textUpdate)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "UNAVAILABLE")
	assert.Empty(t, d.Events())
}
