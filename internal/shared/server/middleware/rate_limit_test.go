package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(rule RateLimitRule, now *time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(func() time.Time { return *now })
	r := gin.New()
	r.Use(RateLimit(rule, limiter))
	r.POST("/telegram/webhook", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
	return resp
}

func TestRateLimitBurstThen429(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(RateLimitRule{Rate: 1, Burst: 2}, &now)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/telegram/webhook").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/telegram/webhook").Code)

	resp := do(r, http.MethodPost, "/telegram/webhook")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "rate_limited", payload["error"])
	assert.Contains(t, payload, "retryAfterMs")

	// Routes have separate buckets.
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz").Code)
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(RateLimitRule{Rate: 2, Burst: 1}, &now)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/telegram/webhook").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/telegram/webhook").Code)

	now = now.Add(500 * time.Millisecond)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/telegram/webhook").Code)
}

func TestRateLimitZeroRuleDisabled(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(RateLimitRule{}, &now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/telegram/webhook").Code)
	}
}
