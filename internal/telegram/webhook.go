package telegram

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-bot/internal/shared/server/respond"
	"resume-bot/internal/shared/telemetry"
)

// SecretHeader carries the secret token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts updates pushed by Telegram. The update is queued and the
// request answered immediately; processing happens on the dispatcher's workers.
// A dispatcher that no longer accepts events gets 503 so Telegram redelivers later.
func WebhookHandler(secret string, dispatcher Dispatcher, log *zap.Logger) gin.HandlerFunc {
	log = telemetry.OrNop(log)
	return func(c *gin.Context) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(SecretHeader)), []byte(secret)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook secret", nil)
			return
		}
		var u Update
		if err := c.ShouldBindJSON(&u); err != nil {
			respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid update", nil)
			return
		}
		ev, ok := ToEvent(u)
		if !ok {
			log.Debug("telegram.webhook.ignored", zap.Int64("update_id", u.UpdateID))
			c.Status(http.StatusOK)
			return
		}
		if !dispatcher.Dispatch(ev) {
			respond.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "shutting down", nil)
			return
		}
		c.Status(http.StatusOK)
	}
}
