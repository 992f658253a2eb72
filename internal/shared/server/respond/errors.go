package respond

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerKey is the gin context key holding the request-scoped logger.
const LoggerKey = "logger"

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Logger returns the request logger set by the logging middleware, or a no-op logger.
func Logger(c *gin.Context) *zap.Logger {
	if c != nil {
		if v, ok := c.Get(LoggerKey); ok {
			if log, ok := v.(*zap.Logger); ok && log != nil {
				return log
			}
		}
	}
	return zap.NewNop()
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	Logger(c).Warn("http.error",
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
