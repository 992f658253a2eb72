package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-bot/internal/services/health"
	"resume-bot/internal/shared/metrics"
	"resume-bot/internal/shared/server/middleware"
	"resume-bot/internal/shared/server/respond"
)

const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// RouterDeps carries the handlers the HTTP surface exposes.
type RouterDeps struct {
	Log    *zap.Logger
	Health *health.Service
	// Webhook is mounted at WebhookPath when set; polling deployments leave it nil.
	Webhook     gin.HandlerFunc
	WebhookPath string
	// WebhookLimit throttles the webhook route per client IP.
	WebhookLimit middleware.RateLimitRule
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(deps.Log),
		middleware.Logging(HealthPath, MetricsPath),
		middleware.Recovery(),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET(HealthPath, func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET(MetricsPath, metrics.Handler())

	if deps.Webhook != nil && deps.WebhookPath != "" {
		r.POST(deps.WebhookPath, middleware.RateLimit(deps.WebhookLimit, nil), deps.Webhook)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
