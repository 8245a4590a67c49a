package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/frauddetect/pkg/auth"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Meter records per-route request metrics when set.
	Meter metric.Meter

	// JWT protects /api with bearer auth when set.
	JWT *auth.JWTService
}

// NewRouter builds the gin engine with health, metrics and API routes.
func NewRouter(h *Handler, health *HealthHandler, logger *slog.Logger, cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(logger))
	if cfg.Meter != nil {
		mw, err := Metrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		router.Use(mw)
	}

	router.GET("/healthz", health.Healthz)
	router.GET("/readyz", health.Readyz)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api")
	write := []gin.HandlerFunc{}
	if cfg.JWT != nil {
		api.Use(BearerAuth(cfg.JWT))
		write = append(write, RequireRole(auth.RoleAdmin, auth.RoleAnalyst))
	}
	{
		api.POST("/fraud-detect", h.DetectFraud)

		api.GET("/transactions", h.ListTransactions)
		api.GET("/transactions/recent", h.RecentTransactions)
		api.GET("/transactions/high-risk", h.HighRiskTransactions)
		api.GET("/transactions/:id", h.GetTransaction)

		api.GET("/fraud-history", h.FraudHistory)
		api.POST("/fraud-history", append(write, h.AddFraudHistory)...)
		api.GET("/fraud-statistics", h.FraudStatistics)

		api.GET("/dashboard", h.Dashboard)
		api.GET("/fraud-timeline", h.FraudTimeline)

		api.GET("/notifications", h.ListNotifications)
		api.PUT("/notifications/:id/read", append(write, h.MarkNotificationRead)...)
	}

	return router, nil
}
