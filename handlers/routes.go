package handlers

import (
	"github.com/gin-gonic/gin"

	"sectionpulse/api/metrics"
	"sectionpulse/api/middleware"
)

// Endpoint paths the browser recorder and dashboards call. The netlify path
// is kept for recorders deployed before the move off serverless functions.
var AnalyticsPaths = []string{
	"/api/user-analytics",
	"/.netlify/functions/user-analytics",
}

type RouterConfig struct {
	Analytics     *AnalyticsHandlers
	Auth          *AuthHandlers
	Environment   string
	AllowedOrigin string
	ReadGuard     gin.HandlerFunc // guards the query endpoint when set
	IngestLimiter *middleware.IPRateLimiter
}

func SetupRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger(), gin.Recovery(), middleware.Metrics(), middleware.CORSMiddleware(cfg.AllowedOrigin))
	r.NoMethod(MethodNotAllowed)

	query := []gin.HandlerFunc{cfg.Analytics.Query}
	if cfg.ReadGuard != nil {
		query = append([]gin.HandlerFunc{cfg.ReadGuard}, query...)
	}
	for _, path := range AnalyticsPaths {
		r.POST(path, middleware.RateLimit(cfg.IngestLimiter), cfg.Analytics.Ingest)
		r.GET(path, query...)
	}

	api := r.Group("/api")
	{
		api.GET("/health", HealthCheck(cfg.Environment))
		if cfg.Auth != nil {
			api.POST("/auth/token", cfg.Auth.IssueToken)
		}
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
