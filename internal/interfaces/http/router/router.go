package router

import (
	"net/http"

	httpHandler "github.com/YouSangSon/shardwatch/internal/interfaces/http/handler"
	"github.com/YouSangSon/shardwatch/internal/interfaces/http/middleware"
	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config는 관리 API 라우터 구성입니다
type Config struct {
	Health       *httpHandler.HealthHandler
	Interception *httpHandler.InterceptionHandler

	// AdminRateLimit이 nil이 아니면 관리 쓰기 요청에 적용됩니다
	AdminRateLimit *middleware.RateLimiter

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	EnableTracing bool
	EnableMetrics bool
	Environment   string
}

// SetupRouter는 관리 API 라우트를 구성합니다
func SetupRouter(cfg Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	if cfg.EnableTracing {
		router.Use(middleware.Tracing())
	}
	if cfg.EnableMetrics {
		router.Use(middleware.Metrics(cfg.Metrics))
	}

	router.Use(middleware.ErrorHandler())

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	// ============================================
	// Health & Metrics
	// ============================================
	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
		router.GET("/ready", cfg.Health.Ready)
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	// ============================================
	// Admin
	// ============================================
	if cfg.Interception != nil {
		admin := router.Group("/admin")
		{
			admin.GET("/interception", cfg.Interception.Get)

			writes := []gin.HandlerFunc{}
			if cfg.AdminRateLimit != nil {
				writes = append(writes, middleware.RateLimit(cfg.AdminRateLimit))
			}
			admin.PUT("/interception", append(writes, cfg.Interception.Set)...)
		}
	}

	return router
}
