package router

import (
	"github.com/YouSangSon/reports-service/internal/interfaces/http/handler"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/middleware"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config는 라우터 설정입니다
type Config struct {
	Environment   string
	EnableTracing bool
	EnableMetrics bool
	// Admins는 사용자 상태(verified/active)를 변경할 수 있는 사용자 이름입니다
	Admins []string
}

// Dependencies는 라우터가 연결하는 핸들러 의존성입니다
type Dependencies struct {
	Reports handler.ReportService
	Users   handler.UserService
	Health  *handler.HealthHandler
	Tokens  middleware.TokenParser
	// Limiter가 nil이면 rate limiting을 하지 않습니다
	Limiter middleware.Limiter
	Metrics *metrics.Metrics
}

// SetupRouter는 API 서버의 모든 라우트를 설정합니다
func SetupRouter(cfg Config, deps Dependencies) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global Middlewares
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.CORSMiddleware())

	if cfg.EnableTracing {
		router.Use(middleware.TracingMiddleware())
	}
	if cfg.EnableMetrics && deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	// ============================================
	// Health & Metrics Endpoints (no auth, no rate limit)
	// ============================================
	router.GET("/health", deps.Health.Health)
	router.GET("/ready", deps.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================
	// API v1
	// ============================================
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Tokens))
	if deps.Limiter != nil {
		v1.Use(middleware.RateLimit(deps.Limiter, deps.Metrics))
	}

	reportHandler := handler.NewReportHandler(deps.Reports)
	reports := v1.Group("/reports")
	{
		// Queries
		reports.GET("", reportHandler.ListByObject)
		reports.GET("/list", reportHandler.List)
		reports.GET("/count_by_day", reportHandler.CountByDay)
		reports.GET("/count_by_user", reportHandler.CountByUser)
		reports.GET("/csv", reportHandler.ExportCSV)

		// Single report
		reports.GET("/:report_id", reportHandler.Get)
		reports.POST("", middleware.RequireAuth(), reportHandler.Create)
		reports.PUT("/:report_id", middleware.RequireAuth(), reportHandler.Replace)
		reports.PATCH("/:report_id", middleware.RequireAuth(), reportHandler.Update)
		reports.DELETE("/:report_id", middleware.RequireAuth(), reportHandler.Delete)
	}

	userHandler := handler.NewUserHandler(deps.Users)
	users := v1.Group("/users")
	{
		users.POST("", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/token/verify", userHandler.VerifyToken)
		users.POST("/token/refresh", userHandler.RefreshToken)

		authenticated := users.Group("", middleware.RequireAuth())
		authenticated.GET("/me", userHandler.Me)
		authenticated.PATCH("/me", userHandler.UpdateMe)
		authenticated.DELETE("/me", userHandler.DeleteMe)
		authenticated.GET("/:user_id", userHandler.Get)
		authenticated.PATCH("/:user_id/flags", middleware.RequireAdmin(cfg.Admins), userHandler.SetFlags)
	}

	return router
}
