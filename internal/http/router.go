package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/prepstack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/prepstack-backend/internal/http/middleware"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TracingService enables otelgin spans under this service name.
	TracingService string

	AuthHandler        *httpH.AuthHandler
	AuthMiddleware     *httpMW.AuthMiddleware
	UserHandler        *httpH.UserHandler
	ProgressHandler    *httpH.ProgressHandler
	QuestionHandler    *httpH.QuestionHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	RealtimeHandler    *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireIdentity())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/progress/points", cfg.ProgressHandler.AwardPoints)
			protected.POST("/progress/streak", cfg.ProgressHandler.UpdateStreak)
			protected.POST("/progress/counters", cfg.ProgressHandler.IncrementCounter)
			protected.GET("/progress/:category", cfg.ProgressHandler.Overview)
		}

		// Leaderboard
		if cfg.LeaderboardHandler != nil {
			protected.GET("/leaderboard", cfg.LeaderboardHandler.List)
		}

		// Questions
		if cfg.QuestionHandler != nil {
			protected.GET("/questions/:category/window", cfg.QuestionHandler.Window)
			protected.GET("/questions/:category/random", cfg.QuestionHandler.Random)
			protected.GET("/questions/:category/:id", cfg.QuestionHandler.Get)
		}
	}

	return r
}
