package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apphttp "github.com/yungbote/prepstack-backend/internal/http"
	httpH "github.com/yungbote/prepstack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/prepstack-backend/internal/http/middleware"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Progress    *httpH.ProgressHandler
	Question    *httpH.QuestionHandler
	Leaderboard *httpH.LeaderboardHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(
	log *logger.Logger,
	db *gorm.DB,
	clients Clients,
	services Services,
	sseHub *realtime.SSEHub,
	metrics *observability.Metrics,
) Handlers {
	log.Info("Wiring handlers...")
	pingers := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		pingers["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	return Handlers{
		Health:      httpH.NewHealthHandler(pingers),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Progress:    httpH.NewProgressHandler(services.Progress),
		Question:    httpH.NewQuestionHandler(services.Questions),
		Leaderboard: httpH.NewLeaderboardHandler(services.Leaderboard),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub, metrics),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	routerCfg := apphttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		ProgressHandler:    handlers.Progress,
		QuestionHandler:    handlers.Question,
		LeaderboardHandler: handlers.Leaderboard,
		RealtimeHandler:    handlers.Realtime,
		HealthHandler:      handlers.Health,
	}
	if cfg.OTel.Enabled {
		routerCfg.TracingService = cfg.OTel.ServiceName
	}
	return apphttp.NewRouter(routerCfg)
}
