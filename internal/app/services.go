package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/tx"
	"github.com/yungbote/prepstack-backend/internal/modules/progress/streak"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/realtime"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Identity    services.IdentityResolver
	User        services.UserService
	Progress    services.ProgressService
	Questions   services.QuestionService
	Leaderboard services.LeaderboardService
	Seed        services.SeedService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	clients Clients,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")
	runner := tx.NewGormTxRunner(db)

	authService := services.NewAuthService(log, runner, reposet.User, reposet.UserToken, services.AuthConfig{
		JWTSecretKey: cfg.JWTSecretKey,
		AccessTTL:    cfg.AccessTokenTTL,
		RefreshTTL:   cfg.RefreshTokenTTL,
	})

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus}
	}

	var cache services.LeaderboardCache
	if clients.Redis != nil {
		cache = services.NewRedisLeaderboardCache(log, clients.Redis, cfg.LeaderboardCacheTTL)
	}

	return Services{
		Auth:     authService,
		Identity: services.NewIdentityResolver(log, authService, cfg.AllowCookieUserID),
		User:     services.NewUserService(log, reposet.User),
		Progress: services.NewProgressService(
			log,
			runner,
			reposet.User,
			reposet.Item,
			services.NewProgressNotifier(emitter),
			cache,
			metrics,
			services.ProgressConfig{
				MaxPointsPerAward: cfg.MaxPointsPerAward,
				Clock:             streak.LocalClock(cfg.Timezone),
			},
		),
		Questions:   services.NewQuestionService(log, reposet.User, reposet.Item),
		Leaderboard: services.NewLeaderboardService(log, reposet.User, cache, metrics),
		Seed:        services.NewSeedService(log, runner, reposet.Item),
	}
}
