package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/db"
	apphttp "github.com/yungbote/prepstack-backend/internal/http"
	"github.com/yungbote/prepstack-backend/internal/jobs/scheduler"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/realtime"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Router    *gin.Engine
	Cfg       Config
	Repos     Repos
	Services  Services
	Clients   Clients
	SSEHub    *realtime.SSEHub
	Metrics   *observability.Metrics
	Scheduler *scheduler.Scheduler

	dbService    *db.Service
	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

// OpenDatabase connects with cfg.DB. Callers own the returned service.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return svc, nil
}

// Migrate creates the account, token and question tables plus the
// leaderboard index.
func Migrate(gdb *gorm.DB) error {
	if err := db.AutoMigrateAll(gdb); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureLeaderboardIndex(gdb); err != nil {
		return fmt.Errorf("leaderboard index: %w", err)
	}
	return nil
}

func New(log *logger.Logger, cfg Config) (*App, error) {
	shutdownOTel := observability.InitOTel(context.Background(), log, cfg.OTel)
	metrics := observability.Init(cfg.MetricsEnabled, cfg.ScrapeInterval)

	dbService, err := OpenDatabase(log, cfg)
	if err != nil {
		_ = shutdownOTel(context.Background())
		return nil, err
	}
	theDB := dbService.DB()
	if err := Migrate(theDB); err != nil {
		_ = dbService.Close()
		_ = shutdownOTel(context.Background())
		return nil, err
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = shutdownOTel(context.Background())
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, ssehub, metrics)
	handlerset := wireHandlers(log, theDB, clients, serviceset, ssehub, metrics)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	sched := scheduler.New(log, scheduler.Config{
		WarmInterval:  cfg.LeaderboardWarmInterval,
		WarmPages:     cfg.LeaderboardWarmPages,
		PurgeInterval: cfg.TokenPurgeInterval,
	}, leaderboardWarmer(clients, serviceset.Leaderboard), serviceset.Auth)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		Scheduler:    sched,
		dbService:    dbService,
		shutdownOTel: shutdownOTel,
	}, nil
}

// leaderboardWarmer is nil without Redis: warming only fills the cache, so
// there is nothing to warm.
func leaderboardWarmer(clients Clients, svc services.LeaderboardService) scheduler.LeaderboardWarmer {
	if clients.Redis == nil {
		return nil
	}
	return svc
}

// Start launches background work: the cross-instance SSE forwarder, the
// maintenance scheduler and the metrics collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}
	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}
	return nil
}

// Run serves HTTP on port until ctx is cancelled.
func (a *App) Run(ctx context.Context, port string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if port == "" {
		port = a.Cfg.Port
	}
	srv := &apphttp.Server{Engine: a.Router}
	a.Log.Info("Serving HTTP", "addr", net.JoinHostPort("", port))
	return srv.Run(ctx, net.JoinHostPort("", port), a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	a.Clients.Close()
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
