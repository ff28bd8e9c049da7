package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/prepstack-backend/internal/clients/redis"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/realtime/bus"
)

// Clients holds optional external connections. Redis is only dialed when
// REDIS_ADDR is set; without it SSE stays in-process and the leaderboard is
// served uncached.
type Clients struct {
	Redis  *goredis.Client
	SSEBus bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if cfg.RedisAddr == "" {
		return Clients{}, nil
	}

	rdb, err := redis.NewClient(log, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	sseBus, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	return Clients{Redis: rdb, SSEBus: sseBus}, nil
}

func (c Clients) Close() {
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
