package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const (
	defaultLeaderboardCachePrefix = "prep:leaderboard"
	defaultLeaderboardCacheTTL    = 30 * time.Second
)

// redisLeaderboardCache keys pages under a generation number. Invalidate
// bumps the generation so every older page becomes unreachable at once and
// expires on its own TTL.
type redisLeaderboardCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisLeaderboardCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) LeaderboardCache {
	if ttl <= 0 {
		ttl = defaultLeaderboardCacheTTL
	}
	return &redisLeaderboardCache{
		log:    log.With("service", "LeaderboardCache"),
		rdb:    rdb,
		prefix: defaultLeaderboardCachePrefix,
		ttl:    ttl,
	}
}

func (c *redisLeaderboardCache) genKey() string { return c.prefix + ":gen" }

func (c *redisLeaderboardCache) pageKey(gen int64, offset, limit int) string {
	return fmt.Sprintf("%s:%d:%d:%d", c.prefix, gen, offset, limit)
}

func (c *redisLeaderboardCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.rdb.Get(ctx, c.genKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *redisLeaderboardCache) Get(ctx context.Context, offset, limit int) (*LeaderboardPage, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.rdb.Get(ctx, c.pageKey(gen, offset, limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var page LeaderboardPage
	if err := json.Unmarshal(raw, &page); err != nil {
		c.log.Warn("dropping undecodable leaderboard page", "error", err)
		return nil, false, nil
	}
	return &page, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, page *LeaderboardPage) error {
	if page == nil {
		return nil
	}
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.pageKey(gen, page.Offset, page.Limit), raw, c.ttl).Err()
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}
