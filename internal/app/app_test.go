package app

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/services"
)

func TestLeaderboardWarmerNeedsRedis(t *testing.T) {
	board := services.NewLeaderboardService(logger.NewNop(), nil, nil, observability.New(time.Second))

	assert.Nil(t, leaderboardWarmer(Clients{}, board), "no cache, nothing to warm")

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NotNil(t, leaderboardWarmer(Clients{Redis: rdb}, board))
}
