package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank                    int       `json:"rank"`
	UserID                  uuid.UUID `json:"user_id"`
	DisplayName             string    `json:"display_name"`
	AvatarURL               string    `json:"avatar_url"`
	TotalPoints             int       `json:"total_points"`
	CurrentStreak           int       `json:"current_streak"`
	LongestStreak           int       `json:"longest_streak"`
	TotalQuestionsAttempted int       `json:"total_questions_attempted"`
}

type LeaderboardPage struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int64              `json:"total"`
	Offset  int                `json:"offset"`
	Limit   int                `json:"limit"`
	HasNext bool               `json:"has_next"`
	HasPrev bool               `json:"has_prev"`
}

// LeaderboardCache stores rendered pages. Implementations must treat a miss
// and an unreachable backend the same way from the caller's point of view.
type LeaderboardCache interface {
	Get(ctx context.Context, offset, limit int) (*LeaderboardPage, bool, error)
	Set(ctx context.Context, page *LeaderboardPage) error
	Invalidate(ctx context.Context) error
}

type LeaderboardService interface {
	Page(ctx context.Context, offset, limit int) (*LeaderboardPage, error)
	// Warm recomputes the first pages of DefaultLeaderboardLimit entries and
	// stores them in the cache.
	Warm(ctx context.Context, pages int) error
}

type leaderboardService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	cache    LeaderboardCache
	metrics  *observability.Metrics
}

func NewLeaderboardService(log *logger.Logger, userRepo repos.UserRepo, cache LeaderboardCache, metrics *observability.Metrics) LeaderboardService {
	return &leaderboardService{
		log:      log.With("service", "LeaderboardService"),
		userRepo: userRepo,
		cache:    cache,
		metrics:  metrics,
	}
}

// ClampLimit forces limit into [1, MaxLeaderboardLimit]; callers substitute
// DefaultLeaderboardLimit when the client sent none.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	}
	return limit
}

func (ls *leaderboardService) Page(ctx context.Context, offset, limit int) (*LeaderboardPage, error) {
	if offset < 0 {
		return nil, invalid("invalid_pagination", ErrInvalidPagination, "offset must not be negative")
	}
	limit = ClampLimit(limit)

	if ls.cache != nil {
		page, ok, err := ls.cache.Get(ctx, offset, limit)
		switch {
		case err != nil:
			ls.metrics.IncLeaderboardCache("error")
			ls.log.Warn("leaderboard cache read failed", "error", err)
		case ok:
			ls.metrics.IncLeaderboardCache("hit")
			return page, nil
		default:
			ls.metrics.IncLeaderboardCache("miss")
		}
	}
	return ls.refresh(ctx, offset, limit)
}

func (ls *leaderboardService) Warm(ctx context.Context, pages int) error {
	for i := 0; i < pages; i++ {
		page, err := ls.refresh(ctx, i*DefaultLeaderboardLimit, DefaultLeaderboardLimit)
		if err != nil {
			return err
		}
		if !page.HasNext {
			break
		}
	}
	return nil
}

// refresh reads count and page concurrently on the pool (never inside a
// shared transaction) and writes the result back to the cache.
func (ls *leaderboardService) refresh(ctx context.Context, offset, limit int) (*LeaderboardPage, error) {
	var (
		total int64
		rows  []*types.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := ls.userRepo.Count(dbctx.Context{Ctx: gctx})
		total = n
		return err
	})
	g.Go(func() error {
		r, err := ls.userRepo.ListByPoints(dbctx.Context{Ctx: gctx}, offset, limit)
		rows = r
		return err
	})
	if err := g.Wait(); err != nil {
		ls.log.Error("leaderboard query failed", "error", err)
		return nil, storeFailed("load leaderboard")
	}

	page := &LeaderboardPage{
		Entries: make([]LeaderboardEntry, 0, len(rows)),
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasNext: int64(offset)+int64(limit) < total,
		HasPrev: offset > 0,
	}
	for i, u := range rows {
		page.Entries = append(page.Entries, LeaderboardEntry{
			Rank:                    offset + i + 1,
			UserID:                  u.ID,
			DisplayName:             u.DisplayName,
			AvatarURL:               u.AvatarURL,
			TotalPoints:             u.TotalPoints,
			CurrentStreak:           u.Streak().Length,
			LongestStreak:           u.LongestStreak,
			TotalQuestionsAttempted: u.QuestionsAttempted(),
		})
	}
	if ls.cache != nil {
		if err := ls.cache.Set(ctx, page); err != nil {
			ls.log.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return page, nil
}
