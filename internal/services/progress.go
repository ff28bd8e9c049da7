package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/data/tx"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/modules/progress/gate"
	"github.com/yungbote/prepstack-backend/internal/modules/progress/streak"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/apierr"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const DefaultMaxPointsPerAward = 1000

type StreakResult struct {
	PreviousStreak int    `json:"previous_streak"`
	CurrentStreak  int    `json:"current_streak"`
	Action         string `json:"action"`
	LastUpdateDate string `json:"last_update_date"`
	LongestStreak  int    `json:"longest_streak"`
}

type CounterResult struct {
	Column   string `json:"column"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

type PointsResult struct {
	Amount   int `json:"amount"`
	Previous int `json:"previous"`
	Total    int `json:"total"`
}

// CacheInvalidator drops cached leaderboard pages after a ranking change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ProgressConfig struct {
	MaxPointsPerAward int
	Clock             streak.Clock
}

type ProgressService interface {
	UpdateStreak(ctx context.Context) (*StreakResult, error)
	IncrementCounter(ctx context.Context, column string) (*CounterResult, error)
	AwardPoints(ctx context.Context, amount int) (*PointsResult, error)
	Overview(ctx context.Context, category string) (*gate.Overview, error)
}

type progressService struct {
	log      *logger.Logger
	runner   tx.TxRunner
	userRepo repos.UserRepo
	itemRepo repos.ItemRepo
	notifier ProgressNotifier
	cache    CacheInvalidator
	metrics  *observability.Metrics
	cfg      ProgressConfig
}

func NewProgressService(
	log *logger.Logger,
	runner tx.TxRunner,
	userRepo repos.UserRepo,
	itemRepo repos.ItemRepo,
	notifier ProgressNotifier,
	cache CacheInvalidator,
	metrics *observability.Metrics,
	cfg ProgressConfig,
) ProgressService {
	if cfg.MaxPointsPerAward <= 0 {
		cfg.MaxPointsPerAward = DefaultMaxPointsPerAward
	}
	if cfg.Clock == nil {
		cfg.Clock = streak.LocalClock(nil)
	}
	return &progressService{
		log:      log.With("service", "ProgressService"),
		runner:   runner,
		userRepo: userRepo,
		itemRepo: itemRepo,
		notifier: notifier,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (ps *progressService) UpdateStreak(ctx context.Context) (*StreakResult, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var (
		res    *StreakResult
		userID uuid.UUID
	)
	err = ps.runner.InTx(ctx, func(dbc dbctx.Context) error {
		u, err := ps.resolveProfile(dbc, id)
		if err != nil {
			return err
		}
		userID = u.ID
		prev := u.Streak()
		if prev.Unreadable() {
			ps.log.Warn("stored streak unreadable, starting over", "user_id", u.ID)
		}
		next, action := streak.Next(ps.cfg.Clock(), prev)
		longest := max(u.LongestStreak, next.Length)
		res = &StreakResult{
			PreviousStreak: prev.Length,
			CurrentStreak:  next.Length,
			Action:         string(action),
			LastUpdateDate: next.LastUpdate,
			LongestStreak:  longest,
		}
		if !action.Mutates() {
			return nil
		}
		return ps.userRepo.SaveStreak(dbc, u.ID, next, longest)
	})
	if err != nil {
		return nil, ps.mutationError("streak", err)
	}
	if res.Action == string(streak.ActionNoChange) {
		ps.metrics.IncProgressMutation("streak", "no_change")
		return res, nil
	}
	ps.metrics.IncProgressMutation("streak", "ok")
	ps.invalidateLeaderboard(ctx)
	ps.notifier.StreakUpdated(ctx, userID, res)
	return res, nil
}

func (ps *progressService) IncrementCounter(ctx context.Context, column string) (*CounterResult, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	column = strings.TrimSpace(column)
	if !content.IsCounterColumn(column) {
		ps.metrics.IncProgressMutation("counter", "invalid")
		return nil, invalid("invalid_column", ErrInvalidColumn, "%q is not one of %s", column, strings.Join(content.CounterColumns(), ", "))
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := ps.resolveProfile(dbc, id)
	if err != nil {
		return nil, ps.mutationError("counter", err)
	}
	prev, cur, err := ps.userRepo.IncrementColumn(dbc, u.ID, column)
	if err != nil {
		return nil, ps.mutationError("counter", err)
	}
	res := &CounterResult{Column: column, Previous: prev, Current: cur}
	ps.metrics.IncProgressMutation("counter", "ok")
	ps.invalidateLeaderboard(ctx)
	ps.notifier.CounterIncremented(ctx, u.ID, res)
	return res, nil
}

func (ps *progressService) AwardPoints(ctx context.Context, amount int) (*PointsResult, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	// The upper bound comes from config, so it is built per call.
	if err := validateVar("invalid_points", ErrInvalidPoints, "amount", amount, fmt.Sprintf("gte=1,lte=%d", ps.cfg.MaxPointsPerAward)); err != nil {
		ps.metrics.IncProgressMutation("points", "invalid")
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := ps.resolveProfile(dbc, id)
	if err != nil {
		return nil, ps.mutationError("points", err)
	}
	prev, total, err := ps.userRepo.AddPoints(dbc, u.ID, amount)
	if err != nil {
		return nil, ps.mutationError("points", err)
	}
	res := &PointsResult{Amount: amount, Previous: prev, Total: total}
	ps.metrics.IncProgressMutation("points", "ok")
	ps.invalidateLeaderboard(ctx)
	ps.notifier.PointsAwarded(ctx, u.ID, res)
	return res, nil
}

// invalidateLeaderboard drops cached pages; entries carry streaks and
// counters as well as points.
func (ps *progressService) invalidateLeaderboard(ctx context.Context) {
	if ps.cache == nil {
		return
	}
	if err := ps.cache.Invalidate(ctx); err != nil {
		ps.log.Warn("leaderboard cache invalidation failed", "error", err)
	}
}

func (ps *progressService) Overview(ctx context.Context, category string) (*gate.Overview, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	cat, ok := content.Lookup(category)
	if !ok {
		return nil, invalid("invalid_category", ErrInvalidCategory, "%q", category)
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := ps.resolveProfile(dbc, id)
	if err != nil {
		return nil, ps.readError("overview", err)
	}
	attempted, _ := u.Counter(cat.CounterColumn)
	total, err := ps.itemRepo.Count(dbc, cat)
	if err != nil {
		return nil, ps.readError("overview", err)
	}
	ov := gate.BuildOverview(cat.Key, attempted, int(total), cat.TopicSize)
	return &ov, nil
}

func (ps *progressService) resolveProfile(dbc dbctx.Context, id *ctxutil.Identity) (*types.User, error) {
	u, err := ps.userRepo.Resolve(dbc, id.UserID, id.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, profileNotFound()
	}
	return u, nil
}

// mutationError maps store failures to update_failed; client-facing errors
// pass through untouched.
func (ps *progressService) mutationError(kind string, err error) error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		if errors.Is(err, ErrProfileNotFound) {
			ps.metrics.IncProgressMutation(kind, "not_found")
		}
		return ae
	case errors.Is(err, gorm.ErrRecordNotFound):
		ps.metrics.IncProgressMutation(kind, "not_found")
		return profileNotFound()
	}
	ps.metrics.IncProgressMutation(kind, "error")
	ps.log.Error("progress write failed", "kind", kind, "error", err)
	return updateFailed()
}

func (ps *progressService) readError(op string, err error) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	ps.log.Error("progress read failed", "op", op, "error", err)
	return storeFailed(op)
}

func requireIdentity(ctx context.Context) (*ctxutil.Identity, error) {
	id := ctxutil.GetIdentity(ctx)
	if id == nil || (id.UserID == uuid.Nil && strings.TrimSpace(id.Email) == "") {
		return nil, unauthenticated("")
	}
	return id, nil
}
