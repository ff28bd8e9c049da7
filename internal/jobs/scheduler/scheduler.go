package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// LeaderboardWarmer recomputes the first leaderboard pages into the cache.
type LeaderboardWarmer interface {
	Warm(ctx context.Context, pages int) error
}

// TokenPurger deletes expired session rows.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Config struct {
	WarmInterval  time.Duration
	WarmPages     int
	PurgeInterval time.Duration
	JobTimeout    time.Duration
}

// Scheduler runs periodic maintenance next to the API. A zero interval
// disables the matching job.
type Scheduler struct {
	log       *logger.Logger
	cron      *gocron.Scheduler
	cfg       Config
	warmer    LeaderboardWarmer
	purger    TokenPurger
	ctx       context.Context
	cancel    context.CancelFunc
	scheduled int
}

func New(log *logger.Logger, cfg Config, warmer LeaderboardWarmer, purger TokenPurger) *Scheduler {
	if cfg.WarmPages <= 0 {
		cfg.WarmPages = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		log:    log.With("service", "Scheduler"),
		cron:   s,
		cfg:    cfg,
		warmer: warmer,
		purger: purger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cancel != nil {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.warmer != nil && s.cfg.WarmInterval > 0 {
		if _, err := s.cron.Every(s.cfg.WarmInterval).Tag("leaderboard_warm").Do(s.warmLeaderboard); err != nil {
			return fmt.Errorf("schedule leaderboard warm: %w", err)
		}
		s.scheduled++
	}
	if s.purger != nil && s.cfg.PurgeInterval > 0 {
		if _, err := s.cron.Every(s.cfg.PurgeInterval).Tag("token_purge").Do(s.purgeTokens); err != nil {
			return fmt.Errorf("schedule token purge: %w", err)
		}
		s.scheduled++
	}
	if s.scheduled == 0 {
		s.log.Info("No scheduled jobs enabled")
		return nil
	}
	s.cron.StartAsync()
	s.log.Info("Scheduler started",
		"jobs", s.scheduled,
		"warm_interval", s.cfg.WarmInterval.String(),
		"purge_interval", s.cfg.PurgeInterval.String(),
	)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cron.Stop()
}

// Jobs reports how many jobs Start registered.
func (s *Scheduler) Jobs() int { return s.scheduled }

func (s *Scheduler) warmLeaderboard() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.JobTimeout)
	defer cancel()
	if err := s.warmer.Warm(ctx, s.cfg.WarmPages); err != nil {
		s.log.Warn("leaderboard warm failed", "error", err)
	}
}

func (s *Scheduler) purgeTokens() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.JobTimeout)
	defer cancel()
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.log.Warn("token purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("purged expired tokens", "count", n)
	}
}
