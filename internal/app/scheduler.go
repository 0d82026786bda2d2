package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const dayLayout = "2006-01-02"

// Transitioner runs the daily transition; implemented by Coordinator.
type Transitioner interface {
	RunDailyTransition(ctx context.Context, now time.Time) error
}

// FireGuard claims a calendar day so only one poll (or one bot instance) fires it.
type FireGuard interface {
	Claim(ctx context.Context, day string) (bool, error)
	Release(ctx context.Context, day string) error
}

// ScheduleConfig describes when the daily transition fires.
type ScheduleConfig struct {
	Hour         int
	Minute       int
	Location     *time.Location
	PollInterval time.Duration
	// CatchUp is how long after the trigger minute a poll may still fire a day
	// that has not fired yet.
	CatchUp time.Duration
}

// Scheduler polls the clock and fires the daily transition once per local day.
type Scheduler struct {
	cfg    ScheduleConfig
	target Transitioner
	guard  FireGuard
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	lastFired string
}

func NewScheduler(cfg ScheduleConfig, target Transitioner, guard FireGuard, logger *slog.Logger) *Scheduler {
	return NewSchedulerWithClock(cfg, target, guard, logger, time.Now)
}

// NewSchedulerWithClock is used by tests for deterministic polling.
func NewSchedulerWithClock(cfg ScheduleConfig, target Transitioner, guard FireGuard, logger *slog.Logger, now func() time.Time) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.CatchUp < time.Minute {
		cfg.CatchUp = time.Minute
	}
	if guard == nil {
		guard = NewLocalFireGuard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cfg: cfg, target: target, guard: guard, logger: logger, now: now}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started",
		"trigger", time.Date(0, 1, 1, s.cfg.Hour, s.cfg.Minute, 0, 0, s.cfg.Location).Format("15:04 MST"),
		"poll", s.cfg.PollInterval.String())
	for {
		if _, err := s.Tick(ctx); err != nil {
			s.logger.Warn("daily transition skipped", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs one poll and reports whether the transition fired.
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	local := s.now().In(s.cfg.Location)
	if !s.Due(local) {
		return false, nil
	}
	day := local.Format(dayLayout)
	if s.LastFired() == day {
		return false, nil
	}

	claimed, err := s.guard.Claim(ctx, day)
	if err != nil {
		return false, errors.Wrapf(err, "claim %s", day)
	}
	if !claimed {
		// another instance already fired today
		s.markFired(day)
		return false, nil
	}

	if err := s.target.RunDailyTransition(ctx, local); err != nil {
		if rerr := s.guard.Release(ctx, day); rerr != nil {
			s.logger.Error("release fire guard", "day", day, "error", rerr)
		}
		return false, err
	}
	s.markFired(day)
	return true, nil
}

// Due reports whether local lies in [trigger, trigger+CatchUp) of its own day.
func (s *Scheduler) Due(local time.Time) bool {
	trigger := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.Hour, s.cfg.Minute, 0, 0, local.Location())
	return !local.Before(trigger) && local.Before(trigger.Add(s.cfg.CatchUp))
}

// LastFired returns the local date (YYYY-MM-DD) of the last successful firing.
func (s *Scheduler) LastFired() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFired
}

func (s *Scheduler) markFired(day string) {
	s.mu.Lock()
	s.lastFired = day
	s.mu.Unlock()
}

// LocalFireGuard is an in-process FireGuard.
type LocalFireGuard struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewLocalFireGuard() *LocalFireGuard {
	return &LocalFireGuard{claimed: make(map[string]struct{})}
}

func (g *LocalFireGuard) Claim(_ context.Context, day string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.claimed[day]; ok {
		return false, nil
	}
	g.claimed[day] = struct{}{}
	return true, nil
}

func (g *LocalFireGuard) Release(_ context.Context, day string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, day)
	return nil
}
