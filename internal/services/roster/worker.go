package roster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Start performs one synchronous bootstrap refresh and then schedules the
// recurring refresh. A failed bootstrap is recorded, not fatal: the service
// comes up empty and heals on the next tick.
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.runCtx != nil {
		s.runMu.Unlock()
		return fmt.Errorf("roster: already started")
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.runMu.Unlock()

	if err := s.Refresh(s.runCtx); err != nil {
		s.log.Warn("bootstrap refresh failed; starting with empty schedule", slog.Any("err", err))
	}

	s.startTimerLocked()
	return nil
}

func (s *Service) startTimerLocked() {
	s.mu.Lock()
	interval := s.cfg.RefreshInterval
	loc := s.cfg.Location
	s.mu.Unlock()
	if interval <= 0 {
		interval = time.Minute
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	runCtx := s.runCtx
	if runCtx == nil {
		return
	}
	c := cron.New(cron.WithLocation(loc))
	// @every accepts a Go duration; the refresh guard makes a tick that
	// fires while the previous cycle still runs a no-op.
	if _, err := c.AddFunc("@every "+interval.String(), func() {
		_ = s.Refresh(runCtx)
	}); err != nil {
		s.log.Error("refresh schedule rejected", slog.Any("err", err))
		return
	}
	c.Start()
	s.timer = c
	s.log.Info("refresher started", slog.Duration("interval", interval), slog.String("tz", loc.String()))
}

func (s *Service) restartTimer() {
	s.runMu.Lock()
	c := s.timer
	s.timer = nil
	running := s.runCtx != nil
	s.runMu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	if running {
		s.startTimerLocked()
	}
}

// Stop halts the timer and waits (bounded by ctx) for a running cycle.
func (s *Service) Stop(ctx context.Context) {
	s.runMu.Lock()
	c := s.timer
	s.timer = nil
	cancel := s.runCancel
	s.runCtx, s.runCancel = nil, nil
	s.runMu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if cancel != nil {
		cancel()
	}
	s.log.Info("refresher stopped")
}
