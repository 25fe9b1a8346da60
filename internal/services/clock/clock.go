// Package clock keeps a best-effort NTP-corrected notion of the current
// time. The rest of the application reads time through Service.Now; when
// synchronization is disabled or no server answers, Now falls back to the
// system clock unchanged.
package clock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/robfig/cron/v3"
)

// Config controls NTP synchronization.
type Config struct {
	// Enabled turns synchronization on. Disabled, Now is the system clock.
	Enabled bool
	// Servers are tried in order until one answers.
	Servers []string
	// SyncInterval between background queries.
	SyncInterval time.Duration
	// Timeout per server query.
	Timeout time.Duration
}

// Service serves system time corrected by the last measured NTP offset.
type Service struct {
	log *slog.Logger

	mu       sync.Mutex
	cfg      Config
	offset   time.Duration
	synced   bool
	lastSync time.Time

	runMu sync.Mutex
	timer *cron.Cron

	// query is swappable for tests.
	query func(server string, timeout time.Duration) (time.Duration, error)
}

func New(cfg Config, log *slog.Logger) *Service {
	return &Service{cfg: cfg, log: log, query: queryNTP}
}

func queryNTP(server string, timeout time.Duration) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Now returns the system clock shifted by the last known NTP offset.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	off := s.offset
	s.mu.Unlock()
	return time.Now().Add(off)
}

// Synced reports whether at least one query has succeeded.
func (s *Service) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// LastSync returns the wall time of the last successful query, zero if none.
func (s *Service) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// Sync queries the configured servers in order and stores the first good
// offset. All servers failing leaves the previous offset in place.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	if !cfg.Enabled {
		return nil
	}

	var lastErr error
	for _, server := range cfg.Servers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		off, err := s.query(server, cfg.Timeout)
		if err != nil {
			lastErr = err
			s.log.Debug("ntp query failed", slog.String("server", server), slog.Any("err", err))
			continue
		}
		s.mu.Lock()
		s.offset = off
		s.synced = true
		s.lastSync = time.Now()
		s.mu.Unlock()
		s.log.Debug("ntp synced", slog.String("server", server), slog.Duration("offset", off))
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("clock: no ntp servers configured")
	}
	s.log.Warn("ntp sync failed; keeping previous offset", slog.Any("err", lastErr))
	return lastErr
}

// Start performs one synchronous best-effort sync and schedules periodic
// resyncs. With synchronization disabled it is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	if !cfg.Enabled {
		return nil
	}

	_ = s.Sync(ctx)

	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = time.Minute
	}
	c := cron.New()
	if _, err := c.AddFunc("@every "+interval.String(), func() {
		_ = s.Sync(context.Background())
	}); err != nil {
		return err
	}
	c.Start()

	s.runMu.Lock()
	s.timer = c
	s.runMu.Unlock()
	s.log.Info("ntp clock started",
		slog.Int("servers", len(cfg.Servers)),
		slog.Duration("interval", interval))
	return nil
}

// Stop halts the resync timer, waiting bounded by ctx for a running query.
func (s *Service) Stop(ctx context.Context) {
	s.runMu.Lock()
	c := s.timer
	s.timer = nil
	s.runMu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
