// Package notify posts duty announcements to a Telegram chat on a cron
// schedule. The announcer is optional: without a token the service is a
// no-op and the rest of the application does not change behavior.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"dutyboard/internal/schedule"
)

var ErrDisabled = errors.New("notify: announcer disabled")

// Config controls the announcer.
type Config struct {
	Enabled bool
	// Token is the Telegram bot token.
	Token string
	// ChatID receives the announcements.
	ChatID int64
	// AnnounceSpec is a cron expression for the daily announcement.
	AnnounceSpec string
	// RatePerMin caps outgoing sends.
	RatePerMin int
	// RetryMax is the number of retries after a failed send.
	RetryMax int
}

// Sender delivers one text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Roster is the slice of the schedule service the announcer reads.
type Roster interface {
	Today() (schedule.DutyRecord, bool)
	Now() time.Time
}

// Service sends the daily duty announcement.
type Service struct {
	log    *slog.Logger
	roster Roster

	mu      sync.Mutex
	cfg     Config
	sender  Sender
	limiter *rate.Limiter

	runMu sync.Mutex
	timer *cron.Cron
}

func New(cfg Config, roster Roster, sender Sender, log *slog.Logger) *Service {
	s := &Service{roster: roster, sender: sender, log: log}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.AnnounceSpec == "" {
		cfg.AnnounceSpec = "0 9 * * *"
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = 20
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMin)/60.0), 1)
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled && s.sender != nil
}

// Announce sends today's duty to the configured chat, retrying with a
// short backoff on failure.
func (s *Service) Announce(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.cfg
	sender := s.sender
	lim := s.limiter
	s.mu.Unlock()
	if !cfg.Enabled || sender == nil {
		return ErrDisabled
	}

	rec, ok := s.roster.Today()
	text := FormatDaily(rec, ok, s.roster.Now())

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryMax; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := sender.Send(sendCtx, cfg.ChatID, text)
		cancel()
		if err == nil {
			s.log.Info("duty announcement sent", slog.Int64("chat_id", cfg.ChatID))
			return nil
		}
		lastErr = err
		s.log.Warn("announcement send failed",
			slog.Int("attempt", attempt+1), slog.Any("err", err))

		select {
		case <-time.After(time.Duration(attempt+1) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// Start schedules the recurring announcement. Disabled, it is a no-op.
func (s *Service) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.log.Debug("announcer disabled")
		return nil
	}
	s.mu.Lock()
	spec := s.cfg.AnnounceSpec
	s.mu.Unlock()

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := s.Announce(context.Background()); err != nil && !errors.Is(err, ErrDisabled) {
			s.log.Error("scheduled announcement failed", slog.Any("err", err))
		}
	}); err != nil {
		return err
	}
	c.Start()

	s.runMu.Lock()
	s.timer = c
	s.runMu.Unlock()
	s.log.Info("announcer started", slog.String("schedule", spec))
	return nil
}

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
