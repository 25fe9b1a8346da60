package roster

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"dutyboard/internal/schedule"
	"dutyboard/internal/sheet"
	"dutyboard/internal/source"
)

type Service struct {
	src   source.Source
	clock Clock
	log   *slog.Logger

	mu          sync.Mutex
	cfg         Config
	snap        Snapshot
	lastSuccess time.Time
	lastError   string
	cycles      uint64

	// Single-slot refresh guard: at most one cycle in flight.
	refreshing atomic.Bool

	// Timer lifecycle; one cron entry drives the recurring refresh.
	runMu     sync.Mutex
	runCtx    context.Context
	runCancel context.CancelFunc
	timer     *cron.Cron
}

func New(cfg Config, src source.Source, clock Clock, log *slog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{src: src, clock: clock, log: log, cfg: cfg}
}

func (s *Service) now() time.Time {
	s.mu.Lock()
	loc := s.cfg.Location
	s.mu.Unlock()
	return s.clock.Now().In(loc)
}

// Refresh runs one fetch→scan→merge→install cycle. While a cycle is in
// flight, further calls return immediately; overlap is defined behavior,
// not an error. The returned error reports the cycle outcome for callers
// that care (bootstrap, tests); it is already recorded in the snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.log.Debug("refresh already in flight; skipping")
		return nil
	}
	defer s.refreshing.Store(false)
	return s.cycle(ctx)
}

func (s *Service) cycle(ctx context.Context) error {
	s.mu.Lock()
	morningName, eveningName := s.cfg.MorningSheet, s.cfg.EveningSheet
	s.mu.Unlock()

	now := s.now()
	start := time.Now()

	// All fetching and merging happens before the lock is taken; only the
	// finished result is installed under it.
	morning, err := s.fetchSheet(ctx, morningName, sheet.KindMorning, now.Year())
	if err != nil {
		s.recordFailure(err)
		return err
	}
	evening, err := s.fetchSheet(ctx, eveningName, sheet.KindEvening, now.Year())
	if err != nil {
		s.recordFailure(err)
		return err
	}

	records := schedule.Merge(morning, evening)

	s.mu.Lock()
	s.snap = Snapshot{Records: records, FetchedAt: now}
	s.lastSuccess = now
	s.lastError = ""
	s.cycles++
	s.mu.Unlock()

	s.log.Info("schedule refreshed",
		slog.Int("records", len(records)),
		slog.Int("morning", len(morning)),
		slog.Int("evening", len(evening)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// fetchSheet returns the scanned assignments of one worksheet. A missing
// worksheet degrades to no assignments; any other error is a cycle failure.
func (s *Service) fetchSheet(ctx context.Context, name string, kind sheet.Kind, refYear int) ([]sheet.RawAssignment, error) {
	if name == "" {
		return nil, nil
	}
	grid, err := s.src.FetchGrid(ctx, name)
	if err != nil {
		if source.IsSheetMissing(err) {
			s.log.Warn("worksheet missing; serving without it",
				slog.String("sheet", name), slog.String("kind", string(kind)))
			return nil, nil
		}
		return nil, err
	}
	as := sheet.ScanGrid(grid, kind, refYear)
	s.log.Debug("worksheet scanned",
		slog.String("sheet", name),
		slog.String("kind", string(kind)),
		slog.Int("assignments", len(as)))
	return as, nil
}

func (s *Service) recordFailure(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.snap.Err = s.lastError
	s.cycles++
	s.mu.Unlock()
	s.log.Error("refresh cycle failed; keeping previous snapshot", slog.Any("err", err))
}

// Apply updates the refresh configuration. An interval change takes effect
// by restarting the timer (see worker.go); sheet names and location apply
// on the next cycle.
func (s *Service) Apply(cfg Config) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s.mu.Lock()
	restart := cfg.RefreshInterval != s.cfg.RefreshInterval
	s.cfg = cfg
	s.mu.Unlock()
	if restart {
		s.restartTimer()
	}
}
