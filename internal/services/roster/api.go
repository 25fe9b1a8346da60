package roster

import (
	"time"

	"dutyboard/internal/schedule"
)

// Current returns the snapshot being served. The records slice is shared
// and must not be mutated.
func (s *Service) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Today returns the duty record for the clock's current date, if the
// schedule has one.
func (s *Service) Today() (schedule.DutyRecord, bool) {
	now := s.now()
	snap := s.Current()
	return schedule.TodayDuty(snap.Records, now)
}

// TwoWorkWeeks projects the current and next Monday–Saturday week from the
// served snapshot; always 2 groups of 6 records.
func (s *Service) TwoWorkWeeks() [][]schedule.DutyRecord {
	now := s.now()
	snap := s.Current()
	return schedule.TwoWorkWeeks(snap.Records, now)
}

// Health reports refresh bookkeeping for the health endpoint.
func (s *Service) Health() Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Health{
		DataLoaded: !s.snap.FetchedAt.IsZero(),
		LastUpdate: s.lastSuccess,
		LastError:  s.lastError,
		Cycles:     s.cycles,
	}
}

// Now exposes the service clock in its configured timezone, for rendering.
func (s *Service) Now() time.Time { return s.now() }
