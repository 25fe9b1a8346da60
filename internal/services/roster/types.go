package roster

import (
	"time"

	"dutyboard/internal/schedule"
)

// Config controls the roster service.
type Config struct {
	// RefreshInterval between background refresh cycles.
	RefreshInterval time.Duration
	// MorningSheet / EveningSheet are worksheet tab names; an empty name
	// skips that sheet entirely.
	MorningSheet string
	EveningSheet string
	// Location for "today" computations and short-form year inference.
	Location *time.Location
}

// Clock supplies the service's notion of now (the NTP-backed clock in
// production, a fixed clock in tests).
type Clock interface {
	Now() time.Time
}

// Snapshot is one immutable, fully-merged schedule plus fetch metadata.
// Records must not be mutated after installation; readers share the slice.
type Snapshot struct {
	Records   []schedule.DutyRecord
	FetchedAt time.Time
	Err       string
}

// Health is the read-only refresh bookkeeping exposed to /api/health.
type Health struct {
	DataLoaded bool
	LastUpdate time.Time
	LastError  string
	Cycles     uint64
}
