package config

// Config is the single configuration document for dutyboard. JSON or YAML;
// unknown fields are rejected so typos surface at startup instead of being
// silently ignored.
//
// All durations are Go duration strings (e.g. "500ms", "15s", "1m").
type Config struct {
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
	Source  SourceConfig  `json:"source"`
	Roster  RosterConfig  `json:"roster"`
	Clock   ClockConfig   `json:"clock"`
	Notify  *NotifyConfig `json:"notify,omitempty"`
}

// ServerConfig controls the HTTP layer.
type ServerConfig struct {
	// Addr is the listen address, default ":8080".
	Addr string `json:"addr,omitempty"`
	// DevMode keeps gin in debug mode and verbose request logging.
	DevMode bool `json:"dev_mode,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SourceConfig selects where worksheet grids come from.
//
// kind "google" reads via the Sheets API (the normal deployment); kind
// "xlsx" reads a local workbook file (shared-drive rosters, tests).
type SourceConfig struct {
	Kind   string       `json:"kind"`
	Google GoogleConfig `json:"google,omitempty"`
	XLSX   XLSXConfig   `json:"xlsx,omitempty"`
}

type GoogleConfig struct {
	// SheetURL is a full document URL or a bare spreadsheet ID.
	// Overridable via DUTYBOARD_SHEET_URL. Required for kind "google".
	SheetURL string `json:"sheet_url"`
	// CredentialsFile is a service-account JSON key path.
	// Overridable via DUTYBOARD_CREDENTIALS_FILE.
	CredentialsFile string `json:"credentials_file,omitempty"`
	// FetchTimeout bounds each API call (default "15s").
	FetchTimeout string `json:"fetch_timeout,omitempty"`
	// RatePerMinute caps API calls (default 30; the quota is per-minute).
	RatePerMinute int `json:"rate_per_minute,omitempty"`
}

type XLSXConfig struct {
	Path string `json:"path"`
	// Watch triggers an immediate refresh when the workbook file changes.
	Watch bool `json:"watch,omitempty"`
}

// RosterConfig controls the schedule cache and its background refresher.
type RosterConfig struct {
	// RefreshInterval between refresh cycles (default "60s").
	RefreshInterval string `json:"refresh_interval,omitempty"`
	// MorningSheet / EveningSheet are the worksheet tab names.
	MorningSheet string `json:"morning_sheet"`
	EveningSheet string `json:"evening_sheet"`
	// Timezone for "today" computations (IANA name, default "Local").
	// Overridable via DUTYBOARD_TZ.
	Timezone string `json:"timezone,omitempty"`
}

// ClockConfig controls the best-effort NTP clock.
type ClockConfig struct {
	Enabled bool `json:"enabled"`
	// Servers tried in order each sync (defaults cover the usual pools).
	Servers []string `json:"servers,omitempty"`
	// SyncInterval between offset refreshes (default "1m").
	SyncInterval string `json:"sync_interval,omitempty"`
	// Timeout per NTP query (default "5s").
	Timeout string `json:"timeout,omitempty"`
}

// NotifyConfig controls the optional Telegram duty announcement. Disabled
// when the section is omitted or the token is empty.
type NotifyConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chat_id"`
	// AnnounceSpec is a cron spec for the announcement (default "0 9 * * *").
	AnnounceSpec string `json:"announce_spec,omitempty"`
}
