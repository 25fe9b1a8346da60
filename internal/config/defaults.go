package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultAddr            = ":8080"
	DefaultRefreshInterval = "60s"
	DefaultFetchTimeout    = "15s"
	DefaultSyncInterval    = "1m"
	DefaultNTPTimeout      = "5s"
	DefaultAnnounceSpec    = "0 9 * * *"
)

// DefaultNTPServers mirrors the public pools the service has historically
// fallen back through.
var DefaultNTPServers = []string{
	"time.google.com",
	"time.windows.com",
	"pool.ntp.org",
	"time.apple.com",
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = DefaultAddr
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Source.Kind) == "" {
		c.Source.Kind = "google"
	}
	if strings.TrimSpace(c.Source.Google.FetchTimeout) == "" {
		c.Source.Google.FetchTimeout = DefaultFetchTimeout
	}
	if strings.TrimSpace(c.Roster.RefreshInterval) == "" {
		c.Roster.RefreshInterval = DefaultRefreshInterval
	}
	if strings.TrimSpace(c.Clock.SyncInterval) == "" {
		c.Clock.SyncInterval = DefaultSyncInterval
	}
	if strings.TrimSpace(c.Clock.Timeout) == "" {
		c.Clock.Timeout = DefaultNTPTimeout
	}
	if len(c.Clock.Servers) == 0 {
		c.Clock.Servers = append([]string(nil), DefaultNTPServers...)
	}
	if c.Notify != nil && strings.TrimSpace(c.Notify.AnnounceSpec) == "" {
		c.Notify.AnnounceSpec = DefaultAnnounceSpec
	}
}

// ApplyEnv applies environment overrides for deployment-varying values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DUTYBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DUTYBOARD_SHEET_URL"); v != "" {
		c.Source.Google.SheetURL = v
	}
	if v := os.Getenv("DUTYBOARD_CREDENTIALS_FILE"); v != "" {
		c.Source.Google.CredentialsFile = v
	}
	if v := os.Getenv("DUTYBOARD_TZ"); v != "" {
		c.Roster.Timezone = v
	}
}

// Validate rejects configs the services cannot run with. An absent
// spreadsheet reference for the google source is fatal at startup.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "google":
		if strings.TrimSpace(c.Source.Google.SheetURL) == "" {
			return errors.New("source.google.sheet_url (or DUTYBOARD_SHEET_URL) is required")
		}
	case "xlsx":
		if strings.TrimSpace(c.Source.XLSX.Path) == "" {
			return errors.New("source.xlsx.path is required")
		}
	default:
		return fmt.Errorf("source.kind: unknown kind %q", c.Source.Kind)
	}

	if strings.TrimSpace(c.Roster.MorningSheet) == "" && strings.TrimSpace(c.Roster.EveningSheet) == "" {
		return errors.New("roster: at least one of morning_sheet/evening_sheet must be set")
	}
	if _, err := ParseDurationField("roster.refresh_interval", c.Roster.RefreshInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("source.google.fetch_timeout", c.Source.Google.FetchTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("clock.sync_interval", c.Clock.SyncInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("clock.timeout", c.Clock.Timeout); err != nil {
		return err
	}
	if c.Notify != nil && c.Notify.Enabled && strings.TrimSpace(c.Notify.Token) == "" {
		return errors.New("notify.token is required when notify.enabled")
	}
	return nil
}
