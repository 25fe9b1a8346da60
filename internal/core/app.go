// Package core assembles the application: config, logging, the worksheet
// source, the roster cache, the NTP clock, the announcer, and the HTTP
// server, supervised as one unit.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dutyboard/internal/config"
	"dutyboard/internal/runtime/supervisor"
	"dutyboard/internal/server"
	"dutyboard/internal/services/clock"
	"dutyboard/internal/services/logging"
	"dutyboard/internal/services/notify"
	"dutyboard/internal/services/roster"
	"dutyboard/internal/source"
	"dutyboard/internal/version"
	"dutyboard/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  *slog.Logger
	logs *logging.Service

	src  source.Source
	xlsx *source.XLSXSource // set when the source is a watched workbook

	clock  *clock.Service
	roster *roster.Service
	notif  *notify.Service
	srv    *server.Server
}

func NewApp(ctx context.Context, cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logging.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(slog.String("comp", "app"))
	cfgm.SetLogger(log.With(slog.String("comp", "config")))

	a := &App{cfgPath: cfgPath, cfgm: cfgm, log: log, logs: logSvc}

	if err := a.buildSource(ctx, cfg); err != nil {
		logSvc.Close()
		return nil, err
	}

	a.clock = clock.New(clockConfig(cfg), log.With(slog.String("comp", "clock")))

	rosterCfg, err := rosterConfig(cfg)
	if err != nil {
		logSvc.Close()
		return nil, err
	}
	a.roster = roster.New(rosterCfg, a.src, a.clock, log.With(slog.String("comp", "roster")))

	var sender notify.Sender
	notifCfg := notifyConfig(cfg)
	if notifCfg.Enabled {
		sender, err = notify.NewTelegramSender(notifCfg.Token)
		if err != nil {
			logSvc.Close()
			return nil, fmt.Errorf("notify: %w", err)
		}
	}
	a.notif = notify.New(notifCfg, a.roster, sender, log.With(slog.String("comp", "notify")))

	a.srv = server.New(server.Config{
		Addr:    cfg.Server.Addr,
		DevMode: cfg.Server.DevMode,
	}, a.roster, a.clock, log.With(slog.String("comp", "http")))

	log.Info("dutyboard configured",
		slog.String("version", version.Version),
		slog.String("addr", cfg.Server.Addr),
		slog.String("source", cfg.Source.Kind),
		slog.String("refresh_interval", cfg.Roster.RefreshInterval),
		slog.String("timezone", cfg.Roster.Timezone),
		slog.Bool("ntp", cfg.Clock.Enabled),
		slog.Bool("announcer", notifCfg.Enabled))

	return a, nil
}

func (a *App) buildSource(ctx context.Context, cfg *config.Config) error {
	switch cfg.Source.Kind {
	case "google":
		fetchTimeout, err := config.ParseDurationField("source.google.fetch_timeout", cfg.Source.Google.FetchTimeout)
		if err != nil {
			return err
		}
		src, err := source.NewGoogle(ctx, source.GoogleConfig{
			SpreadsheetURL:  cfg.Source.Google.SheetURL,
			CredentialsFile: cfg.Source.Google.CredentialsFile,
			FetchTimeout:    fetchTimeout,
			RatePerMinute:   cfg.Source.Google.RatePerMinute,
		}, a.log.With(slog.String("comp", "source")))
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		a.src = src
	case "xlsx":
		x := source.NewXLSX(cfg.Source.XLSX.Path, a.log.With(slog.String("comp", "source")))
		a.src = x
		if cfg.Source.XLSX.Watch {
			a.xlsx = x
		}
	default:
		return fmt.Errorf("source.kind: unknown kind %q", cfg.Source.Kind)
	}
	return nil
}

func clockConfig(cfg *config.Config) clock.Config {
	sync, _ := config.ParseDurationOrDefault("clock.sync_interval", cfg.Clock.SyncInterval, time.Minute)
	timeout, _ := config.ParseDurationOrDefault("clock.timeout", cfg.Clock.Timeout, 5*time.Second)
	return clock.Config{
		Enabled:      cfg.Clock.Enabled,
		Servers:      cfg.Clock.Servers,
		SyncInterval: sync,
		Timeout:      timeout,
	}
}

func rosterConfig(cfg *config.Config) (roster.Config, error) {
	interval, err := config.ParseDurationField("roster.refresh_interval", cfg.Roster.RefreshInterval)
	if err != nil {
		return roster.Config{}, err
	}
	loc := time.Local
	if tz := cfg.Roster.Timezone; tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return roster.Config{}, fmt.Errorf("roster.timezone: %w", err)
		}
	}
	return roster.Config{
		RefreshInterval: interval,
		MorningSheet:    cfg.Roster.MorningSheet,
		EveningSheet:    cfg.Roster.EveningSheet,
		Location:        loc,
	}, nil
}

func notifyConfig(cfg *config.Config) notify.Config {
	if cfg.Notify == nil {
		return notify.Config{}
	}
	return notify.Config{
		Enabled:      cfg.Notify.Enabled,
		Token:        cfg.Notify.Token,
		ChatID:       cfg.Notify.ChatID,
		AnnounceSpec: cfg.Notify.AnnounceSpec,
	}
}

// Done is closed when the supervisor context is canceled (fatal error or
// Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(logx.NewConsole("warn").With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true))
	runCtx := a.sup.Context()

	// Clock first so the bootstrap refresh already uses corrected time.
	if err := a.clock.Start(runCtx); err != nil {
		return err
	}
	if err := a.roster.Start(runCtx); err != nil {
		return err
	}
	if err := a.notif.Start(runCtx); err != nil {
		return err
	}
	if err := a.srv.Start(runCtx); err != nil {
		return err
	}

	// Hot reload: apply the safe subset live (log level, refresh interval,
	// sheet names, announcer). Source and listener changes need a restart.
	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				a.applyConfig(newCfg)
			}
		}
	})
	a.sup.GoRestart("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	if a.xlsx != nil {
		a.sup.GoRestart("xlsx.watch", func(c context.Context) error {
			return a.xlsx.Watch(c, func() {
				if err := a.roster.Refresh(c); err != nil {
					a.log.Warn("refresh after workbook change failed", slog.Any("err", err))
				}
			})
		})
	}

	a.log.Info("app started")
	return nil
}

func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logging.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	if rc, err := rosterConfig(cfg); err != nil {
		a.log.Warn("roster config rejected on reload", slog.Any("err", err))
	} else {
		a.roster.Apply(rc)
	}

	a.notif.Apply(notifyConfig(cfg))
	a.log.Info("config reloaded")
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	a.sup.Cancel()

	a.srv.Stop(ctx)
	a.notif.Stop(ctx)
	a.roster.Stop(ctx)
	a.clock.Stop(ctx)

	timeout := 5 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < timeout {
			timeout = rem
		}
	}
	a.sup.Wait(timeout)

	a.log.Info("stopped")
	a.logs.Close()
	return nil
}
