package clock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDisabledServesSystemClock(t *testing.T) {
	s := New(Config{Enabled: false}, discardLogger())
	before := time.Now()
	got := s.Now()
	if got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Errorf("Now() = %v, outside system clock window", got)
	}
	if err := s.Sync(context.Background()); err != nil {
		t.Errorf("Sync while disabled: %v", err)
	}
	if s.Synced() {
		t.Errorf("disabled clock reports synced")
	}
}

func TestSyncFallsBackAcrossServers(t *testing.T) {
	s := New(Config{
		Enabled: true,
		Servers: []string{"bad.example", "good.example"},
		Timeout: time.Second,
	}, discardLogger())

	const offset = 3 * time.Second
	s.query = func(server string, _ time.Duration) (time.Duration, error) {
		if server == "bad.example" {
			return 0, errors.New("timeout")
		}
		return offset, nil
	}

	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !s.Synced() {
		t.Fatalf("not synced after successful query")
	}
	if s.LastSync().IsZero() {
		t.Errorf("LastSync not recorded")
	}

	drift := time.Until(s.Now().Add(-offset))
	if drift < -time.Second || drift > time.Second {
		t.Errorf("Now() not shifted by offset, drift %v", drift)
	}
}

func TestSyncKeepsOffsetWhenAllServersFail(t *testing.T) {
	s := New(Config{
		Enabled: true,
		Servers: []string{"a.example", "b.example"},
	}, discardLogger())

	s.query = func(string, time.Duration) (time.Duration, error) { return 2 * time.Second, nil }
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	s.query = func(string, time.Duration) (time.Duration, error) { return 0, errors.New("unreachable") }
	if err := s.Sync(context.Background()); err == nil {
		t.Fatalf("second Sync: expected error")
	}

	s.mu.Lock()
	off := s.offset
	s.mu.Unlock()
	if off != 2*time.Second {
		t.Errorf("offset = %v, want previous 2s kept", off)
	}
	if !s.Synced() {
		t.Errorf("synced flag dropped on failure")
	}
}
