package roster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dutyboard/internal/sheet"
	"dutyboard/internal/source"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeSource serves per-sheet grids or errors and counts fetches.
type fakeSource struct {
	mu      sync.Mutex
	grids   map[string]sheet.Grid
	errs    map[string]error
	fetches int32
	block   chan struct{} // when set, FetchGrid waits on it
}

func (f *fakeSource) FetchGrid(ctx context.Context, name string) (sheet.Grid, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, &source.FetchError{Op: name, Err: ctx.Err()}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if g, ok := f.grids[name]; ok {
		return g, nil
	}
	return nil, nil
}

func (f *fakeSource) set(name string, g sheet.Grid, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grids == nil {
		f.grids = map[string]sheet.Grid{}
	}
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	f.grids[name] = g
	f.errs[name] = err
}

func newTestService(src source.Source, now time.Time) *Service {
	return New(Config{
		RefreshInterval: time.Minute,
		MorningSheet:    "Morning",
		EveningSheet:    "Evening",
		Location:        time.UTC,
	}, src, fixedClock{t: now}, discardLogger())
}

var testNow = time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC)

func TestRefreshMergesBothSheets(t *testing.T) {
	src := &fakeSource{}
	src.set("Morning", sheet.Grid{{"06.01.2025"}, {"Petrov"}}, nil)
	src.set("Evening", sheet.Grid{{"06.01.2025"}, {"Ivanov"}}, nil)

	s := newTestService(src, testNow)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := s.Current()
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap.Records))
	}
	r := snap.Records[0]
	if r.Morning != "Petrov" || r.Evening != "Ivanov" {
		t.Errorf("record = %+v, want Petrov/Ivanov", r)
	}
	if snap.Err != "" {
		t.Errorf("unexpected snapshot error %q", snap.Err)
	}
	if snap.FetchedAt.IsZero() {
		t.Errorf("FetchedAt not set")
	}

	today, ok := s.Today()
	if !ok || today.Morning != "Petrov" {
		t.Errorf("Today() = %+v ok=%v, want Petrov", today, ok)
	}
}

// A missing worksheet degrades to empty, it does not fail the cycle.
func TestRefreshMissingSheetDegrades(t *testing.T) {
	src := &fakeSource{}
	src.set("Morning", nil, &wrapMissing{})
	src.set("Evening", sheet.Grid{{"06.01.2025"}, {"Ivanov"}}, nil)

	s := newTestService(src, testNow)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := s.Current()
	if len(snap.Records) != 1 || snap.Records[0].Evening != "Ivanov" {
		t.Fatalf("expected evening-only data, got %+v", snap.Records)
	}
	if snap.Records[0].Morning != "" {
		t.Errorf("morning = %q, want empty", snap.Records[0].Morning)
	}
}

type wrapMissing struct{}

func (w *wrapMissing) Error() string { return "sheet: " + source.ErrSheetMissing.Error() }
func (w *wrapMissing) Unwrap() error { return source.ErrSheetMissing }

// A connectivity failure keeps the previous snapshot and records the error.
func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{}
	src.set("Morning", sheet.Grid{{"06.01.2025"}, {"Petrov"}}, nil)
	src.set("Evening", sheet.Grid{{"06.01.2025"}, {"Ivanov"}}, nil)

	s := newTestService(src, testNow)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	first := s.Current()

	src.set("Morning", nil, &source.FetchError{Op: "Morning", Err: errors.New("connection refused")})
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatalf("cycle 2: expected error")
	}

	second := s.Current()
	if len(second.Records) != len(first.Records) || !second.FetchedAt.Equal(first.FetchedAt) {
		t.Errorf("snapshot changed on failed cycle: %+v vs %+v", second, first)
	}
	if second.Err == "" {
		t.Errorf("snapshot error not recorded")
	}

	h := s.Health()
	if !h.DataLoaded || h.LastError == "" || h.Cycles != 2 {
		t.Errorf("health = %+v, want loaded with error after 2 cycles", h)
	}
}

// N simultaneous triggers result in at most one in-flight cycle.
func TestConcurrentRefreshSingleFlight(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	src.set("Morning", sheet.Grid{{"06.01.2025"}, {"Petrov"}}, nil)
	src.set("Evening", nil, nil)

	s := newTestService(src, testNow)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = s.Refresh(context.Background())
		}()
	}
	close(start)
	time.Sleep(50 * time.Millisecond) // let the losers bail out
	close(src.block)
	wg.Wait()

	// One winner fetched two sheets; everyone else skipped.
	if got := atomic.LoadInt32(&src.fetches); got != 2 {
		t.Fatalf("expected 2 sheet fetches, got %d", got)
	}
}

// Readers see whole snapshots: names and FetchedAt always belong together.
func TestReadersNeverSeeTornSnapshot(t *testing.T) {
	src := &fakeSource{}
	s := newTestService(src, testNow)

	t1 := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	var stop atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			snap := s.Current()
			if snap.FetchedAt.IsZero() {
				continue
			}
			wantName := "A"
			if snap.FetchedAt.Equal(t2) {
				wantName = "B"
			}
			for _, r := range snap.Records {
				if r.Morning != wantName {
					t.Errorf("torn snapshot: fetchedAt %v with name %q", snap.FetchedAt, r.Morning)
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		name := "A"
		at := t1
		if i%2 == 1 {
			name = "B"
			at = t2
		}
		src.set("Morning", sheet.Grid{{"06.01.2025"}, {name}}, nil)
		s.clock = fixedClock{t: at}
		_ = s.Refresh(context.Background())
	}
	stop.Store(true)
	wg.Wait()
}

func TestStartBootstrapsAndStops(t *testing.T) {
	src := &fakeSource{}
	src.set("Morning", sheet.Grid{{"06.01.2025"}, {"Petrov"}}, nil)
	src.set("Evening", nil, nil)

	s := newTestService(src, testNow)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap := s.Current(); snap.FetchedAt.IsZero() {
		t.Errorf("bootstrap refresh did not run")
	}
	if err := s.Start(ctx); err == nil {
		t.Errorf("second Start should fail")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}
