package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dutyboard/internal/schedule"
	"dutyboard/internal/services/roster"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var monday = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

type fakeRoster struct {
	records []schedule.DutyRecord
	now     time.Time
	health  roster.Health
}

func (f *fakeRoster) Today() (schedule.DutyRecord, bool) { return schedule.TodayDuty(f.records, f.now) }
func (f *fakeRoster) TwoWorkWeeks() [][]schedule.DutyRecord {
	return schedule.TwoWorkWeeks(f.records, f.now)
}
func (f *fakeRoster) Health() roster.Health { return f.health }
func (f *fakeRoster) Now() time.Time        { return f.now }

type fakeClock struct {
	synced bool
	last   time.Time
}

func (f *fakeClock) Synced() bool        { return f.synced }
func (f *fakeClock) LastSync() time.Time { return f.last }

func testServer(t *testing.T) (*Server, *fakeRoster, *fakeClock) {
	t.Helper()
	r := &fakeRoster{
		records: []schedule.DutyRecord{{
			Date:      monday,
			Morning:   "Petrov",
			Evening:   "Ivanov",
			DateLabel: "06.01.2025",
			Weekday:   "MON",
		}},
		now: monday.Add(12 * time.Hour),
		health: roster.Health{
			DataLoaded: true,
			LastUpdate: monday.Add(11 * time.Hour),
			Cycles:     3,
		},
	}
	c := &fakeClock{synced: true, last: monday.Add(10 * time.Hour)}
	return New(Config{Addr: ":0"}, r, c, discardLogger()), r, c
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestDataEndpoint(t *testing.T) {
	s, _, _ := testServer(t)
	w := get(t, s, "/api/data")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Today     string `json:"today"`
			TodayDuty *struct {
				Morning string `json:"morning"`
				Evening string `json:"evening"`
				Date    string `json:"date"`
			} `json:"today_duty"`
			Weeks [][]struct {
				Date    string `json:"date"`
				Morning string `json:"morning"`
				Evening string `json:"evening"`
				DateStr string `json:"date_str"`
				Weekday string `json:"weekday"`
			} `json:"weeks"`
		} `json:"data"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Timestamp == 0 {
		t.Errorf("envelope = %+v", body)
	}
	if body.Data.Today != "2025-01-06" {
		t.Errorf("today = %q", body.Data.Today)
	}
	if body.Data.TodayDuty == nil || body.Data.TodayDuty.Morning != "Petrov" {
		t.Fatalf("today_duty = %+v", body.Data.TodayDuty)
	}
	if len(body.Data.Weeks) != 2 || len(body.Data.Weeks[0]) != 6 || len(body.Data.Weeks[1]) != 6 {
		t.Fatalf("weeks shape = %dx...", len(body.Data.Weeks))
	}
	first := body.Data.Weeks[0][0]
	if first.Date != "2025-01-06" || first.DateStr != "06.01" || first.Weekday != "MON" {
		t.Errorf("first cell = %+v", first)
	}
	// Placeholder day: present in the grid with empty names.
	second := body.Data.Weeks[0][1]
	if second.Morning != "" || second.Evening != "" || second.Date != "2025-01-07" {
		t.Errorf("placeholder cell = %+v", second)
	}
}

func TestDataEndpointWithoutToday(t *testing.T) {
	s, r, _ := testServer(t)
	r.now = monday.AddDate(0, 0, 2) // a day with no record

	w := get(t, s, "/api/data")
	var body struct {
		Data struct {
			TodayDuty *json.RawMessage `json:"today_duty"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.TodayDuty != nil && string(*body.Data.TodayDuty) != "null" {
		t.Errorf("today_duty = %s, want null", *body.Data.TodayDuty)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, r, c := testServer(t)
	r.health.LastError = "spreadsheet fetch: connection refused"
	c.synced = false

	w := get(t, s, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Status         string `json:"status"`
		DataLoaded     bool   `json:"data_loaded"`
		LastDataUpdate int64  `json:"last_data_update"`
		LastError      string `json:"last_error"`
		NTPSynced      bool   `json:"ntp_synced"`
		LastNTPSync    int64  `json:"last_ntp_sync"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || !body.DataLoaded {
		t.Errorf("health = %+v", body)
	}
	if body.LastDataUpdate == 0 {
		t.Errorf("last_data_update not set")
	}
	if body.LastError == "" {
		t.Errorf("last_error not propagated")
	}
	if body.NTPSynced {
		t.Errorf("ntp_synced = true, clock not synced")
	}
}

func TestVersionEndpoint(t *testing.T) {
	s, _, _ := testServer(t)
	w := get(t, s, "/api/version")
	var body struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version == "" {
		t.Errorf("empty version")
	}
}

func TestIndexPage(t *testing.T) {
	s, _, _ := testServer(t)
	w := get(t, s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	html := w.Body.String()
	for _, want := range []string{"Petrov", "Ivanov", "06.01", "MON"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _, _ := testServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/data", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
