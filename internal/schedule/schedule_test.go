package schedule

import (
	"testing"
	"time"

	"dutyboard/internal/sheet"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func asn(d time.Time, name, label string, kind sheet.Kind) sheet.RawAssignment {
	return sheet.RawAssignment{Date: d, Name: name, DateLabel: label, Kind: kind}
}

func TestMergeBothSources(t *testing.T) {
	d := day(2025, time.January, 6)
	got := Merge(
		[]sheet.RawAssignment{asn(d, "Petrov", "06.01", sheet.KindMorning)},
		[]sheet.RawAssignment{asn(d, "Ivanov", "06.01.2025", sheet.KindEvening)},
	)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.Morning != "Petrov" || r.Evening != "Ivanov" {
		t.Errorf("names = %q/%q, want Petrov/Ivanov", r.Morning, r.Evening)
	}
	// Evening source supplies the label when both carry the date.
	if r.DateLabel != "06.01.2025" {
		t.Errorf("label = %q, want evening's", r.DateLabel)
	}
	if r.Weekday != "MON" {
		t.Errorf("weekday = %q, want MON", r.Weekday)
	}
}

func TestMergeMorningOnly(t *testing.T) {
	d := day(2025, time.January, 6)
	got := Merge(
		[]sheet.RawAssignment{asn(d, "Petrov", "06.01", sheet.KindMorning)},
		nil,
	)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Morning != "Petrov" || got[0].Evening != "" {
		t.Errorf("record = %+v, want morning Petrov, empty evening", got[0])
	}
	if got[0].DateLabel != "06.01" {
		t.Errorf("label = %q, want morning's", got[0].DateLabel)
	}
}

func TestMergeUnionInvariant(t *testing.T) {
	morning := []sheet.RawAssignment{
		asn(day(2025, time.January, 6), "A", "06.01", sheet.KindMorning),
		asn(day(2025, time.January, 7), "B", "07.01", sheet.KindMorning),
	}
	evening := []sheet.RawAssignment{
		asn(day(2025, time.January, 7), "C", "07.01", sheet.KindEvening),
		asn(day(2025, time.January, 8), "D", "08.01", sheet.KindEvening),
	}
	got := Merge(morning, evening)
	if len(got) != 3 {
		t.Fatalf("expected |union| = 3 records, got %d", len(got))
	}
	seen := map[time.Time]bool{}
	for i, r := range got {
		if seen[r.Date] {
			t.Errorf("duplicate date %v", r.Date)
		}
		seen[r.Date] = true
		if i > 0 && !got[i-1].Date.Before(r.Date) {
			t.Errorf("records not sorted ascending at %d", i)
		}
	}
}

func TestMergeFirstSeenWins(t *testing.T) {
	d := day(2025, time.January, 9)
	got := Merge(nil, []sheet.RawAssignment{
		asn(d, "First", "09.01", sheet.KindEvening),
		asn(d, "Second", "09.01", sheet.KindEvening),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Evening != "First" {
		t.Errorf("evening = %q, want First", got[0].Evening)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestWeekdayCode(t *testing.T) {
	cases := []struct {
		d    time.Time
		want string
	}{
		{day(2025, time.January, 6), "MON"},
		{day(2025, time.January, 10), "FRI"},
		{day(2025, time.January, 11), "SAT"},
		{day(2025, time.January, 12), "SUN"},
	}
	for _, c := range cases {
		if got := WeekdayCode(c.d); got != c.want {
			t.Errorf("WeekdayCode(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
