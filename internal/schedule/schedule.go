// Package schedule holds the merged duty roster model: one record per
// calendar date with independently optional morning and evening assignees,
// plus the view projections served to the presentation layer.
package schedule

import (
	"sort"
	"time"

	"dutyboard/internal/sheet"
)

// Weekday codes, Monday-first.
var weekdayCodes = [7]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// WeekdayCode returns the abbreviated Monday-first weekday code for d.
func WeekdayCode(d time.Time) string {
	return weekdayCodes[(int(d.Weekday())+6)%7]
}

// DateOnly truncates t to its calendar date at midnight UTC, the canonical
// form used as a map key throughout this package.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DutyRecord is one calendar date's duty info. Empty Morning/Evening means
// no one is assigned for that half of the day.
type DutyRecord struct {
	Date      time.Time `json:"date"`
	Morning   string    `json:"morning"`
	Evening   string    `json:"evening"`
	DateLabel string    `json:"date_str"`
	Weekday   string    `json:"weekday"`
}

// Merge reconciles independently-scanned morning and evening assignments
// into exactly one DutyRecord per distinct date, sorted ascending. Within
// one source the first-seen assignment for a date wins (scan order is
// row-major). When both sources carry a date, the evening source supplies
// the date label.
func Merge(morning, evening []sheet.RawAssignment) []DutyRecord {
	mm := firstSeen(morning)
	em := firstSeen(evening)

	dates := make([]time.Time, 0, len(mm)+len(em))
	seen := make(map[time.Time]bool, len(mm)+len(em))
	for d := range mm {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for d := range em {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DutyRecord, 0, len(dates))
	for _, d := range dates {
		rec := DutyRecord{Date: d, Weekday: WeekdayCode(d)}
		m, hasM := mm[d]
		e, hasE := em[d]
		if hasM {
			rec.Morning = m.Name
			rec.DateLabel = m.DateLabel
		}
		if hasE {
			rec.Evening = e.Name
			rec.DateLabel = e.DateLabel
		}
		out = append(out, rec)
	}
	return out
}

func firstSeen(as []sheet.RawAssignment) map[time.Time]sheet.RawAssignment {
	m := make(map[time.Time]sheet.RawAssignment, len(as))
	for _, a := range as {
		d := DateOnly(a.Date)
		if _, ok := m[d]; ok {
			continue
		}
		m[d] = a
	}
	return m
}
