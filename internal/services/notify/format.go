package notify

import (
	"fmt"
	"strings"
	"time"

	"dutyboard/internal/schedule"
)

// FormatDaily renders the announcement text for one day's duty record.
// Without a record for the day, the message says so instead of going silent,
// so a gap in the spreadsheet is visible in the chat.
func FormatDaily(rec schedule.DutyRecord, ok bool, now time.Time) string {
	day := now.Format("02.01.2006")
	if !ok {
		return fmt.Sprintf("Duty for %s: no assignments in the schedule.", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Duty for %s (%s)\n", rec.DateLabel, rec.Weekday)
	if rec.Morning != "" {
		fmt.Fprintf(&b, "Morning: %s\n", rec.Morning)
	}
	if rec.Evening != "" {
		fmt.Fprintf(&b, "Evening: %s\n", rec.Evening)
	}
	if rec.Morning == "" && rec.Evening == "" {
		b.WriteString("No one assigned.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
