package sheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateFullRe  = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`)
	dateShortRe = regexp.MustCompile(`^\d{1,2}\.\d{1,2}$`)
)

// IsDateCell reports whether the cell text (after trimming) looks like a
// roster date: D.M.YYYY or D.M with literal dot separators and nothing else.
func IsDateCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return dateFullRe.MatchString(s) || dateShortRe.MatchString(s)
}

// ParseDateCell parses a date cell into a calendar date (midnight UTC).
// Year-less cells (D.M) take refYear. Returns false for text that matches
// the date shape but is not a real calendar date (e.g. 32.01).
//
// Around a year boundary the refYear assignment is wrong for short-form
// dates belonging to the adjacent year; callers pass the clock's current
// year and live with that.
func ParseDateCell(s string, refYear int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch {
	case dateFullRe.MatchString(s):
		// ok
	case dateShortRe.MatchString(s):
		s = s + "." + strconv.Itoa(refYear)
	default:
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2.1.2006", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
