package sheet

import (
	"regexp"
	"strings"
)

var (
	parenNoteRe = regexp.MustCompile(`\([^)]*\)`)
	// Start-time annotations like "с 10:30" or "from 9:00": an optional short
	// marker word followed by H:MM. Matched structurally so the marker's
	// language does not matter.
	startTimeRe = regexp.MustCompile(`(?:(?:^|\s)\p{L}{1,4}\s+)?\d{1,2}:\d{2}`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
)

// CleanName normalizes a raw duty-person cell: parenthesized notes and
// start-time annotations are stripped, <br> markup becomes ", ", whitespace
// is collapsed. Pure and total; empty input yields "".
func CleanName(raw string) string {
	if raw == "" {
		return ""
	}
	s := parenNoteRe.ReplaceAllString(raw, "")
	s = startTimeRe.ReplaceAllString(s, "")
	s = lineBreakRe.ReplaceAllString(s, ", ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,")
}
