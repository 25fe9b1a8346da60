package sheet

import "time"

// Kind tags which worksheet an assignment was scanned from.
type Kind string

const (
	KindMorning Kind = "morning"
	KindEvening Kind = "evening"
)

// Grid is the raw cell matrix of one worksheet as returned by a source.
// Rows may be ragged; out-of-range cells read as empty strings.
type Grid [][]string

// Cell returns the trimmed-at-bounds cell value at (row, col).
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// RawAssignment is one date cell paired with the duty cell directly below it.
// Duplicates for the same date are possible here; the merge step dedupes.
type RawAssignment struct {
	Date      time.Time
	Name      string
	DateLabel string
	Kind      Kind
	Row       int
	Col       int
}
