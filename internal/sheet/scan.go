package sheet

import "strings"

// ScanGrid walks the grid row-major (top-to-bottom, left-to-right) and emits
// one RawAssignment for every cell that parses as a date. The duty name is
// taken from the cell directly below the date, normalized with CleanName.
// A date on the bottom row is kept with an empty name rather than dropped;
// the merge step treats empty names as "unassigned".
//
// refYear supplies the year for short-form (D.M) date cells. Cells that fail
// to parse are skipped silently; no deduplication happens here.
func ScanGrid(g Grid, kind Kind, refYear int) []RawAssignment {
	var out []RawAssignment
	for row := range g {
		for col := range g[row] {
			cell := g[row][col]
			if !IsDateCell(cell) {
				continue
			}
			d, ok := ParseDateCell(cell, refYear)
			if !ok {
				continue
			}
			out = append(out, RawAssignment{
				Date:      d,
				Name:      CleanName(g.Cell(row+1, col)),
				DateLabel: strings.TrimSpace(cell),
				Kind:      kind,
				Row:       row,
				Col:       col,
			})
		}
	}
	return out
}
