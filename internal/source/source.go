// Package source provides the grid-fetch collaborators: each Source turns a
// named worksheet into the raw 2-D cell grid the scanner consumes.
package source

import (
	"context"
	"errors"
	"fmt"

	"dutyboard/internal/sheet"
)

// Source fetches the raw cell grid of one named worksheet.
type Source interface {
	FetchGrid(ctx context.Context, sheetName string) (sheet.Grid, error)
}

// ErrSheetMissing marks a named worksheet that does not exist in the
// spreadsheet. A refresh cycle degrades that sheet's contribution to empty
// instead of aborting.
var ErrSheetMissing = errors.New("worksheet not found")

// FetchError marks the data source as unreachable (network, auth, missing
// file). It aborts the whole refresh cycle; the previous snapshot stays.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsSheetMissing reports whether err degrades per-sheet rather than failing
// the cycle.
func IsSheetMissing(err error) bool { return errors.Is(err, ErrSheetMissing) }
