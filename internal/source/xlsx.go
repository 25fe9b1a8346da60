package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/xuri/excelize/v2"

	"dutyboard/internal/sheet"
)

// XLSXSource reads worksheet grids from a local .xlsx workbook. Useful for
// rosters maintained on a shared drive instead of Google Sheets, and for
// tests.
type XLSXSource struct {
	path string
	log  *slog.Logger
}

func NewXLSX(path string, log *slog.Logger) *XLSXSource {
	return &XLSXSource{path: path, log: log}
}

func (s *XLSXSource) FetchGrid(ctx context.Context, sheetName string) (sheet.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Op: sheetName, Err: err}
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, &FetchError{Op: sheetName, Err: err}
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w", sheetName, ErrSheetMissing)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &FetchError{Op: sheetName, Err: err}
	}
	return sheet.Grid(rows), nil
}

// Watch invokes onChange (debounced) whenever the workbook file is written,
// so an edit shows up without waiting for the next timer tick. Blocks until
// ctx is done.
func (s *XLSXSource) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	file := filepath.Base(s.path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.log.Debug("workbook watcher started", slog.String("dir", dir), slog.String("file", file))

	// Debounce: editors produce bursts of events per save.
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, onChange)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				s.log.Warn("workbook watch error", slog.Any("err", err))
			}
		}
	}
}
