package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	xsheet "dutyboard/internal/sheet"
)

var spreadsheetURLRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the document ID from a full Google Sheets URL, or
// accepts a bare ID as-is.
func SpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty spreadsheet reference")
	}
	if m := spreadsheetURLRe.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(ref, "/?#") {
		return "", fmt.Errorf("unrecognized spreadsheet reference %q", ref)
	}
	return ref, nil
}

// GoogleConfig controls the Google Sheets source.
type GoogleConfig struct {
	// SpreadsheetURL is a full document URL or a bare spreadsheet ID.
	SpreadsheetURL string
	// CredentialsFile points at a service-account JSON key.
	CredentialsFile string
	// FetchTimeout bounds each Values.Get call.
	FetchTimeout time.Duration
	// RatePerMinute caps API calls; the Sheets API quota is per-minute.
	RatePerMinute int
}

// GoogleSource reads worksheet grids through the Sheets API.
type GoogleSource struct {
	svc     *sheets.Service
	id      string
	timeout time.Duration
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewGoogle(ctx context.Context, cfg GoogleConfig, log *slog.Logger) (*GoogleSource, error) {
	id, err := SpreadsheetID(cfg.SpreadsheetURL)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	perMin := cfg.RatePerMinute
	if perMin <= 0 {
		perMin = 30
	}

	return &GoogleSource{
		svc:     svc,
		id:      id,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 2),
		log:     log,
	}, nil
}

func (s *GoogleSource) FetchGrid(ctx context.Context, sheetName string) (xsheet.Grid, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Op: sheetName, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, "'"+sheetName+"'").Context(ctx).Do()
	if err != nil {
		if isMissingRange(err) {
			return nil, fmt.Errorf("%s: %w", sheetName, ErrSheetMissing)
		}
		return nil, &FetchError{Op: sheetName, Err: err}
	}
	s.log.Debug("grid fetched",
		slog.String("sheet", sheetName),
		slog.Int("rows", len(resp.Values)),
		slog.Duration("took", time.Since(start)))

	grid := make(xsheet.Grid, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, cellString(v))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// The Values API reports an unknown worksheet as a 400 "Unable to parse
// range"; a deleted spreadsheet comes back as 404.
func isMissingRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range") {
		return true
	}
	return gerr.Code == 404
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
