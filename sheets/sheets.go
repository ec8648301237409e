// Package sheets keeps the investment log, the asset log and the progress
// marker in a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const service = "sheets"

// Spreadsheet is a tradelog.LedgerStore, tradelog.SnapshotStore and
// tradelog.MarkerStore backed by ranges of one spreadsheet.
type Spreadsheet struct {
	ID          string
	LedgerRange string // investment log, e.g. "Invest Log!A:O"
	AssetRange  string // asset log, e.g. "Asset Tracking!A:M"
	MarkerRange string // single cell holding the last processed date
	Log         zerolog.Logger

	values *sheets.SpreadsheetsValuesService
}

// New returns a spreadsheet accessed with client. Options are appended to
// the client, tests use them to set an endpoint.
func New(ctx context.Context, client *http.Client, id string, opts ...option.ClientOption) (*Spreadsheet, error) {
	srv, err := sheets.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("cannot create sheets service: %w", err)
	}
	return &Spreadsheet{ID: id, Log: zerolog.Nop(), values: srv.Spreadsheets.Values}, nil
}

// wrap classifies an API error.
func wrap(op string, err error) error {
	var (
		auth *tradelog.AuthenticationError
		rerr *oauth2.RetrieveError
		gerr *googleapi.Error
	)
	switch {
	case errors.As(err, &auth):
		return auth
	case errors.As(err, &rerr):
		return authError(err)
	case errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden):
		return authError(err)
	}
	return &tradelog.ExternalServiceError{Service: service, Op: op, Err: err}
}

// get reads the rows of rng with raw numbers and formatted dates.
func (s *Spreadsheet) get(ctx context.Context, rng string) ([][]any, error) {
	vr, err := s.values.Get(s.ID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, wrap("read "+rng, err)
	}
	return vr.Values, nil
}

func (s *Spreadsheet) append(ctx context.Context, rng string, rows [][]any) error {
	_, err := s.values.Append(s.ID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return wrap("append "+rng, err)
	}
	s.Log.Debug().Str("range", rng).Int("rows", len(rows)).Msg("rows appended")
	return nil
}

// replace overwrites the first rows of rng, then clears the old rows left
// below them. A failed update leaves the range as it was.
func (s *Spreadsheet) replace(ctx context.Context, rng string, rows [][]any, old int) error {
	_, err := s.values.Update(s.ID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return wrap("update "+rng, err)
	}
	if old > len(rows) {
		below := tail(rng, len(rows))
		if _, err := s.values.Clear(s.ID, below, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return wrap("clear "+below, err)
		}
	}
	s.Log.Debug().Str("range", rng).Int("rows", len(rows)).Msg("range replaced")
	return nil
}

// tail returns the part of the A1 range rng below its first n rows, e.g.
// "Log!A4:M" for "Log!A:M" and 3.
func tail(rng string, n int) string {
	sheet, cols := "", rng
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		sheet, cols = rng[:i+1], rng[i+1:]
	}
	first, last, ok := strings.Cut(cols, ":")
	col := strings.TrimRight(first, "0123456789")
	start := 1
	if row, err := strconv.Atoi(first[len(col):]); err == nil {
		start = row
	}
	end := col
	if ok {
		end = strings.TrimRight(last, "0123456789")
	}
	return fmt.Sprintf("%s%s%d:%s", sheet, col, start+n, end)
}

// AppendRecords appends records to the investment log.
func (s *Spreadsheet) AppendRecords(ctx context.Context, records []tradelog.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = EncodeRecord(r)
	}
	return s.append(ctx, s.LedgerRange, rows)
}

// Records returns the investment log records dated in r.
func (s *Spreadsheet) Records(ctx context.Context, r tradelog.Range) ([]tradelog.LedgerRecord, error) {
	rows, err := s.get(ctx, s.LedgerRange)
	if err != nil {
		return nil, err
	}
	var records []tradelog.LedgerRecord
	for i, row := range rows {
		if isHeader(row) {
			continue
		}
		rec, err := DecodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.LedgerRange, i+1, err)
		}
		if r.Contains(rec.Date) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// positions reads the whole asset log. The header row is returned apart, n
// counts the rows read.
func (s *Spreadsheet) positions(ctx context.Context) (header []any, rows []tradelog.PositionSnapshot, n int, err error) {
	values, err := s.get(ctx, s.AssetRange)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, row := range values {
		if isHeader(row) {
			if i == 0 && len(row) > 0 {
				header = row
			}
			continue
		}
		p, err := DecodePosition(row)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%s row %d: %w", s.AssetRange, i+1, err)
		}
		rows = append(rows, p)
	}
	return header, rows, len(values), nil
}

// SaveSnapshot appends the rows of snap to the asset log. Rows already
// saved for the same date are replaced.
func (s *Spreadsheet) SaveSnapshot(ctx context.Context, snap tradelog.Snapshot) error {
	header, rows, n, err := s.positions(ctx)
	if err != nil {
		return err
	}
	var kept [][]any
	if header != nil {
		kept = append(kept, header)
	}
	replaced := false
	for _, p := range rows {
		if p.Date == snap.Date {
			replaced = true
			continue
		}
		kept = append(kept, EncodePosition(p))
	}

	fresh := make([][]any, len(snap.Rows))
	for i, p := range snap.Rows {
		p.Date = snap.Date
		fresh[i] = EncodePosition(p)
	}
	if !replaced {
		if len(fresh) == 0 {
			return nil
		}
		return s.append(ctx, s.AssetRange, fresh)
	}
	s.Log.Info().Stringer("date", snap.Date).Msg("replacing asset log rows")
	return s.replace(ctx, s.AssetRange, append(kept, fresh...), n)
}

// LoadSnapshot returns the latest asset log snapshot dated on or before day.
func (s *Spreadsheet) LoadSnapshot(ctx context.Context, day tradelog.Date) (tradelog.Snapshot, error) {
	_, rows, _, err := s.positions(ctx)
	if err != nil {
		return tradelog.Snapshot{}, err
	}
	return tradelog.LatestSnapshot(rows, day), nil
}

// LastProcessed reads the marker cell.
func (s *Spreadsheet) LastProcessed(ctx context.Context) (tradelog.Date, bool, error) {
	rows, err := s.get(ctx, s.MarkerRange)
	if err != nil {
		return tradelog.Date{}, false, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 || cellString(rows[0][0]) == "" {
		return tradelog.Date{}, false, nil
	}
	c := cells{row: rows[0], header: []any{s.MarkerRange}}
	d := c.date(0)
	if c.err != nil {
		return tradelog.Date{}, false, fmt.Errorf("invalid last processed date: %w", c.err)
	}
	return d, true, nil
}

// SetLastProcessed writes the marker cell.
func (s *Spreadsheet) SetLastProcessed(ctx context.Context, day tradelog.Date) error {
	_, err := s.values.Update(s.ID, s.MarkerRange, &sheets.ValueRange{Values: [][]any{{day.String()}}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return wrap("update "+s.MarkerRange, err)
	}
	s.Log.Info().Stringer("date", day).Msg("last processed date updated")
	return nil
}
