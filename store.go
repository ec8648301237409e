package tradelog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// decodeLines decodes a JSONL stream, one value per non empty line.
func decodeLines[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading: %w", err)
	}
	return out, nil
}

// encodeLines writes values as JSONL.
func encodeLines[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRecords reads ledger records from a JSONL stream.
func DecodeRecords(r io.Reader) ([]LedgerRecord, error) { return decodeLines[LedgerRecord](r) }

// EncodeRecords writes ledger records as JSONL.
func EncodeRecords(w io.Writer, records []LedgerRecord) error { return encodeLines(w, records) }

// readLines reads a JSONL file. A missing file is empty.
func readLines[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := decodeLines[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// writeLines replaces a JSONL file atomically.
func writeLines[T any](path string, values []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	w := bufio.NewWriter(tmp)
	if err := encodeLines(w, values); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LedgerFile is a LedgerStore backed by a local JSONL file.
type LedgerFile struct {
	Path string
}

// AppendRecords appends records at the end of the file.
func (l *LedgerFile) AppendRecords(_ context.Context, records []LedgerRecord) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := EncodeRecords(f, records); err != nil {
		f.Close()
		return fmt.Errorf("cannot append to %s: %w", l.Path, err)
	}
	return f.Close()
}

// Records returns the records dated in r, in file order.
func (l *LedgerFile) Records(_ context.Context, r Range) ([]LedgerRecord, error) {
	all, err := readLines[LedgerRecord](l.Path)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(rec LedgerRecord) bool { return !r.Contains(rec.Date) }), nil
}

// SnapshotFile is a SnapshotStore backed by a local JSONL file, one position per line.
type SnapshotFile struct {
	Path string
}

// SaveSnapshot replaces the rows of the snapshot's date.
func (f *SnapshotFile) SaveSnapshot(_ context.Context, s Snapshot) error {
	rows, err := readLines[PositionSnapshot](f.Path)
	if err != nil {
		return err
	}
	rows = slices.DeleteFunc(rows, func(p PositionSnapshot) bool { return p.Date == s.Date })
	for _, row := range s.Rows {
		row.Date = s.Date
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b PositionSnapshot) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return writeLines(f.Path, rows)
}

// LoadSnapshot returns the latest snapshot dated on or before day.
func (f *SnapshotFile) LoadSnapshot(_ context.Context, day Date) (Snapshot, error) {
	rows, err := readLines[PositionSnapshot](f.Path)
	if err != nil {
		return Snapshot{}, err
	}
	return LatestSnapshot(rows, day), nil
}

// LatestSnapshot extracts from a flat asset log the snapshot of the most recent
// date on or before day.
func LatestSnapshot(rows []PositionSnapshot, day Date) Snapshot {
	var s Snapshot
	for _, row := range rows {
		if row.Date.After(day) || row.Date.Before(s.Date) {
			continue
		}
		if row.Date.After(s.Date) {
			s = Snapshot{Date: row.Date}
		}
		s.Rows = append(s.Rows, row)
	}
	sortRows(s.Rows)
	return s
}
