package tradelog

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLatestSnapshot(t *testing.T) {
	d1, d2, d3 := NewDate(2024, 7, 15), NewDate(2024, 7, 16), NewDate(2024, 7, 17)
	rows := []PositionSnapshot{
		{Date: d2, Key: ko, Share: dec("3")},
		{Date: d1, Key: aapl, Share: dec("1")},
		{Date: d3, Key: aapl, Share: dec("4")},
		{Date: d2, Key: aapl, Share: dec("2")},
	}

	tests := []struct {
		day  Date
		want Snapshot
	}{
		{NewDate(2024, 7, 14), Snapshot{}},
		{d1, Snapshot{Date: d1, Rows: []PositionSnapshot{{Date: d1, Key: aapl, Share: dec("1")}}}},
		{d2, Snapshot{Date: d2, Rows: []PositionSnapshot{{Date: d2, Key: aapl, Share: dec("2")}, {Date: d2, Key: ko, Share: dec("3")}}}},
		{NewDate(2024, 8, 1), Snapshot{Date: d3, Rows: []PositionSnapshot{{Date: d3, Key: aapl, Share: dec("4")}}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, LatestSnapshot(rows, tt.day), cmpOpts); diff != "" {
			t.Errorf("LatestSnapshot(%s) mismatch (-want +got):\n%s", tt.day, diff)
		}
	}
}

func TestSnapshot_row(t *testing.T) {
	s := Snapshot{Rows: []PositionSnapshot{{Key: aapl, Share: dec("1")}, {Key: ko, Share: dec("2")}}}
	if r, ok := s.row(ko); !ok || !r.Share.Equal(dec("2")) {
		t.Errorf("row(ko) = %v, %v", r, ok)
	}
	if _, ok := s.row(Key{ProductName: "AAPL"}); ok {
		t.Error("row() matched a different port")
	}
}

func TestPositionSnapshot_JSON(t *testing.T) {
	p := PositionSnapshot{
		Date:             NewDate(2024, 7, 16),
		Key:              aapl,
		Share:            dec("0.5"),
		AmountUSD:        dec("100"),
		TotalAmountUSD:   dec("100.16"),
		IsMarketOpen:     true,
		ClosingPrice:     ptr("234.4"),
		Valuation:        ptr("117.2"),
		Performance:      ptr("0.172"),
		TotalPerformance: ptr("0"),
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	want := `{"date":"2024-07-16","open":true,"port":"Dime","product":"AAPL","sector":"Technology","industry":"Consumer Electronics",` +
		`"share":0.5,"amount":100,"total":100.16,"close":234.4,"valuation":117.2,"performance":0.172,"totalPerformance":0}`
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}

	var got PositionSnapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if diff := cmp.Diff(p, got, cmpOpts); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}

	// unvalued positions have no market fields
	data, _ = json.Marshal(PositionSnapshot{Date: NewDate(2024, 7, 16), Key: Key{Port: "Dime", ProductName: "NOPE"}})
	if bytes.Contains(data, []byte("close")) || bytes.Contains(data, []byte("valuation")) {
		t.Errorf("Marshal() = %s, want no market fields", data)
	}
}

func TestSnapshotFile(t *testing.T) {
	ctx := context.Background()
	f := &SnapshotFile{Path: filepath.Join(t.TempDir(), "assets", "assets.jsonl")}
	d1, d2 := NewDate(2024, 7, 15), NewDate(2024, 7, 16)

	if s, err := f.LoadSnapshot(ctx, d2); err != nil || !s.IsZero() {
		t.Fatalf("LoadSnapshot() on a missing file = %v, %v, want a zero snapshot", s, err)
	}
	save := func(s Snapshot) {
		t.Helper()
		if err := f.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("SaveSnapshot(%s) unexpected error: %v", s.Date, err)
		}
	}
	save(Snapshot{Date: d2, Rows: []PositionSnapshot{{Key: aapl, Share: dec("2")}}})
	save(Snapshot{Date: d1, Rows: []PositionSnapshot{{Key: aapl, Share: dec("1")}}})
	// saving a date again replaces its rows
	save(Snapshot{Date: d2, Rows: []PositionSnapshot{{Key: aapl, Share: dec("3")}, {Key: ko, Share: dec("1")}}})

	want := Snapshot{Date: d2, Rows: []PositionSnapshot{{Date: d2, Key: aapl, Share: dec("3")}, {Date: d2, Key: ko, Share: dec("1")}}}
	got, err := f.LoadSnapshot(ctx, d2)
	if err != nil {
		t.Fatalf("LoadSnapshot() unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpOpts); diff != "" {
		t.Errorf("LoadSnapshot(%s) mismatch (-want +got):\n%s", d2, diff)
	}
	if got, _ := f.LoadSnapshot(ctx, d1); len(got.Rows) != 1 || !got.Rows[0].Share.Equal(dec("1")) {
		t.Errorf("LoadSnapshot(%s) = %v, want the first day", d1, got)
	}
}
