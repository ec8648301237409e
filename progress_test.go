package tradelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// markerStub is a MarkerStore with scripted failures.
type markerStub struct {
	day      Date
	readErr  error
	writeErr error
	writes   int
}

func (m *markerStub) LastProcessed(context.Context) (Date, bool, error) {
	if m.readErr != nil {
		return Date{}, false, m.readErr
	}
	return m.day, !m.day.IsZero(), nil
}

func (m *markerStub) SetLastProcessed(_ context.Context, day Date) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.day = day
	return nil
}

func TestMarkerFile(t *testing.T) {
	ctx := context.Background()
	m := &MarkerFile{Path: filepath.Join(t.TempDir(), "state", "last_update.json")}

	if _, ok, err := m.LastProcessed(ctx); err != nil || ok {
		t.Fatalf("LastProcessed() on a missing file = %v, %v, want no date", ok, err)
	}
	day := NewDate(2025, 3, 14)
	if err := m.SetLastProcessed(ctx, day); err != nil {
		t.Fatalf("SetLastProcessed() error = %v", err)
	}
	data, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"update_time\": \"2025-03-14\"\n}"; string(data) != want {
		t.Errorf("marker file = %s, want %s", data, want)
	}
	got, ok, err := m.LastProcessed(ctx)
	if err != nil || !ok || got != day {
		t.Errorf("LastProcessed() = %v, %v, %v, want %v", got, ok, err, day)
	}
}

func TestProgress_LastProcessed(t *testing.T) {
	primaryDay := NewDate(2025, 3, 14)
	localDay := NewDate(2025, 3, 10)
	tests := []struct {
		name         string
		primary      *markerStub
		fallback     *markerStub
		want         Date
		wantOK       bool
		wantErr      bool
		wantRestored bool
	}{
		{
			name:     "primary is authoritative",
			primary:  &markerStub{day: primaryDay},
			fallback: &markerStub{day: localDay},
			want:     primaryDay, wantOK: true,
		},
		{
			name:     "empty primary restored from fallback",
			primary:  &markerStub{},
			fallback: &markerStub{day: localDay},
			want:     localDay, wantOK: true, wantRestored: true,
		},
		{
			name:     "unreachable primary falls back",
			primary:  &markerStub{readErr: errors.New("sheets unavailable")},
			fallback: &markerStub{day: localDay},
			want:     localDay, wantOK: true, wantRestored: true,
		},
		{
			name:     "nothing recorded",
			primary:  &markerStub{},
			fallback: &markerStub{},
		},
		{
			name:     "both unreadable",
			primary:  &markerStub{readErr: errors.New("sheets unavailable")},
			fallback: &markerStub{readErr: errors.New("disk full")},
			wantErr:  true,
		},
		{
			name:     "authentication failure is not hidden",
			primary:  &markerStub{readErr: &AuthenticationError{Service: "sheets", Err: errors.New("token expired")}},
			fallback: &markerStub{day: localDay},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Progress{Primary: tt.primary, Fallback: tt.fallback, Log: zerolog.Nop()}
			got, ok, err := p.LastProcessed(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("LastProcessed() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LastProcessed() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
			if restored := tt.primary.writes > 0; restored != tt.wantRestored {
				t.Errorf("primary restored = %v, want %v", restored, tt.wantRestored)
			}
		})
	}
}

func TestProgress_SetLastProcessed(t *testing.T) {
	day := NewDate(2025, 3, 14)
	tests := []struct {
		name              string
		primary, fallback *markerStub
		wantErr           bool
	}{
		{"both saved", &markerStub{}, &markerStub{}, false},
		{"primary down", &markerStub{writeErr: errors.New("sheets unavailable")}, &markerStub{}, false},
		{"fallback down", &markerStub{}, &markerStub{writeErr: errors.New("read-only")}, false},
		{"both down", &markerStub{writeErr: errors.New("sheets unavailable")}, &markerStub{writeErr: errors.New("read-only")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Progress{Primary: tt.primary, Fallback: tt.fallback, Log: zerolog.Nop()}
			err := p.SetLastProcessed(context.Background(), day)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetLastProcessed() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.primary.writes != 1 || tt.fallback.writes != 1 {
				t.Errorf("writes = %d, %d, want both stores written once", tt.primary.writes, tt.fallback.writes)
			}
		})
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	today := NewDate(2025, 3, 14)
	week := NewRange(today.Add(-6), today)

	tests := []struct {
		name   string
		marker *markerStub
		want   Range
		ok     bool
	}{
		{"no marker", &markerStub{}, week, true},
		{"up to date", &markerStub{day: today}, Range{}, false},
		{"behind", &markerStub{day: NewDate(2025, 3, 10)}, NewRange(NewDate(2025, 3, 11), today), true},
		{"before the range", &markerStub{day: NewDate(2025, 2, 28)}, NewRange(NewDate(2025, 3, 1), today), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Resume(ctx, tt.marker, week)
			if err != nil {
				t.Fatalf("Resume() unexpected error: %v", err)
			}
			if ok != tt.ok || got != tt.want {
				t.Errorf("Resume() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	boom := errors.New("boom")
	if _, _, err := Resume(ctx, &markerStub{readErr: boom}, week); !errors.Is(err, boom) {
		t.Errorf("Resume() error = %v, want %v", err, boom)
	}
}
