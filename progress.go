package tradelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// MarkerFile is a MarkerStore backed by a small local JSON file.
type MarkerFile struct {
	Path string
}

type markerFileContent struct {
	UpdateTime Date `json:"update_time"`
}

// LastProcessed reads the marker. A missing file means no date was recorded.
func (m *MarkerFile) LastProcessed(context.Context) (Date, bool, error) {
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Date{}, false, nil
	}
	if err != nil {
		return Date{}, false, err
	}
	var c markerFileContent
	if err := json.Unmarshal(data, &c); err != nil {
		return Date{}, false, fmt.Errorf("invalid marker file %s: %w", m.Path, err)
	}
	return c.UpdateTime, !c.UpdateTime.IsZero(), nil
}

// SetLastProcessed overwrites the marker.
func (m *MarkerFile) SetLastProcessed(_ context.Context, day Date) error {
	data, err := json.MarshalIndent(markerFileContent{UpdateTime: day}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(m.Path, data, 0644)
}

// Progress is the last processed date kept in two stores.
//
// The primary store is authoritative. The fallback is read only when the
// primary has no value or cannot be read, and its value is then written back
// to the primary. Writes go to both and succeed if either does.
type Progress struct {
	Primary  MarkerStore
	Fallback MarkerStore
	Log      zerolog.Logger
}

// LastProcessed implements MarkerStore.
func (p *Progress) LastProcessed(ctx context.Context) (Date, bool, error) {
	day, ok, perr := p.Primary.LastProcessed(ctx)
	if perr == nil && ok {
		return day, true, nil
	}
	if perr != nil {
		if IsFatal(perr) {
			return Date{}, false, perr
		}
		p.Log.Warn().Err(perr).Msg("cannot read progress marker, using the local copy")
	}
	day, ok, ferr := p.Fallback.LastProcessed(ctx)
	if ferr != nil {
		return Date{}, false, errors.Join(perr, ferr)
	}
	if !ok {
		return Date{}, false, perr
	}
	if err := p.Primary.SetLastProcessed(ctx, day); err != nil {
		p.Log.Warn().Err(err).Stringer("date", day).Msg("cannot restore progress marker")
	} else {
		p.Log.Info().Stringer("date", day).Msg("progress marker restored from the local copy")
	}
	return day, true, nil
}

// SetLastProcessed implements MarkerStore.
func (p *Progress) SetLastProcessed(ctx context.Context, day Date) error {
	perr := p.Primary.SetLastProcessed(ctx, day)
	ferr := p.Fallback.SetLastProcessed(ctx, day)
	switch {
	case perr != nil && ferr != nil:
		return errors.Join(perr, ferr)
	case perr != nil:
		p.Log.Warn().Err(perr).Stringer("date", day).Msg("progress marker only saved locally")
	case ferr != nil:
		p.Log.Warn().Err(ferr).Stringer("date", day).Msg("local progress marker not saved")
	}
	return nil
}
