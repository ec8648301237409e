package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
)

// DefaultCacheFile is the file the holidays are kept in.
const DefaultCacheFile = "financial_institutions_holidays.json"

// Fetcher returns the holidays of a year.
type Fetcher interface {
	Fetch(ctx context.Context, year int) (List, error)
}

// Cache keeps the holidays in a JSON file refreshed at most once a day.
//
// It implements tradelog.Calendar for Thai financial institutions.
type Cache struct {
	Path   string
	Source Fetcher
	Log    zerolog.Logger
	Today  func() tradelog.Date // defaults to tradelog.Today

	mu   sync.Mutex
	memo map[int]List
}

func (c *Cache) today() tradelog.Date {
	if c.Today != nil {
		return c.Today()
	}
	return tradelog.Today()
}

// fresh reports whether l was updated today.
func (c *Cache) fresh(l List) bool {
	return strings.HasPrefix(l.UpdateTime, c.today().String())
}

// Holidays returns the holidays of year. The file is used when it holds that
// year and was updated today, otherwise the list is fetched and saved.
func (c *Cache) Holidays(ctx context.Context, year int) (List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.memo[year]; ok {
		return l, nil
	}

	l, err := c.read()
	switch {
	case err != nil:
		c.Log.Warn().Err(err).Str("path", c.Path).Msg("cannot read holidays, proceeding with update")
	case l.Year == year && c.fresh(l):
		c.Log.Debug().Str("path", c.Path).Msg("no update needed, already updated today")
		return c.remember(l), nil
	}

	l, err = c.Source.Fetch(ctx, year)
	if err != nil {
		return List{}, fmt.Errorf("cannot update holidays of %d: %w", year, err)
	}
	if !c.fresh(l) {
		// the file freshness is based on the fetch day
		l.UpdateTime = c.today().String()
	}
	if err := c.write(l); err != nil {
		c.Log.Error().Err(err).Str("path", c.Path).Msg("cannot write holidays")
	} else {
		c.Log.Info().Str("path", c.Path).Int("year", year).Msg("holidays written")
	}
	return c.remember(l), nil
}

func (c *Cache) remember(l List) List {
	if c.memo == nil {
		c.memo = make(map[int]List)
	}
	c.memo[l.Year] = l
	return l
}

// read returns a zero List if there is no file.
func (c *Cache) read() (List, error) {
	var l List
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("invalid holidays file %s: %w", c.Path, err)
	}
	return l, nil
}

func (c *Cache) write(l List) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.Path, data, 0o644)
}

// IsTradingDay tells whether Thai financial institutions are open on day.
func (c *Cache) IsTradingDay(ctx context.Context, day tradelog.Date) (bool, error) {
	if open, _ := tradelog.Weekdays.IsTradingDay(ctx, day); !open {
		return false, nil
	}
	l, err := c.Holidays(ctx, day.Year())
	if err != nil {
		return false, err
	}
	return !l.Contains(day), nil
}
