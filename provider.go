package tradelog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Document is a raw statement as retrieved from the broker.
type Document struct {
	Name string // attachment file name, used to identify the statement in errors
	Data []byte
}

// DocumentSource retrieves the statements received in a date range.
type DocumentSource interface {
	FetchStatements(ctx context.Context, r Range) ([]Document, error)
}

// TextExtractor decrypts a statement and returns the text of each page.
type TextExtractor interface {
	ExtractText(doc []byte, password string) ([]string, error)
}

// MetaSource provides the reference data of a stock.
type MetaSource interface {
	StockMeta(ctx context.Context, symbol string) (StockMeta, error)
}

// PriceSource provides the closing price of a stock on the most recent
// trading day at or before day. It returns ErrNoPrice when none is known.
type PriceSource interface {
	ClosingPrice(ctx context.Context, symbol string, day Date) (decimal.Decimal, error)
}

// Calendar tells whether a market is open on a given day.
type Calendar interface {
	IsTradingDay(ctx context.Context, day Date) (bool, error)
}

// LedgerStore is the investment log.
type LedgerStore interface {
	AppendRecords(ctx context.Context, records []LedgerRecord) error
	Records(ctx context.Context, r Range) ([]LedgerRecord, error)
}

// SnapshotStore is the asset log.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	// LoadSnapshot returns the latest snapshot dated on or before day, or a zero Snapshot.
	LoadSnapshot(ctx context.Context, day Date) (Snapshot, error)
}

// MarkerStore persists the last processed date.
type MarkerStore interface {
	// LastProcessed returns false if no date was ever recorded.
	LastProcessed(ctx context.Context) (Date, bool, error)
	SetLastProcessed(ctx context.Context, day Date) error
}

// CalendarFunc adapts a function to the Calendar interface.
type CalendarFunc func(ctx context.Context, day Date) (bool, error)

func (f CalendarFunc) IsTradingDay(ctx context.Context, day Date) (bool, error) { return f(ctx, day) }

// Weekdays is a Calendar open every day except on weekends.
var Weekdays Calendar = CalendarFunc(func(_ context.Context, day Date) (bool, error) {
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday, nil
})
