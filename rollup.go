package tradelog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Precision of the asset log accumulators.
const (
	sharePlaces  = 7
	amountPlaces = 2
)

// Rollup computes the daily asset log from the ledger.
//
// Prices and Calendar are required. Store and Progress are optional: when set,
// Run persists each date's snapshot and advances the progress marker.
type Rollup struct {
	Prices   PriceSource
	Calendar Calendar
	Store    SnapshotStore
	Progress MarkerStore
	Retry    RetryPolicy
	Log      zerolog.Logger
}

// position accumulates the net deltas of a product for one day.
type position struct {
	Key
	share, amount, total decimal.Decimal
}

// group sums the records of a day per position key. Keys are returned in
// order of first appearance.
func group(records []LedgerRecord) []position {
	var out []position
	index := make(map[Key]int)
	for _, r := range records {
		k := r.Key()
		i, exists := index[k]
		if !exists {
			i = len(out)
			index[k] = i
			out = append(out, position{Key: k})
		}
		p := &out[i]
		p.share = p.share.Add(r.Shares).RoundBank(sharePlaces)
		p.amount = p.amount.Add(r.Amount).RoundBank(sharePlaces)
		p.total = p.total.Add(r.TotalAmount).RoundBank(sharePlaces)
	}
	return out
}

// hold restamps the prior rows for a closed market day. Market derived fields
// keep their last known values.
func hold(prior Snapshot, day Date) Snapshot {
	next := prior.Clone()
	next.Date = day
	for i := range next.Rows {
		next.Rows[i].Date = day
		next.Rows[i].IsMarketOpen = false
	}
	return next
}

// merge joins the prior rows with the day's positions on their key. A key
// present on one side only counts as zero on the other. Duplicate prior rows
// are collapsed onto the first one.
func merge(prior []PositionSnapshot, today []position, day Date) []PositionSnapshot {
	rows := make([]PositionSnapshot, 0, len(prior)+len(today))
	index := make(map[Key]int)
	for _, row := range prior {
		if _, dup := index[row.Key]; dup {
			continue
		}
		index[row.Key] = len(rows)
		row.Date = day
		rows = append(rows, row)
	}
	for _, p := range today {
		i, exists := index[p.Key]
		if !exists {
			i = len(rows)
			index[p.Key] = i
			rows = append(rows, PositionSnapshot{Date: day, Key: p.Key})
		}
		row := &rows[i]
		row.Share = row.Share.Add(p.share)
		row.AmountUSD = row.AmountUSD.Add(p.amount)
		row.TotalAmountUSD = row.TotalAmountUSD.Add(p.total)
	}
	for i := range rows {
		rows[i].Share = rows[i].Share.RoundBank(sharePlaces)
		rows[i].AmountUSD = rows[i].AmountUSD.RoundBank(amountPlaces)
		rows[i].TotalAmountUSD = rows[i].TotalAmountUSD.RoundBank(amountPlaces)
	}
	sortRows(rows)
	return rows
}

// Step computes the snapshot of day from the prior one and the records dated
// on that day.
//
// When the market is closed the prior rows are restamped and records are not
// applied: Run carries them to the next open day. When it is open the records
// are merged into the prior rows and each held position is valued at the
// closing price. A failed price lookup leaves the row's market fields empty.
func (r *Rollup) Step(ctx context.Context, prior Snapshot, records []LedgerRecord, day Date, open bool) Snapshot {
	if !open {
		return hold(prior, day)
	}
	next := Snapshot{Date: day, Rows: merge(prior.Rows, group(records), day)}
	for i := range next.Rows {
		r.value(ctx, &next.Rows[i], day)
	}
	return next
}

// value updates the market derived fields of a row.
func (r *Rollup) value(ctx context.Context, row *PositionSnapshot, day Date) {
	row.IsMarketOpen = true
	row.ClosingPrice, row.Valuation, row.Performance, row.TotalPerformance = nil, nil, nil, nil
	if row.Share.IsZero() {
		zero := decimal.Zero
		row.Valuation, row.Performance, row.TotalPerformance = &zero, &zero, &zero
		return
	}
	price, err := Retry(ctx, r.Retry, r.Log, "closing price", func(ctx context.Context) (decimal.Decimal, error) {
		return r.Prices.ClosingPrice(ctx, row.ProductName, day)
	})
	if err != nil {
		r.Log.Warn().Err(err).Str("symbol", row.ProductName).Stringer("date", day).Msg("no closing price, position left unvalued")
		return
	}
	valuation := price.Mul(row.Share)
	row.ClosingPrice = &price
	row.Valuation = &valuation
	row.Performance = ratio(valuation, row.AmountUSD)
	row.TotalPerformance = ratio(valuation, row.TotalAmountUSD)
}

// ratio returns (v - base) / base, or nil if base is zero.
func ratio(v, base decimal.Decimal) *decimal.Decimal {
	if base.IsZero() {
		return nil
	}
	p := v.Sub(base).Div(base)
	return &p
}

// Run folds the records over the days of rng, starting from prior, and
// returns the snapshot of the last day.
//
// Records dated on a closed market day, or on a day whose calendar lookup
// failed, are applied on the next open day. A day that cannot be computed or
// saved is reported and the fold continues, but the progress marker is no
// longer advanced past it. The marker does not move while records wait for
// an open day either, so a later run starting after the marker still reads
// them from the ledger.
func (r *Rollup) Run(ctx context.Context, rng Range, prior Snapshot, records []LedgerRecord) (Snapshot, error) {
	byDate := make(map[Date][]LedgerRecord)
	for _, rec := range records {
		if !rng.Contains(rec.Date) {
			r.Log.Debug().Stringer("date", rec.Date).Str("symbol", rec.Symbol).Msg("record out of range, ignored")
			continue
		}
		byDate[rec.Date] = append(byDate[rec.Date], rec)
	}

	var (
		errs    []error
		failed  bool
		pending []LedgerRecord
	)
	for day := range rng.Days() {
		if err := ctx.Err(); err != nil {
			return prior, err
		}
		log := r.Log.With().Stringer("date", day).Logger()
		todays := append(pending, byDate[day]...)
		pending = nil

		open, err := Retry(ctx, r.Retry, log, "trading calendar", func(ctx context.Context) (bool, error) {
			return r.Calendar.IsTradingDay(ctx, day)
		})
		if err != nil {
			if IsFatal(err) {
				return prior, err
			}
			log.Error().Err(err).Msg("cannot tell if the market is open, date skipped")
			errs = append(errs, fmt.Errorf("%s: %w", day, err))
			failed = true
			pending = todays
			continue
		}
		if !open && len(todays) > 0 {
			log.Info().Int("records", len(todays)).Msg("market closed, records carried to the next open day")
			pending = todays
		}

		next := r.Step(ctx, prior, todays, day, open)
		if r.Store != nil {
			_, err := Retry(ctx, r.Retry, log, "save snapshot", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, r.Store.SaveSnapshot(ctx, next)
			})
			if err != nil {
				if IsFatal(err) {
					return prior, err
				}
				log.Error().Err(err).Msg("cannot save snapshot")
				errs = append(errs, fmt.Errorf("%s: %w", day, err))
				failed = true
			}
		}
		// a day holding back records is not done until they are applied
		if r.Progress != nil && !failed && len(pending) == 0 {
			if err := r.Progress.SetLastProcessed(ctx, day); err != nil {
				log.Warn().Err(err).Msg("cannot record progress")
			}
		}
		prior = next
	}
	if len(pending) > 0 {
		r.Log.Warn().Int("records", len(pending)).Stringer("after", rng.To).Msg("records left for the next run, no open market day in range")
	}
	return prior, errors.Join(errs...)
}
