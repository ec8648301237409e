package tradelog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatementReader turns a raw statement into its transactions.
type StatementReader interface {
	ReadStatement(doc Document, password string) (StatementResult, error)
}

// Importer appends the transactions of the statements received in a date
// range to the ledger.
type Importer struct {
	Documents DocumentSource
	Reader    StatementReader
	Meta      MetaSource
	Ledger    LedgerStore
	Password  string
	Portfolio string
	Workers   int // concurrent statement reads, 0 means 4
	Retry     RetryPolicy
	Log       zerolog.Logger
}

// Import fetches, reads and records the statements of r. It returns the
// records appended to the ledger.
//
// A statement that cannot be read, or a symbol without reference data, is
// reported in the returned error while the others are still recorded. Failing
// to fetch the statements or to write the ledger aborts the import.
func (im *Importer) Import(ctx context.Context, r Range) ([]LedgerRecord, error) {
	docs, err := Retry(ctx, im.Retry, im.Log, "fetch statements", func(ctx context.Context) ([]Document, error) {
		return im.Documents.FetchStatements(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("cannot fetch statements from %s to %s: %w", r.From, r.To, err)
	}
	im.Log.Info().Int("statements", len(docs)).Stringer("from", r.From).Stringer("to", r.To).Msg("statements fetched")

	results, errs := im.ReadAll(ctx, docs)
	records, ferrs := im.Format(ctx, results)
	errs = append(errs, ferrs...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); IsFatal(err) {
		return nil, err
	}

	if len(records) > 0 {
		_, err := Retry(ctx, im.Retry, im.Log, "append ledger", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, im.Ledger.AppendRecords(ctx, records)
		})
		if err != nil {
			return nil, fmt.Errorf("cannot append %d records to the ledger: %w", len(records), err)
		}
	}
	im.Log.Info().Int("records", len(records)).Msg("ledger updated")

	return records, errors.Join(errs...)
}

// ReadAll reads documents concurrently. Results keep the documents order and
// exclude the documents that failed, whose errors are returned.
func (im *Importer) ReadAll(ctx context.Context, docs []Document) ([]StatementResult, []error) {
	results := make([]StatementResult, len(docs))
	failures := make([]error, len(docs))

	workers := im.Workers
	if workers <= 0 {
		workers = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			res, err := im.Reader.ReadStatement(doc, im.Password)
			if err != nil {
				im.Log.Error().Err(err).Str("statement", doc.Name).Msg("cannot read statement")
				failures[i] = err
				return nil
			}
			im.Log.Debug().Str("statement", doc.Name).Stringer("date", res.StatementDate).
				Int("transactions", len(res.Transactions)).Int("options", len(res.OptionTransactions)).Msg("statement read")
			results[i] = res
			return nil
		})
	}
	g.Wait() // goroutines never fail, errors are collected per document

	var (
		ok   []StatementResult
		errs []error
	)
	for i := range docs {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		ok = append(ok, results[i])
	}
	return ok, errs
}

// Format turns statement results into ledger records, looking up the
// reference data of each symbol once.
func (im *Importer) Format(ctx context.Context, results []StatementResult) ([]LedgerRecord, []error) {
	var (
		records []LedgerRecord
		errs    []error
	)
	metas := make(map[string]StockMeta)
	lookup := func(symbol string) StockMeta {
		if m, ok := metas[symbol]; ok {
			return m
		}
		m, err := Retry(ctx, im.Retry, im.Log, "stock meta "+symbol, func(ctx context.Context) (StockMeta, error) {
			return im.Meta.StockMeta(ctx, symbol)
		})
		if err != nil {
			im.Log.Error().Err(err).Str("symbol", symbol).Msg("no reference data, recorded without sector")
			errs = append(errs, fmt.Errorf("stock meta %s: %w", symbol, err))
		}
		metas[symbol] = m
		return m
	}

	for _, res := range results {
		for _, tx := range res.Transactions {
			records = append(records, NewRecord(res.StatementDate, im.Portfolio, tx, lookup(tx.Symbol)))
		}
		for _, tx := range res.OptionTransactions {
			records = append(records, NewOptionRecord(res.StatementDate, im.Portfolio, tx, lookup(tx.Underlying)))
		}
	}
	return records, errs
}

// Track rolls the asset log up over r from the ledger. The prior snapshot is
// the last one saved before r.From.
func (r *Rollup) Track(ctx context.Context, ledger LedgerStore, rng Range) (Snapshot, error) {
	var prior Snapshot
	if r.Store != nil {
		var err error
		prior, err = Retry(ctx, r.Retry, r.Log, "load snapshot", func(ctx context.Context) (Snapshot, error) {
			return r.Store.LoadSnapshot(ctx, rng.From.Add(-1))
		})
		if err != nil {
			return Snapshot{}, fmt.Errorf("cannot load the snapshot before %s: %w", rng.From, err)
		}
	}
	records, err := Retry(ctx, r.Retry, r.Log, "read ledger", func(ctx context.Context) ([]LedgerRecord, error) {
		return ledger.Records(ctx, rng)
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot read the ledger from %s to %s: %w", rng.From, rng.To, err)
	}
	r.Log.Info().Stringer("prior", prior.Date).Int("positions", len(prior.Rows)).Int("records", len(records)).Msg("rolling up")
	return r.Run(ctx, rng, prior, records)
}

// Resume returns the range from the day after the last processed date up to
// r.To, or r itself when no date was ever processed. It returns false when
// there is nothing left to process.
func Resume(ctx context.Context, m MarkerStore, r Range) (Range, bool, error) {
	last, ok, err := m.LastProcessed(ctx)
	if err != nil {
		return Range{}, false, err
	}
	if !ok {
		return r, true, nil
	}
	from := last.Add(1)
	if from.After(r.To) {
		return Range{}, false, nil
	}
	return Range{From: from, To: r.To}, true, nil
}
