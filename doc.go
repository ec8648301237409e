// Package tradelog keeps the bookkeeping of a Dime brokerage account from the
// confirmation notes the broker emails after each trading day.
//
// The core functionalities include:
//   - Statement reading: transactions and their fees are read from the
//     confirmation notes (see package statement) and the combined fee printed by
//     the broker is split into commission and withholding tax with Reconcile.
//   - Option symbols: OCC symbols like AAPL250912C00240000 are decoded with
//     ParseOptionSymbol.
//   - Investment log: transactions become signed LedgerRecord rows with the
//     sector and industry of the stock, appended to a LedgerStore by an Importer.
//   - Asset log: a Rollup folds the investment log day after day into
//     Snapshot values, valued at the closing price on trading days, and
//     records its progress in a MarkerStore.
//
// Mail, PDF, spreadsheets, market data and calendars are reached through the
// small interfaces of this package, implemented by the mailbox, statement,
// sheets, eodhd and holiday packages. Local JSONL files implement the stores
// too.
//
// This package serves as the foundational logic for the `tlog` command-line
// tool.
package tradelog
