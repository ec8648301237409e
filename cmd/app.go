// Package cmd implements the tlog CLI application: importing broker
// statements into the investment log and rolling up the asset log.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // market timezones on hosts without a zoneinfo database

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/eodhd"
	"github.com/etnz/tradelog/holiday"
	"github.com/etnz/tradelog/mailbox"
	"github.com/etnz/tradelog/sheets"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	envFile  = flag.String("env", ".env", "Path to the .env file holding the configuration")
	dataDir  = flag.String("data", ".tradelog", "Folder of the local files: ledger, asset log, progress marker and caches")
	local    = flag.Bool("local", false, "Use the local files instead of the spreadsheet, even if SPREADSHEET_ID is set")
	verbose  = flag.Bool("v", false, "Log debug messages")
	credFile = flag.String("credentials", sheets.DefaultAuth.CredentialsFile, "Google OAuth client secrets or service account key")
	tokFile  = flag.String("token", sheets.DefaultAuth.TokenFile, "Google OAuth user token")
)

// Market timezones.
var (
	bangkok, _ = time.LoadLocation("Asia/Bangkok")
	newYork, _ = time.LoadLocation("America/New_York")
)

// Commands lists the tlog subcommands.
var Commands = []subcommands.Command{
	&parseCmd{},
	&importCmd{},
	&trackCmd{},
	&runCmd{},
	&holidaysCmd{},
	&progressCmd{},
	&authCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// newLogger returns a console logger on stderr.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// printMarkdown renders markdown for the terminal, or prints it as is if it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// app holds what the commands share once the configuration is loaded.
type app struct {
	cfg Config
	log zerolog.Logger
}

func newApp() (*app, error) {
	cfg, err := LoadConfig(*envFile)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: newLogger()}, nil
}

// fail reports an error and returns the matching exit status.
func (a *app) fail(err error, msg string) subcommands.ExitStatus {
	a.log.Error().Err(err).Msg(msg)
	return subcommands.ExitFailure
}

func (a *app) path(name string) string { return filepath.Join(*dataDir, name) }

// stores opens the investment log, the asset log and the progress marker.
//
// With a spreadsheet the marker is kept in the sheet with a local copy,
// otherwise everything is in local files.
func (a *app) stores(ctx context.Context) (tradelog.LedgerStore, tradelog.SnapshotStore, tradelog.MarkerStore, error) {
	marker := &tradelog.MarkerFile{Path: a.path("last_update.json")}
	if *local || a.cfg.SpreadsheetID == "" {
		a.log.Debug().Str("dir", *dataDir).Msg("using local files")
		return &tradelog.LedgerFile{Path: a.path("ledger.jsonl")}, &tradelog.SnapshotFile{Path: a.path("assets.jsonl")}, marker, nil
	}

	auth := sheets.Auth{Mode: a.cfg.AuthMode, CredentialsFile: *credFile, TokenFile: *tokFile}
	client, err := auth.HTTPClient(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := sheets.New(ctx, client, a.cfg.SpreadsheetID)
	if err != nil {
		return nil, nil, nil, err
	}
	s.LedgerRange = a.cfg.LedgerRange
	s.AssetRange = a.cfg.AssetRange
	s.MarkerRange = a.cfg.MarkerRange
	s.Log = a.log
	progress := &tradelog.Progress{Primary: s, Fallback: marker, Log: a.log}
	return s, s, progress, nil
}

// market returns the EODHD client, used for reference data, prices and the
// US trading calendar.
func (a *app) market() (*eodhd.Client, error) {
	if err := a.cfg.require(EnvEODHDKey); err != nil {
		return nil, err
	}
	return eodhd.New(a.cfg.EODHDKey, a.path("cache"), a.log), nil
}

// thaiCalendar returns the Bank of Thailand holidays, cached for the day.
func (a *app) thaiCalendar() (*holiday.Cache, error) {
	if err := a.cfg.require(EnvBOTClientID); err != nil {
		return nil, err
	}
	return &holiday.Cache{
		Path:   a.path(holiday.DefaultCacheFile),
		Source: holiday.NewClient(a.cfg.BOTClientID, a.log),
		Log:    a.log,
	}, nil
}

// importer wires the mailbox, the statement reader and the market data to
// the ledger.
func (a *app) importer(ledger tradelog.LedgerStore, meta tradelog.MetaSource) (*tradelog.Importer, error) {
	if err := a.cfg.require(EnvEmail, EnvAppPassword, EnvPDFPassword); err != nil {
		return nil, err
	}
	mb := mailbox.New(a.cfg.Email, a.cfg.AppPassword, a.log)
	mb.Server = a.cfg.IMAPServer
	return &tradelog.Importer{
		Documents: mb,
		Reader:    newReader(nil, a.log),
		Meta:      meta,
		Ledger:    ledger,
		Password:  a.cfg.PDFPassword,
		Portfolio: tradelog.DefaultPortfolio,
		Retry:     tradelog.DefaultRetryPolicy,
		Log:       a.log,
	}, nil
}

// rollup wires the market data to the asset log.
func (a *app) rollup(market *eodhd.Client, snapshots tradelog.SnapshotStore, progress tradelog.MarkerStore) *tradelog.Rollup {
	return &tradelog.Rollup{
		Prices:   market,
		Calendar: market,
		Store:    snapshots,
		Progress: progress,
		Retry:    tradelog.DefaultRetryPolicy,
		Log:      a.log,
	}
}

// userRange parses the -from and -to flags, in the user's timezone. An empty
// to is today, an empty from is to.
func (a *app) userRange(from, to string) (tradelog.Range, error) {
	end := tradelog.NewDate(time.Now().In(a.cfg.Timezone).Date())
	if to != "" {
		var err error
		if end, err = tradelog.ParseDate(to); err != nil {
			return tradelog.Range{}, fmt.Errorf("invalid -to: %w", err)
		}
	}
	start := end
	if from != "" {
		var err error
		if start, err = tradelog.ParseDate(from); err != nil {
			return tradelog.Range{}, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if start.After(end) {
		return tradelog.Range{}, fmt.Errorf("-from %s is after -to %s", start, end)
	}
	return tradelog.NewRange(start, end), nil
}

// inMarket converts a range of user days to the days of a market.
func (a *app) inMarket(r tradelog.Range, market *time.Location) tradelog.Range {
	return tradelog.NewRange(
		tradelog.MarketDate(r.From, a.cfg.Timezone, market),
		tradelog.MarketDate(r.To, a.cfg.Timezone, market),
	)
}
