package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/renderer"
	"github.com/google/subcommands"
)

// runCmd is the daily job: import, then track.
type runCmd struct {
	from, to string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "import statements then update the asset log since the last run" }
func (*runCmd) Usage() string {
	return `tlog run [-from <date>] [-to <date>]

  Imports the statements received between -from and -to (today by default),
  then updates the asset log from the day after the progress marker up to
  -to. Without a progress marker the asset log starts at -from.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to import (defaults to -to)")
	f.StringVar(&c.to, "to", "", "Last day to process (defaults to today)")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	rng, err := a.userRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ledger, snapshots, progress, err := a.stores(ctx)
	if err != nil {
		return a.fail(err, "cannot open the logs")
	}
	market, err := a.market()
	if err != nil {
		return a.fail(err, "cannot run")
	}
	im, err := a.importer(ledger, market)
	if err != nil {
		return a.fail(err, "cannot run")
	}

	status := subcommands.ExitSuccess
	records, err := im.Import(ctx, a.inMarket(rng, bangkok))
	if len(records) > 0 {
		printMarkdown(renderer.RecordsMarkdown(records))
	}
	if err != nil {
		if tradelog.IsFatal(err) || ctx.Err() != nil {
			return a.fail(err, "import failed")
		}
		// the ledger is consistent, the asset log can still be updated
		status = a.fail(err, "import incomplete")
	}

	track, ok, err := tradelog.Resume(ctx, progress, a.inMarket(rng, newYork))
	if err != nil {
		return a.fail(err, "cannot read the progress marker")
	}
	if !ok {
		a.log.Info().Msg("asset log up to date")
		return status
	}

	a.log.Info().Stringer("from", track.From).Stringer("to", track.To).Msg("updating asset log")
	last, err := a.rollup(market, snapshots, progress).Track(ctx, ledger, track)
	printMarkdown(renderer.SnapshotMarkdown(last))
	if err != nil {
		return a.fail(err, "asset log incomplete")
	}
	return status
}
