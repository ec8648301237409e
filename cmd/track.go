package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog/renderer"
	"github.com/google/subcommands"
)

// trackCmd rolls the asset log up from the investment log.
type trackCmd struct {
	from, to string
}

func (*trackCmd) Name() string     { return "track" }
func (*trackCmd) Synopsis() string { return "update the asset log from the investment log" }
func (*trackCmd) Usage() string {
	return `tlog track [-from <date>] [-to <date>]

  Computes the positions of each day between -from and -to (today by
  default), valued at the closing price, starting from the last asset log
  snapshot before -from. Each day is saved to the asset log and advances the
  progress marker.

  Dates are in USER_TIMEZONE and are converted to New York days.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to compute (defaults to -to)")
	f.StringVar(&c.to, "to", "", "Last day to compute (defaults to today)")
}

func (c *trackCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		return a.fail(err, "cannot track")
	}

	last, err := a.rollup(market, snapshots, progress).Track(ctx, ledger, a.inMarket(rng, newYork))
	printMarkdown(renderer.SnapshotMarkdown(last))
	if err != nil {
		return a.fail(err, "asset log incomplete")
	}
	return subcommands.ExitSuccess
}
