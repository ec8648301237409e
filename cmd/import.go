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

// importCmd appends the statements received by email to the investment log.
type importCmd struct {
	from, to string
	dryRun   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import emailed statements into the investment log" }
func (*importCmd) Usage() string {
	return `tlog import [-from <date>] [-to <date>] [-n]

  Searches the mailbox for the confirmation notes received between -from and
  -to (today by default), reads them and appends their transactions to the
  investment log.

  Dates are in USER_TIMEZONE and are converted to Bangkok days.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to import (defaults to -to)")
	f.StringVar(&c.to, "to", "", "Last day to import (defaults to today)")
	f.BoolVar(&c.dryRun, "n", false, "Display the records without writing them")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var ledger tradelog.LedgerStore = &discard{}
	if !c.dryRun {
		if ledger, _, _, err = a.stores(ctx); err != nil {
			return a.fail(err, "cannot open the investment log")
		}
	}
	market, err := a.market()
	if err != nil {
		return a.fail(err, "cannot import")
	}
	im, err := a.importer(ledger, market)
	if err != nil {
		return a.fail(err, "cannot import")
	}

	records, err := im.Import(ctx, a.inMarket(rng, bangkok))
	if len(records) > 0 {
		printMarkdown(renderer.RecordsMarkdown(records))
	}
	if err != nil {
		return a.fail(err, "import incomplete")
	}
	return subcommands.ExitSuccess
}

// discard is a ledger that does not keep anything.
type discard struct{}

func (*discard) AppendRecords(context.Context, []tradelog.LedgerRecord) error { return nil }
func (*discard) Records(context.Context, tradelog.Range) ([]tradelog.LedgerRecord, error) {
	return nil, nil
}
