package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog"
	"github.com/google/subcommands"
)

// progressCmd displays or moves the progress marker.
type progressCmd struct {
	set string
}

func (*progressCmd) Name() string     { return "progress" }
func (*progressCmd) Synopsis() string { return "display or set the last processed date" }
func (*progressCmd) Usage() string {
	return `tlog progress [-set <date>]

  Displays the last date of the asset log, as recorded by the progress
  marker. When the spreadsheet has no marker the local copy is used and
  written back to the spreadsheet.

  -set overwrites the marker, e.g. to compute again the days after it.
`
}

func (c *progressCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "Date to record as the last processed date")
}

func (c *progressCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	_, _, progress, err := a.stores(ctx)
	if err != nil {
		return a.fail(err, "cannot open the progress marker")
	}

	if c.set != "" {
		day, err := tradelog.ParseDate(c.set)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if err := progress.SetLastProcessed(ctx, day); err != nil {
			return a.fail(err, "cannot set the progress marker")
		}
		fmt.Println(day)
		return subcommands.ExitSuccess
	}

	day, ok, err := progress.LastProcessed(ctx)
	if err != nil {
		return a.fail(err, "cannot read the progress marker")
	}
	if !ok {
		fmt.Println("never processed")
		return subcommands.ExitSuccess
	}
	fmt.Println(day)
	return subcommands.ExitSuccess
}
