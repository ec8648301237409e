package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// holidaysCmd displays the market calendars.
type holidaysCmd struct {
	year   int
	market string
}

func (*holidaysCmd) Name() string     { return "holidays" }
func (*holidaysCmd) Synopsis() string { return "display market holidays or tell if days are trading days" }
func (*holidaysCmd) Usage() string {
	return `tlog holidays [-year <year>] [-market th|us] [<date>...]

  Without dates, lists the Thai financial institutions holidays of the year,
  as published by the Bank of Thailand (requires BOT_CLIENT_ID).

  With dates, tells for each one whether the market is open. The "us" market
  uses the EODHD exchange calendar (requires EODHD_API_KEY).
`
}

func (c *holidaysCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", tradelog.Today().Year(), "Year of the holidays to list")
	f.StringVar(&c.market, "market", "th", "Market calendar to use for dates (th, us)")
}

func (*holidaysCmd) args() complete.Predictor { return predict.Something }

func (c *holidaysCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var calendar tradelog.Calendar
	switch c.market {
	case "th":
		th, err := a.thaiCalendar()
		if err != nil {
			return a.fail(err, "no Thai calendar")
		}
		if f.NArg() == 0 {
			list, err := th.Holidays(ctx, c.year)
			if err != nil {
				return a.fail(err, "cannot get holidays")
			}
			var buf bytes.Buffer
			doc := md.NewMarkdown(&buf)
			doc.H1(fmt.Sprintf("Thai holidays %d", c.year))
			items := make([]string, 0, len(list.Holidays))
			for _, d := range list.Holidays {
				items = append(items, fmt.Sprintf("%s %s", d, d.Weekday()))
			}
			doc.BulletList(items...)
			doc.PlainText(fmt.Sprintf("Updated %s.", list.UpdateTime))
			printMarkdown(doc.String())
			return subcommands.ExitSuccess
		}
		calendar = th
	case "us":
		if calendar, err = a.market(); err != nil {
			return a.fail(err, "no US calendar")
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown market %q\n", c.market)
		return subcommands.ExitUsageError
	}

	status := subcommands.ExitSuccess
	for _, arg := range f.Args() {
		day, err := tradelog.ParseDate(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitUsageError
			continue
		}
		open, err := calendar.IsTradingDay(ctx, day)
		if err != nil {
			status = a.fail(err, "cannot check the calendar")
			continue
		}
		state := "closed"
		if open {
			state = "open"
		}
		fmt.Printf("%s %s %s\n", day, day.Weekday(), state)
	}
	return status
}
