package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradelog"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// SnapshotMarkdown renders the positions of a day of the asset log.
func SnapshotMarkdown(s tradelog.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Assets on %s", s.Date))
	if len(s.Rows) == 0 {
		doc.PlainText("No position.")
		return doc.String()
	}
	if s.Rows[0].IsMarketOpen {
		doc.PlainText("Market open, positions valued at the closing price.")
	} else {
		doc.PlainText("Market closed, positions held at their last known value.")
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Product", "Port", "Share", "Amount", "Total", "Close", "Valuation", "Performance", "Total Perf."},
	}
	var amount, total, valuation decimal.Decimal
	for _, row := range s.Rows {
		table.Rows = append(table.Rows, []string{
			row.ProductName,
			row.Port,
			row.Share.String(),
			tradelog.USD(row.AmountUSD).String(),
			tradelog.USD(row.TotalAmountUSD).String(),
			money(row.ClosingPrice),
			money(row.Valuation),
			percent(row.Performance),
			percent(row.TotalPerformance),
		})
		amount = amount.Add(row.AmountUSD)
		total = total.Add(row.TotalAmountUSD)
		if row.Valuation != nil {
			valuation = valuation.Add(*row.Valuation)
		}
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"), "", "",
		md.Bold(tradelog.USD(amount).String()),
		md.Bold(tradelog.USD(total).String()),
		"",
		md.Bold(tradelog.USD(valuation).String()),
		"", "",
	})
	doc.Table(table)
	return doc.String()
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return tradelog.USD(*d).String()
}

func percent(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return tradelog.PercentOf(*d).SignedString()
}
