// Package renderer renders statements, ledger records and snapshots to markdown.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradelog"
	md "github.com/nao1215/markdown"
)

// StatementMarkdown renders the transactions read from a statement.
func StatementMarkdown(name string, r tradelog.StatementResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Statement"
	if name != "" {
		title = fmt.Sprintf("Statement %s", name)
	}
	doc.H1(title)
	doc.PlainText(fmt.Sprintf("Dated %s.", md.Bold(r.StatementDate.String())))

	if r.IsEmpty() {
		doc.PlainText("No transaction.")
		return doc.String()
	}

	if len(r.Transactions) > 0 {
		doc.H2("Stocks")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignLeft,
				md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
			},
			Header: []string{"Type", "Symbol", "Shares", "Price", "Amount", "Commission", "Tax"},
		}
		for _, tx := range r.Transactions {
			table.Rows = append(table.Rows, []string{
				tx.Type.String(),
				tx.Symbol,
				tx.Shares.String(),
				tradelog.USD(tx.Price).String(),
				tradelog.USD(tx.GrossAmount).String(),
				tradelog.USD(tx.Commission).String(),
				tradelog.USD(tx.WithholdingTax).String(),
			})
		}
		doc.Table(table)
	}

	if len(r.OptionTransactions) > 0 {
		doc.H2("Options")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignLeft,
				md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
			},
			Header: []string{"Type", "Option", "Contracts", "Price", "Amount", "Commission", "Tax"},
		}
		for _, tx := range r.OptionTransactions {
			table.Rows = append(table.Rows, []string{
				tx.Type.String(),
				tx.OptionSymbol.String(),
				tx.Contracts.String(),
				tradelog.USD(tx.Price).String(),
				tradelog.USD(tx.GrossAmount).String(),
				tradelog.USD(tx.Commission).String(),
				tradelog.USD(tx.WithholdingTax).String(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

// RecordsMarkdown renders ledger records as written to the investment log.
func RecordsMarkdown(records []tradelog.LedgerRecord) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Investment Log")
	if len(records) == 0 {
		doc.PlainText("No record.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Date", "Port", "Type", "Product", "Sector", "Share", "Amount", "Total"},
	}
	total := tradelog.USD(tradelog.SumTotal(records))
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.Date.String(),
			r.Portfolio,
			string(r.Type),
			r.Symbol,
			r.Sector,
			r.Shares.String(),
			tradelog.USD(r.Amount).SignedString(),
			tradelog.USD(r.TotalAmount).SignedString(),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", "", "", "", md.Bold(total.SignedString())})
	doc.Table(table)
	return doc.String()
}
