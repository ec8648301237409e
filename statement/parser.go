// Package statement reads the broker's confirmation notes.
//
// A statement is line oriented text with no explicit structure: each
// transaction is found by a marker line, and its fields are read from the
// neighbouring lines at positions given by a Layout.
package statement

import (
	"fmt"
	"strings"

	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// exchanges are the markers of a stock transaction.
var exchanges = []string{"[XNYS]", "[XNAS]", "[ARCX]"}

// Option lines hold all their fields: type, OCC symbol, contracts, price, gross amount, combined commission and tax.
const (
	optionTypeField = iota
	optionSymbolField
	optionContractsField
	optionPriceField
	optionAmountField
	optionCombinedField
	optionFields
)

// optionTaxLine is the line, relative to an option line, confirming the withholding tax as "VAT <amount>".
const optionTaxLine = 1

type lineKind int

const (
	plainLine lineKind = iota
	exchangeLine
	optionLine
)

// classify tells what a line is. Exchange markers take precedence over option symbols.
func classify(line string) lineKind {
	for _, x := range exchanges {
		if strings.Contains(line, x) {
			return exchangeLine
		}
	}
	if f := strings.Fields(line); len(f) > optionSymbolField {
		if _, ok := tradelog.DecodeOptionSymbol(f[optionSymbolField]); ok {
			return optionLine
		}
	}
	return plainLine
}

// Parser reads statements.
type Parser struct {
	// Layout forces the statement layout. When nil it is detected from the pages.
	Layout *Layout
	Log    zerolog.Logger
}

// Parse reads a statement with a detected layout and no logging.
func Parse(pages []string) (tradelog.StatementResult, error) {
	p := Parser{Log: zerolog.Nop()}
	return p.Parse("", pages)
}

// Parse reads the text pages of the statement called name.
//
// The statement date is read from the first page that has one. A statement
// without any transaction is not an error.
func (p *Parser) Parse(name string, pages []string) (tradelog.StatementResult, error) {
	var res tradelog.StatementResult

	layout, ok := Layout{}, false
	if p.Layout != nil {
		layout, ok = *p.Layout, true
	} else {
		layout, ok = DetectLayout(pages)
	}
	if !ok {
		return res, &tradelog.ParseError{Statement: name, Reason: "statement date not found, unknown layout"}
	}
	log := p.Log.With().Str("statement", name).Str("layout", layout.Name).Logger()

	for i, page := range pages {
		lines := splitLines(page)
		if res.StatementDate.IsZero() {
			if d, ok := layout.date(lines); ok {
				res.StatementDate = d
			}
		}
		s := scanner{layout: layout, name: name, page: i + 1, lines: lines, log: log}
		if err := s.scan(&res); err != nil {
			return tradelog.StatementResult{}, err
		}
	}
	if res.StatementDate.IsZero() {
		return tradelog.StatementResult{}, &tradelog.ParseError{Statement: name, Line: layout.DateLine + 1, Reason: "statement date not found"}
	}
	log.Debug().Stringer("date", res.StatementDate).Int("transactions", len(res.Transactions)).Int("options", len(res.OptionTransactions)).Msg("statement parsed")
	return res, nil
}

// scanner walks the lines of one page.
type scanner struct {
	layout Layout
	name   string
	page   int
	lines  []string
	log    zerolog.Logger

	at int // index of the marker line being read
}

func (s *scanner) scan(res *tradelog.StatementResult) error {
	for s.at = range s.lines {
		switch classify(s.lines[s.at]) {
		case exchangeLine:
			tx, err := s.stock()
			if err != nil {
				return err
			}
			res.Transactions = append(res.Transactions, tx)
		case optionLine:
			tx, err := s.option()
			if err != nil {
				return err
			}
			res.OptionTransactions = append(res.OptionTransactions, tx)
		}
	}
	return nil
}

// errorf reports a layout mismatch at the current marker.
func (s *scanner) errorf(err error, format string, args ...any) error {
	return &tradelog.ParseError{Statement: s.name, Page: s.page, Line: s.at + 1, Reason: fmt.Sprintf(format, args...), Err: err}
}

// line returns the line at offset from the marker.
func (s *scanner) line(offset int) (string, error) {
	i := s.at + offset
	if i < 0 || i >= len(s.lines) {
		return "", s.errorf(nil, "missing line %+d around the marker", offset)
	}
	return s.lines[i], nil
}

// optional returns the line at offset from the marker, if the page has it.
func (s *scanner) optional(offset int) (string, bool) {
	i := s.at + offset
	if i < 0 || i >= len(s.lines) {
		return "", false
	}
	return s.lines[i], true
}

// field returns the whitespace separated field at index of the line at offset, without its first skip characters.
func (s *scanner) field(offset, index, skip int) (string, error) {
	line, err := s.line(offset)
	if err != nil {
		return "", err
	}
	f := strings.Fields(line)
	if index >= len(f) {
		return "", s.errorf(nil, "line %+d has %d fields, want at least %d", offset, len(f), index+1)
	}
	if skip > len(f[index]) {
		return "", s.errorf(nil, "field %d of line %+d is too short: %q", index, offset, f[index])
	}
	return f[index][skip:], nil
}

// number reads a decimal field.
func (s *scanner) number(what string, offset, index, skip int) (decimal.Decimal, error) {
	str, err := s.field(offset, index, skip)
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(str, ",", ""))
	if err != nil {
		return decimal.Zero, s.errorf(err, "invalid %s %q", what, str)
	}
	return v, nil
}

// stock reads the stock transaction around an exchange marker. The header
// is read first, then the detail.
func (s *scanner) stock() (tradelog.Transaction, error) {
	l := s.layout
	var tx tradelog.Transaction

	// header
	typ, err := s.field(l.HeaderLine, l.TypeField, 0)
	if err != nil {
		return tx, err
	}
	if l.SymbolInType {
		if len(typ) < 3 {
			return tx, s.errorf(nil, "invalid order header %q", typ)
		}
		typ, tx.Symbol = typ[:3], typ[3:]
	} else {
		symbol, err := s.line(l.SymbolLine)
		if err != nil {
			return tx, err
		}
		tx.Symbol = strings.TrimSpace(symbol)
	}
	if tx.Type, err = tradelog.ParseTxType(typ); err != nil {
		return tx, s.errorf(err, "invalid order header")
	}
	if tx.Symbol == "" {
		return tx, s.errorf(nil, "missing symbol")
	}

	// detail
	if tx.Shares, err = s.number("share", l.DetailLine, l.ShareField, l.SharePrefix); err != nil {
		return tx, err
	}
	if tx.Price, err = s.number("price", l.DetailLine, l.PriceField, 0); err != nil {
		return tx, err
	}
	if tx.GrossAmount, err = s.number("amount", l.DetailLine, l.AmountField, l.AmountPrefix); err != nil {
		return tx, err
	}
	combined, err := s.number("commission and tax", l.DetailLine, l.CombinedField, 0)
	if err != nil {
		return tx, err
	}
	tx.Commission, tx.WithholdingTax = tradelog.Reconcile(tx.GrossAmount, combined)

	if confirmation, ok := s.optional(l.TaxLine); ok {
		s.confirm(tx.Symbol, tx.WithholdingTax, taxAmount(confirmation, l.TaxFrom, l.TaxTo))
	}
	return tx, nil
}

// option reads an option transaction line.
func (s *scanner) option() (tradelog.OptionTransaction, error) {
	var tx tradelog.OptionTransaction
	f := strings.Fields(s.lines[s.at])
	if len(f) < optionFields {
		return tx, s.errorf(nil, "option line has %d fields, want %d", len(f), optionFields)
	}
	var err error
	if tx.Type, err = tradelog.ParseTxType(f[optionTypeField]); err != nil {
		return tx, s.errorf(err, "invalid option line")
	}
	if tx.OptionSymbol, err = tradelog.ParseOptionSymbol(f[optionSymbolField]); err != nil {
		return tx, s.errorf(err, "invalid option symbol")
	}
	if tx.Contracts, err = s.number("contracts", 0, optionContractsField, 0); err != nil {
		return tx, err
	}
	if tx.Price, err = s.number("price", 0, optionPriceField, 0); err != nil {
		return tx, err
	}
	if tx.GrossAmount, err = s.number("amount", 0, optionAmountField, 0); err != nil {
		return tx, err
	}
	combined, err := s.number("commission and tax", 0, optionCombinedField, 0)
	if err != nil {
		return tx, err
	}
	tx.Commission, tx.WithholdingTax = tradelog.Reconcile(tx.GrossAmount, combined)

	if confirmation, ok := s.optional(optionTaxLine); ok {
		vat, _ := strings.CutPrefix(strings.TrimSpace(confirmation), "VAT")
		s.confirm(f[optionSymbolField], tx.WithholdingTax, taxAmount(vat, 0, 0))
	}
	return tx, nil
}

// taxAmount reads the amount in line[from:to], if any.
func taxAmount(line string, from, to int) *decimal.Decimal {
	if to <= 0 || to > len(line) {
		to = len(line)
	}
	if from >= to {
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(line[from:to]))
	if err != nil {
		return nil
	}
	return &v
}

// confirm logs when the reconciled tax differs from the statement's. The reconciled one is kept.
func (s *scanner) confirm(symbol string, reconciled decimal.Decimal, printed *decimal.Decimal) {
	if printed == nil || printed.Equal(reconciled) {
		return
	}
	s.log.Info().Int("page", s.page).Int("line", s.at+1).Str("symbol", symbol).
		Stringer("reconciled", reconciled).Stringer("printed", printed).
		Msg("withholding tax differs from the statement")
}
