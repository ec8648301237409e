package statement

import (
	"strings"

	"github.com/etnz/tradelog"
)

// Layout locates the fields of a statement.
//
// Line offsets are relative to the line holding the exchange marker. Field
// indexes refer to the whitespace separated fields of a line, and prefixes
// are a number of characters to skip at the start of a field.
type Layout struct {
	Name string

	DateLine int // absolute line index of the statement date on a page

	HeaderLine   int // line holding the transaction type
	TypeField    int
	SymbolLine   int  // line holding the symbol, unused when SymbolInType
	SymbolInType bool // the symbol follows the 3 letters type in the type field

	DetailLine    int
	ShareField    int
	SharePrefix   int
	PriceField    int
	AmountField   int
	AmountPrefix  int
	CombinedField int

	TaxLine        int // broker's withholding tax confirmation
	TaxFrom, TaxTo int // character range of the amount, TaxTo 0 means the rest of the line
}

// Layout2024 is the statement layout in use since 2024.
//
//	Order 1234 Buy ...           header: type is field 2
//	AAPL                         symbol
//	... [XNAS] ...               marker
//	0.5 200.00 USD 100.00 0.16   detail: share price _ amount combined
//	...
//	0.01                         withholding tax confirmation
var Layout2024 = Layout{
	Name:          "2024",
	DateLine:      20,
	HeaderLine:    -2,
	TypeField:     2,
	SymbolLine:    -1,
	DetailLine:    1,
	ShareField:    0,
	PriceField:    1,
	AmountField:   3,
	CombinedField: 4,
	TaxLine:       3,
}

// LayoutLegacy is the statement layout used before 2024.
//
//	Order 1234 BUYAAPL ...                   header: type and symbol in field 2
//	Share:0.5 200.00 USD100.00 0.16 [XNAS]   marker and detail
//	VAT 0.01                                 withholding tax confirmation
var LayoutLegacy = Layout{
	Name:          "legacy",
	DateLine:      14,
	HeaderLine:    -1,
	TypeField:     2,
	SymbolInType:  true,
	DetailLine:    0,
	ShareField:    0,
	SharePrefix:   6,
	PriceField:    1,
	AmountField:   2,
	AmountPrefix:  3,
	CombinedField: 3,
	TaxLine:       1,
	TaxFrom:       4,
	TaxTo:         9,
}

// Layouts are the known layouts, most recent first.
var Layouts = []Layout{Layout2024, LayoutLegacy}

// dateWidth is the length of a DD/MM/YYYY date.
const dateWidth = 10

// date reads the statement date of a page, if any.
func (l Layout) date(lines []string) (tradelog.Date, bool) {
	if l.DateLine >= len(lines) {
		return tradelog.Date{}, false
	}
	line := strings.TrimSpace(lines[l.DateLine])
	if len(line) < dateWidth {
		return tradelog.Date{}, false
	}
	d, err := tradelog.ParseStatementDate(line[:dateWidth])
	if err != nil {
		return tradelog.Date{}, false
	}
	return d, true
}

// DetectLayout returns the first known layout whose date line parses on one
// of the pages.
func DetectLayout(pages []string) (Layout, bool) {
	for _, page := range pages {
		lines := splitLines(page)
		for _, l := range Layouts {
			if _, ok := l.date(lines); ok {
				return l, true
			}
		}
	}
	return Layout{}, false
}

// splitLines splits a page text into lines, without carriage returns.
func splitLines(page string) []string {
	lines := strings.Split(page, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
