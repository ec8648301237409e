package tradelog

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

// Key is the identity of a position across days.
type Key struct {
	Port        string
	ProductName string
	Sector      string
	Industry    string
}

// compare orders keys by product name first, then port, sector and industry.
func (k Key) compare(o Key) int {
	if c := cmp.Compare(k.ProductName, o.ProductName); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Port, o.Port); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Sector, o.Sector); c != 0 {
		return c
	}
	return cmp.Compare(k.Industry, o.Industry)
}

// PositionSnapshot is the state of one position at the close of a day.
//
// Market derived fields are nil when they could not be computed.
type PositionSnapshot struct {
	Date Date
	Key
	Share            decimal.Decimal
	AmountUSD        decimal.Decimal
	TotalAmountUSD   decimal.Decimal
	IsMarketOpen     bool
	ClosingPrice     *decimal.Decimal
	Valuation        *decimal.Decimal
	Performance      *decimal.Decimal
	TotalPerformance *decimal.Decimal
}

// Snapshot is the full set of positions at the close of a day.
type Snapshot struct {
	Date Date
	Rows []PositionSnapshot
}

// IsZero reports whether the snapshot has never been computed.
func (s Snapshot) IsZero() bool { return s.Date.IsZero() && len(s.Rows) == 0 }

// row returns the row for a key.
func (s Snapshot) row(k Key) (PositionSnapshot, bool) {
	for _, r := range s.Rows {
		if r.Key == k {
			return r, true
		}
	}
	return PositionSnapshot{}, false
}

// Clone returns a copy of the snapshot with its own rows.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Date: s.Date, Rows: slices.Clone(s.Rows)}
}

// sortRows sorts rows by key.
func sortRows(rows []PositionSnapshot) {
	slices.SortStableFunc(rows, func(a, b PositionSnapshot) int { return a.Key.compare(b.Key) })
}

// MarshalJSON implements the json.Marshaler interface for PositionSnapshot.
func (p PositionSnapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", p.Date)
	w.Append("open", p.IsMarketOpen)
	w.Append("port", p.Port)
	w.Append("product", p.ProductName)
	w.Optional("sector", p.Sector)
	w.Optional("industry", p.Industry)
	w.Append("share", p.Share)
	w.Append("amount", p.AmountUSD)
	w.Append("total", p.TotalAmountUSD)
	w.Optional("close", p.ClosingPrice)
	w.Optional("valuation", p.Valuation)
	w.Optional("performance", p.Performance)
	w.Optional("totalPerformance", p.TotalPerformance)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for PositionSnapshot.
func (p *PositionSnapshot) UnmarshalJSON(data []byte) error {
	var temp struct {
		Date             Date             `json:"date"`
		IsMarketOpen     bool             `json:"open"`
		Port             string           `json:"port"`
		ProductName      string           `json:"product"`
		Sector           string           `json:"sector"`
		Industry         string           `json:"industry"`
		Share            decimal.Decimal  `json:"share"`
		AmountUSD        decimal.Decimal  `json:"amount"`
		TotalAmountUSD   decimal.Decimal  `json:"total"`
		ClosingPrice     *decimal.Decimal `json:"close"`
		Valuation        *decimal.Decimal `json:"valuation"`
		Performance      *decimal.Decimal `json:"performance"`
		TotalPerformance *decimal.Decimal `json:"totalPerformance"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*p = PositionSnapshot{
		Date:             temp.Date,
		Key:              Key{Port: temp.Port, ProductName: temp.ProductName, Sector: temp.Sector, Industry: temp.Industry},
		Share:            temp.Share,
		AmountUSD:        temp.AmountUSD,
		TotalAmountUSD:   temp.TotalAmountUSD,
		IsMarketOpen:     temp.IsMarketOpen,
		ClosingPrice:     temp.ClosingPrice,
		Valuation:        temp.Valuation,
		Performance:      temp.Performance,
		TotalPerformance: temp.TotalPerformance,
	}
	return nil
}
