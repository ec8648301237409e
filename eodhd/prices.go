package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/etnz/tradelog"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// priceWindow is how many days before the requested day are fetched, to
// reach the previous trading day across weekends and holidays.
const priceWindow = 10

// eodPrice is one item of https://eodhd.com/api/eod/MCD.US?fmt=json
//
//	{"date": "2024-02-13", "open": 675.066, "high": 684.219, "low": 648.659, "close": 668.445, "adjusted_close": 67.705, "volume": 0}
type eodPrice struct {
	Date  tradelog.Date   `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// ClosingPrice returns the close of symbol on the last trading day on or before day.
func (c *Client) ClosingPrice(ctx context.Context, symbol string, day tradelog.Date) (decimal.Decimal, error) {
	key := fmt.Sprintf("price %s %s", symbol, day)
	if v, ok := c.memo.Get(key); ok {
		return v.(decimal.Decimal), nil
	}

	query := url.Values{
		"from": {day.Add(-priceWindow).String()},
		"to":   {day.String()},
	}
	var content []eodPrice
	op := fmt.Sprintf("closing price %s %s", symbol, day)
	if err := c.jwget(ctx, c.daily, op, "/eod/"+c.ticker(symbol), query, &content); err != nil {
		if errors.Is(err, errNotFound) {
			return decimal.Zero, fmt.Errorf("%s: %w", symbol, tradelog.ErrNoPrice)
		}
		return decimal.Zero, err
	}

	var last *eodPrice
	for i := range content {
		p := &content[i]
		if p.Date.After(day) {
			continue
		}
		if last == nil || p.Date.After(last.Date) {
			last = p
		}
	}
	if last == nil {
		return decimal.Zero, fmt.Errorf("%s on %s: %w", symbol, day, tradelog.ErrNoPrice)
	}
	c.memo.Set(key, last.Close, cache.DefaultExpiration)
	return last.Close, nil
}
