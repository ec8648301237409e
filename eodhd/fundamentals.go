package eodhd

import (
	"context"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradelog"
	"github.com/patrickmn/go-cache"
)

/*
StockMeta reads the General and Highlights sections of
https://eodhd.com/api/fundamentals/AAPL.US?fmt=json

	{
	    "General": {
	        "Code": "AAPL",
	        "Sector": "Technology",
	        "Industry": "Consumer Electronics",
	        ...
	    },
	    "Highlights": {
	        "DividendShare": 0.96,
	        "DividendYield": 0.0045,
	        ...
	    },
*/
func (c *Client) StockMeta(ctx context.Context, symbol string) (tradelog.StockMeta, error) {
	key := "meta " + symbol
	if v, ok := c.memo.Get(key); ok {
		return v.(tradelog.StockMeta), nil
	}

	var jobj any
	if err := c.jwget(ctx, c.monthly, "fundamentals "+symbol, "/fundamentals/"+c.ticker(symbol), nil, &jobj); err != nil {
		return tradelog.StockMeta{}, err
	}
	meta := tradelog.StockMeta{
		Sector:   jstring(jobj, "$.General.Sector"),
		Industry: jstring(jobj, "$.General.Industry"),
	}
	if v, ok := jfirst(jobj, "$.Highlights.DividendShare").(float64); ok && v > 0 {
		meta.HasDividend = true
	}
	c.Log.Debug().Str("symbol", symbol).Str("sector", meta.Sector).Str("industry", meta.Industry).Bool("dividend", meta.HasDividend).Msg("stock meta")

	c.memo.Set(key, meta, cache.DefaultExpiration)
	return meta, nil
}

// jfirst returns the value at path, or nil if there is none.
func jfirst(jobj any, path string) any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	// jsonpath may return a list of one answer or the answer itself.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil
		}
		jval = jlist[0]
	}
	return jval
}

// jstring returns the string at path, or "" if there is none.
func jstring(jobj any, path string) string {
	s, _ := jfirst(jobj, path).(string)
	return s
}
