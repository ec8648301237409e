package eodhd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradelog"
	"github.com/patrickmn/go-cache"
)

// IsTradingDay tells whether the exchange is open on day: it is not a
// weekend and not an official exchange holiday.
func (c *Client) IsTradingDay(ctx context.Context, day tradelog.Date) (bool, error) {
	if open, _ := tradelog.Weekdays.IsTradingDay(ctx, day); !open {
		return false, nil
	}
	holidays, err := c.holidays(ctx, day.Year())
	if err != nil {
		return false, err
	}
	_, closed := holidays[day]
	return !closed, nil
}

/*
holidays returns the official holidays of a year from
https://eodhd.com/api/exchange-details/US?fmt=json&from=2025-01-01&to=2025-12-31

	{
	    "Name": "USA Stocks",
	    "Code": "US",
	    "ExchangeHolidays": {
	        "0": {"Holiday": "New Year's Day", "Date": "2025-01-01", "Type": "official"},
	        "1": {"Holiday": "Columbus Day", "Date": "2025-10-13", "Type": "bank"},
	        ...
	    },

Bank holidays are listed too, but the exchange trades on those.
*/
func (c *Client) holidays(ctx context.Context, year int) (map[tradelog.Date]struct{}, error) {
	key := fmt.Sprintf("holidays %s %d", c.Exchange, year)
	if v, ok := c.memo.Get(key); ok {
		return v.(map[tradelog.Date]struct{}), nil
	}

	query := url.Values{
		"from": {tradelog.NewDate(year, 1, 1).String()},
		"to":   {tradelog.NewDate(year, 12, 31).String()},
	}
	op := fmt.Sprintf("exchange holidays %d", year)
	var jobj any
	if err := c.jwget(ctx, c.monthly, op, "/exchange-details/"+c.Exchange, query, &jobj); err != nil {
		return nil, err
	}

	holidays := make(map[tradelog.Date]struct{})
	jval, err := jsonpath.Get("$.ExchangeHolidays[*]", jobj)
	if err != nil {
		// no holiday section
		c.memo.Set(key, holidays, cache.DefaultExpiration)
		return holidays, nil
	}
	list, _ := jval.([]any)
	for _, item := range list {
		h, ok := item.(map[string]any)
		if !ok || h["Type"] != "official" {
			continue
		}
		s, _ := h["Date"].(string)
		d, err := tradelog.ParseDate(s)
		if err != nil {
			return nil, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("invalid holiday date %q: %w", s, err)}
		}
		holidays[d] = struct{}{}
	}
	c.Log.Debug().Int("year", year).Int("holidays", len(holidays)).Msg("exchange holidays")
	c.memo.Set(key, holidays, cache.DefaultExpiration)
	return holidays, nil
}
