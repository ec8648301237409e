// Package holiday fetches the financial institutions holidays published by
// the Bank of Thailand.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
)

const service = "bot"

// DefaultBaseURL is the BOT holidays endpoint.
const DefaultBaseURL = "https://apigw1.bot.or.th/bot/public/financial-institutions-holidays/"

// List is the holidays of a year.
type List struct {
	Year       int             `json:"year"`
	UpdateTime string          `json:"update_time"` // as reported by the API, e.g. "2025-05-20 10:00:00"
	Holidays   []tradelog.Date `json:"holidays"`
}

// Contains reports whether day is a holiday.
func (l List) Contains(day tradelog.Date) bool {
	for _, h := range l.Holidays {
		if h == day {
			return true
		}
	}
	return false
}

// Client queries the BOT API.
type Client struct {
	ClientID string // sent as X-IBM-Client-Id
	BaseURL  string
	HTTP     *http.Client
	Retry    tradelog.RetryPolicy
	Log      zerolog.Logger
}

// NewClient returns a client retrying 3 times.
func NewClient(clientID string, log zerolog.Logger) *Client {
	return &Client{
		ClientID: clientID,
		BaseURL:  DefaultBaseURL,
		HTTP:     new(http.Client),
		Retry:    tradelog.DefaultRetryPolicy,
		Log:      log,
	}
}

// Fetch returns the holidays of year.
func (c *Client) Fetch(ctx context.Context, year int) (List, error) {
	return tradelog.Retry(ctx, c.Retry, c.Log, "thai holidays", func(ctx context.Context) (List, error) {
		return c.fetch(ctx, year)
	})
}

/*
fetch reads one response of the API

	{
	    "result": {
	        "api": "Financial Institutions' Holidays",
	        "timestamp": "2025-05-20 10:00:00",
	        "data": [
	            {"HolidayWeekDay": "Wednesday", "Date": "2025-01-01", "HolidayDescription": "New Year's Day", ...},
	            ...
	        ]
	    }
	}
*/
func (c *Client) fetch(ctx context.Context, year int) (List, error) {
	op := fmt.Sprintf("holidays %d", year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?year="+strconv.Itoa(year), nil)
	if err != nil {
		return List{}, err
	}
	req.Header.Set("X-IBM-Client-Id", c.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return List{}, &tradelog.AuthenticationError{Service: service, Err: fmt.Errorf("%s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("%s", resp.Status)}
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	timestamp, err := jsonpath.Get("$.result.timestamp", jobj)
	if err != nil {
		return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("unexpected response structure: %w", err)}
	}
	dates, err := jsonpath.Get("$.result.data[*].Date", jobj)
	if err != nil {
		return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("unexpected response structure: %w", err)}
	}

	l := List{Year: year}
	l.UpdateTime, _ = timestamp.(string)
	list, _ := dates.([]any)
	for _, v := range list {
		s, _ := v.(string)
		d, err := tradelog.ParseDate(s)
		if err != nil {
			return List{}, &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("invalid holiday date %q: %w", s, err)}
		}
		l.Holidays = append(l.Holidays, d)
	}
	c.Log.Debug().Int("year", year).Int("holidays", len(l.Holidays)).Msg("thai holidays fetched")
	return l, nil
}
