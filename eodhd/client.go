// Package eodhd provides market data from https://eodhd.com: closing prices,
// stock fundamentals and the exchange trading calendar.
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/tradelog"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const service = "eodhd"

// DefaultBaseURL is the EODHD API root.
const DefaultBaseURL = "https://eodhd.com/api"

// errNotFound is wrapped by errors for unknown tickers.
var errNotFound = errors.New("not found")

// Client queries the EODHD API. It implements tradelog.PriceSource,
// tradelog.MetaSource and tradelog.Calendar.
type Client struct {
	Token    string
	BaseURL  string
	Exchange string // EODHD exchange code appended to symbols
	Limiter  *rate.Limiter
	Log      zerolog.Logger

	daily   *http.Client // prices
	monthly *http.Client // fundamentals and holidays
	memo    *cache.Cache
}

// New returns a client for the US exchange. Responses are cached in cacheDir
// when it is not empty.
func New(token, cacheDir string, log zerolog.Logger) *Client {
	return &Client{
		Token:    token,
		BaseURL:  DefaultBaseURL,
		Exchange: "US",
		// the free plan allows 20 calls per second
		Limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		Log:     log,
		daily:   newCachingClient(cacheDir, tradelog.Daily, log),
		monthly: newCachingClient(cacheDir, tradelog.Monthly, log),
		memo:    cache.New(12*time.Hour, time.Hour),
	}
}

// ticker returns the EODHD ticker of a broker symbol, e.g. BRK.B is BRK-B.US.
func (c *Client) ticker(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-") + "." + c.Exchange
}

// jwget GETs path with query and decodes the JSON response into data.
func (c *Client) jwget(ctx context.Context, client *http.Client, op, path string, query url.Values, data any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.Token)
	query.Set("fmt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		// the url carries the token, keep only the cause
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return &tradelog.ExternalServiceError{Service: service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &tradelog.AuthenticationError{Service: service, Err: fmt.Errorf("GET %s: %s", path, resp.Status)}
	case resp.StatusCode == http.StatusNotFound:
		return &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("GET %s: %w", path, errNotFound)}
	case resp.StatusCode != http.StatusOK:
		return &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("GET %s: %s", path, resp.Status)}
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return &tradelog.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}
