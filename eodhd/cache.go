package eodhd

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
)

// diskCache keeps successful responses on disk for the current period.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	period tradelog.Period
	log    zerolog.Logger
}

// RoundTrip serves a cached response when one exists for the current period,
// otherwise it performs the request and caches successful responses.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the key changes with the period, so entries expire on their own.
	rangeID := c.period.Range(tradelog.Today()).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	key = fmt.Sprintf("eodhd-%s-%x", c.period, sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		c.log.Debug().Str("path", req.URL.Path).Msg("cache hit")
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp, whose body is read and replaced so the caller can still consume it.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// newCachingClient returns a client caching responses in dir for period.
// An empty dir disables the cache.
func newCachingClient(dir string, period tradelog.Period, log zerolog.Logger) *http.Client {
	if dir == "" {
		return new(http.Client)
	}
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: dir, period: period, log: log}}
}
