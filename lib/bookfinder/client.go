// Package bookfinder looks books up in Open Library search API.
package bookfinder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"minitools/lib/apperr"
	. "minitools/lib/logx"
	"minitools/lib/textutils"
	"minitools/lib/xdialer"
)

const DefaultBaseURL = "https://openlibrary.org/search.json"

type Config struct {
	BaseURL   string
	Proxy     string        // socks5:// chain, empty for direct
	Timeout   time.Duration // 0 means none
	UserAgent string
	MaxBody   int64 // response size limit, 0 means none
}

var DefaultConfig = Config{
	BaseURL:   DefaultBaseURL,
	UserAgent: "minitools-bookfinder/1.0",
	MaxBody:   32 << 20,
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

type Client struct {
	cfg  Config
	base *url.URL
	hc   *http.Client
	log  Logger
}

func NewClient(cfg Config, lx LoggerX) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.New(apperr.InvalidInput, "bookfinder", "bad base url %q", cfg.BaseURL)
	}
	tr, err := xdialer.Transport(cfg.Proxy)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "bookfinder", err)
	}
	return &Client{
		cfg:  cfg,
		base: u,
		hc:   &http.Client{Transport: tr, Timeout: cfg.Timeout},
		log:  NewLogToX(lx, "bookfinder"),
	}, nil
}

// SearchURL builds request URL for query.
func (c *Client) SearchURL(query string) string {
	u := *c.base
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return u.String()
}

// Search runs query. No retries, no pagination.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = textutils.NormalizeQuery(query)
	if query == "" {
		return nil, apperr.New(apperr.InvalidInput, "search", "empty query")
	}

	su := c.SearchURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, su, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "search", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.log.LogPrintf(DEBUG, "GET %s", su)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.NetworkError, "search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain a bit so connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		c.log.LogPrintf(NOTICE, "GET %s: %s", su, resp.Status)
		return nil, apperr.Wrap(apperr.NetworkError, "search",
			&StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	var body io.Reader = resp.Body
	if c.cfg.MaxBody > 0 {
		body = io.LimitReader(resp.Body, c.cfg.MaxBody)
	}
	res := new(SearchResult)
	if err = json.NewDecoder(body).Decode(res); err != nil {
		return nil, apperr.Wrap(apperr.DecodeError, "search", err)
	}
	c.log.LogPrintf(DEBUG, "query %q: %d found, %d docs", query, res.NumFound, len(res.Docs))
	return res, nil
}
