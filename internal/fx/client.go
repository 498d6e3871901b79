package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/logging"
)

// RateTable is one answer of the exchange-rate service: how many units of
// each currency one unit of Base buys on Date.
type RateTable struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// RateSource looks up a rate table. A zero date asks for the latest rates.
type RateSource interface {
	Rates(ctx context.Context, base string, date time.Time, symbols []string) (*RateTable, error)
}

type ClientOptions struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
	Attempts  int
	Backoff   time.Duration
}

type Client struct {
	baseURL    string
	accessKey  string
	attempts   int
	backoff    time.Duration
	httpClient *http.Client
}

func NewClient(o ClientOptions) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(o.BaseURL, "/"),
		accessKey: o.AccessKey,
		attempts:  o.Attempts,
		backoff:   o.Backoff,
		httpClient: &http.Client{
			Timeout: o.Timeout,
		},
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 10 * time.Second
	}
	if c.attempts <= 0 {
		c.attempts = 3
	}
	if c.backoff <= 0 {
		c.backoff = 200 * time.Millisecond
	}
	return c
}

func (c *Client) Rates(ctx context.Context, base string, date time.Time, symbols []string) (*RateTable, error) {
	log := logging.FromContext(ctx)

	u := c.url(base, date, symbols)
	attempt := 0
	var table *RateTable

	op := func() error {
		attempt++
		start := time.Now()
		t, retry, err := c.fetch(ctx, u)
		log.Debug("rate service request",
			"base", base, "date", dateParam(date), "attempt", attempt,
			"duration_ms", time.Since(start).Milliseconds(), "error", err,
		)
		if err != nil {
			if !retry || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		table = t
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoff
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.attempts-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("Rates %s %s: %w: %w", base, dateParam(date), domain.ErrExternalService, err)
	}
	return table, nil
}

// fetch performs one request. retry reports whether the failure is worth
// another attempt: transport errors and 5xx are, anything else is not.
func (c *Client) fetch(ctx context.Context, u string) (_ *RateTable, retry bool, _ error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode >= 500, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var t RateTable
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, false, fmt.Errorf("decode: %w", err)
	}
	if t.Rates == nil {
		return nil, false, fmt.Errorf("decode: response has no rates")
	}
	return &t, false, nil
}

func (c *Client) url(base string, date time.Time, symbols []string) string {
	q := url.Values{}
	q.Set("base", base)
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}
	if c.accessKey != "" {
		q.Set("access_key", c.accessKey)
	}
	return c.baseURL + "/" + dateParam(date) + "?" + q.Encode()
}

func dateParam(date time.Time) string {
	if date.IsZero() {
		return "latest"
	}
	return date.UTC().Format(time.DateOnly)
}
