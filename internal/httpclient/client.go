// Package httpclient issues the tool's HTTP calls: rate-limited, single
// attempt, no retries. Generate calls may block for minutes on the
// deep-reasoning surface, so the client carries no overall timeout there;
// elapsed wall-clock time is measured and surfaced instead. Status codes
// are returned, never interpreted — classification happens upstream.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Result wraps a raw HTTP exchange.
type Result struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// Mirror receives every raw response body, success or failure, for
// post-hoc debugging.
type Mirror interface {
	Write(body []byte) error
}

// Client is the rate-limited HTTP client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	mirror  Mirror
}

// Option configures the Client.
type Option func(*Client)

// WithRateLimit sets requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMirror mirrors every response body to the given sink.
func WithMirror(m Mirror) Option {
	return func(c *Client) { c.mirror = m }
}

// WithTimeout bounds the whole request. Used for discovery listings only;
// generate calls stay unbounded and rely on context cancellation.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client. Without WithTimeout the client never times out on
// its own.
func New(opts ...Option) *Client {
	c := &Client{http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post issues a single POST and returns the raw result regardless of
// status code. Transport-level failures (no response at all) return an
// error; HTTP-level failures return a Result with the failure body.
func (c *Client) Post(ctx context.Context, url string, headers map[string]string, payload []byte) (*Result, error) {
	return c.do(ctx, http.MethodPost, url, headers, payload)
}

// Get issues a single GET.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Result, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, payload []byte) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.mirror != nil {
		_ = c.mirror.Write(respBody)
	}

	return &Result{StatusCode: resp.StatusCode, Body: respBody, Elapsed: elapsed}, nil
}
