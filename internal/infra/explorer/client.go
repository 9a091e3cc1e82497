// Package explorer implements the monitor's fetch layer against an Ergo
// block-explorer HTTP API. All requests share a single-slot rate limiter,
// and the retry policy distinguishes "slow down" (429/5xx, retried) from
// "bad request" (other 4xx, absorbed as an empty result) from network flakes
// (retried with progressive backoff).
package explorer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"
	transporthttp "github.com/gabapcia/ergowatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// defaultMaxRetries is the total number of attempts per request.
	defaultMaxRetries = 3

	// defaultRetryDelay is the fixed pause applied after 5xx responses and
	// after 429 responses lacking a Retry-After header.
	defaultRetryDelay = 5 * time.Second

	// defaultMinRequestInterval is the minimum spacing between any two
	// requests to the explorer, shared across all endpoints.
	defaultMinRequestInterval = 1 * time.Second

	// defaultRequestTimeout bounds a single attempt.
	defaultRequestTimeout = 30 * time.Second
)

// Client talks to the explorer API. It implements both the
// monitor.ExplorerGateway and monitor.BalanceTracker capabilities.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	now     func() time.Time

	closeOnce sync.Once
}

// config holds the optional settings applied by NewClient.
type config struct {
	maxRetries         int
	retryDelay         time.Duration
	minRequestInterval time.Duration
	requestTimeout     time.Duration
	transport          http.RoundTripper
	now                func() time.Time
	sleep              func(ctx context.Context, d time.Duration)
}

// Option configures the explorer client.
type Option func(*config)

// NewClient creates an explorer client for the given API base URL. Defaults:
// 3 total attempts, 5s fixed retry delay, 1s minimum request spacing, 30s
// per-attempt timeout.
func NewClient(baseURL string, opts ...Option) *Client {
	cfg := config{
		maxRetries:         defaultMaxRetries,
		retryDelay:         defaultRetryDelay,
		minRequestInterval: defaultMinRequestInterval,
		requestTimeout:     defaultRequestTimeout,
		transport:          http.DefaultTransport,
		now:                time.Now,
		sleep:              sleepContext,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	limiter := newRateLimitedTransport(cfg.transport, cfg.minRequestInterval)
	limiter.now = cfg.now
	limiter.sleep = cfg.sleep

	httpClient := transporthttp.NewClient(
		transporthttp.WithTimeout(cfg.requestTimeout),
		transporthttp.WithRetryMax(cfg.maxRetries-1),
		transporthttp.WithRetryWaitMin(cfg.retryDelay),
		transporthttp.WithRetryWaitMax(cfg.retryDelay*time.Duration(cfg.maxRetries)),
		transporthttp.WithCheckRetry(checkRetry),
		transporthttp.WithBackoff(newBackoff(cfg.retryDelay)),
		// Passthrough lets fetch classify the final response/error itself
		// instead of receiving a generic "giving up" error.
		transporthttp.WithErrorHandler(retryablehttp.PassthroughErrorHandler),
		transporthttp.WithTransport(limiter),
	)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		now:     cfg.now,
	}
}

// WithMaxRetries sets the total number of attempts per request. Default: 3.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the fixed delay applied after retryable responses.
// Default: 5s.
func WithRetryDelay(d time.Duration) Option {
	return func(c *config) {
		c.retryDelay = d
	}
}

// WithMinRequestInterval sets the minimum spacing between consecutive
// requests. Default: 1s.
func WithMinRequestInterval(d time.Duration) Option {
	return func(c *config) {
		c.minRequestInterval = d
	}
}

// WithRequestTimeout bounds a single attempt. Default: 30s.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) {
		c.requestTimeout = d
	}
}

// WithTransport sets the base RoundTripper wrapped by the rate limiter.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}

// WithNowFunc injects the wall-clock read used for rate limiting and
// mempool timestamp synthesis.
func WithNowFunc(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithSleepFunc injects the pause primitive used by the rate limiter.
func WithSleepFunc(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(c *config) {
		c.sleep = sleep
	}
}

// fetch issues a GET against the explorer and decodes a 200 response into
// out. Failure classes the next tick can recover from are absorbed rather
// than propagated: a final non-200 status or an exhausted name-resolution
// failure logs the problem and leaves out untouched, yielding an empty
// result. Any other final error is returned to the caller.
func (c *Client) fetch(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isNameResolutionError(err) {
			logger.Warn(ctx, "name resolution failed, giving up until next check",
				"url", rawURL,
				"error", err,
			)
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error(ctx, "request failed",
			"url", rawURL,
			"status", resp.StatusCode,
		)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Close releases the client's idle connections. It is safe to call multiple
// times; only the first call has any effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.http.HTTPClient.CloseIdleConnections()
	})
	return nil
}
