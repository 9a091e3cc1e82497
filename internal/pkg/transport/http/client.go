// Package http provides a configurable HTTP client with retry logic.
// It wraps the retryablehttp.Client from HashiCorp and exposes functional
// options for customizing timeouts, retry behavior, and retry policy hooks
// so callers can encode API-specific semantics (e.g. honoring Retry-After
// on 429 responses) without reimplementing the request loop.
package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// config holds internal settings for the HTTP client.
type config struct {
	timeout      time.Duration              // maximum duration for a single HTTP request
	retryWaitMin time.Duration              // minimum delay between retry attempts
	retryWaitMax time.Duration              // maximum delay between retry attempts
	retryMax     int                        // maximum number of retry attempts
	checkRetry   retryablehttp.CheckRetry   // decides whether a response/error is retryable
	backoff      retryablehttp.Backoff      // computes the delay before the next attempt
	errorHandler retryablehttp.ErrorHandler // shapes the final result once retries are exhausted
	transport    http.RoundTripper          // underlying transport for individual attempts
}

// Option defines a functional option for configuring the HTTP client.
type Option func(*config)

// NewClient creates and returns a retryablehttp.Client configured with
// the provided options. If no options are given, default values are used:
//
//   - timeout:      5 seconds
//   - retryWaitMin: 1 second
//   - retryWaitMax: 5 seconds
//   - retryMax:     2 retries
//   - policy:       retryablehttp defaults (CheckRetry, Backoff, ErrorHandler)
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax

	if cfg.checkRetry != nil {
		client.CheckRetry = cfg.checkRetry
	}
	if cfg.backoff != nil {
		client.Backoff = cfg.backoff
	}
	if cfg.errorHandler != nil {
		client.ErrorHandler = cfg.errorHandler
	}
	if cfg.transport != nil {
		client.HTTPClient.Transport = cfg.transport
	}

	return client
}

// WithTimeout sets the maximum duration allowed for a single HTTP request.
// Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
// Default: 1 second.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
// Default: 5 seconds.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the maximum number of retry attempts for failed requests.
// Default: 2 retries.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithCheckRetry overrides the policy deciding whether a response or error
// should be retried.
func WithCheckRetry(f retryablehttp.CheckRetry) Option {
	return func(c *config) {
		c.checkRetry = f
	}
}

// WithBackoff overrides the policy computing the delay before the next attempt.
func WithBackoff(f retryablehttp.Backoff) Option {
	return func(c *config) {
		c.backoff = f
	}
}

// WithErrorHandler overrides how the final response and error are surfaced
// once all retries are exhausted. retryablehttp.PassthroughErrorHandler is
// useful when the caller wants to classify the last response itself.
func WithErrorHandler(f retryablehttp.ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = f
	}
}

// WithTransport sets the RoundTripper used for individual attempts. This is
// the hook for wrapping the transport with rate limiting.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}
