package explorer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

// checkRetry decides whether an attempt should be retried. It is a pure
// policy function (retryablehttp does the sleeping):
//
//   - transport-level errors are retryable;
//   - HTTP 429 and any 5xx are retryable (the server is asking us to slow
//     down or is temporarily failing);
//   - every other status is terminal, including other 4xx responses, which
//     indicate a request the server will never accept. Retrying those would
//     only hammer a shared API.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}

	return false, nil
}

// newBackoff builds the delay policy for retries:
//
//   - 429 responses honor the server-supplied Retry-After header when
//     present, falling back to the fixed retry delay;
//   - 5xx responses wait the fixed retry delay;
//   - transport-level failures (no response) back off progressively,
//     retryDelay multiplied by the attempt number.
func newBackoff(retryDelay time.Duration) func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	return func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if resp == nil {
			return retryDelay * time.Duration(attemptNum+1)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if header := resp.Header.Get("Retry-After"); header != "" {
				if seconds, err := strconv.ParseFloat(header, 64); err == nil {
					return time.Duration(seconds * float64(time.Second))
				}
			}
		}

		return retryDelay
	}
}

// isNameResolutionError reports whether the error chain contains a DNS
// lookup failure. Exhausted name-resolution failures are absorbed into an
// empty result instead of propagating; the next tick retries from scratch.
func isNameResolutionError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
