package explorer

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// rateLimitedTransport enforces a minimum spacing between consecutive HTTP
// attempts across all endpoints sharing the transport. It is a single-slot
// limiter, not a token bucket: back-to-back bursts are never allowed, and no
// credit accumulates for idle periods.
//
// Requests are serialized; every attempt (including retries) pays the
// spacing cost, measured from the completion of the previous attempt.
type rateLimitedTransport struct {
	next        http.RoundTripper
	minInterval time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	mu          sync.Mutex
	lastRequest time.Time
}

// sleepContext pauses for d or until ctx is canceled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// newRateLimitedTransport wraps next with the single-slot limiter.
func newRateLimitedTransport(next http.RoundTripper, minInterval time.Duration) *rateLimitedTransport {
	return &rateLimitedTransport{
		next:        next,
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// RoundTrip waits out the remainder of the minimum interval since the
// previous attempt, then forwards the request. The completion time is
// recorded after the response arrives, so slow responses do not grant the
// next request a head start.
func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastRequest.IsZero() {
		if wait := t.minInterval - t.now().Sub(t.lastRequest); wait > 0 {
			t.sleep(req.Context(), wait)
		}
	}

	resp, err := t.next.RoundTrip(req)
	t.lastRequest = t.now()
	return resp, err
}
