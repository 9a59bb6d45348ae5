package ratelimit

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"telltales/pkg/logging"
)

// Limiter enforces a minimum gap between consecutive requests.
type Limiter struct {
	interval time.Duration
	clock    Clock

	// sem admits one request at a time; last is only touched while holding it.
	sem  *semaphore.Weighted
	last time.Time
}

// New creates a limiter with the given interval. A nil clock uses real time.
func New(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = RealClock()
	}
	return &Limiter{
		interval: interval,
		clock:    clock,
		sem:      semaphore.NewWeighted(1),
	}
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Do waits for its turn, runs fn, and records the moment fn returned as the
// reference point for the next caller. If ctx ends while waiting, fn is not
// run and the context error is returned.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	if !l.last.IsZero() {
		if wait := l.interval - l.clock.Now().Sub(l.last); wait > 0 {
			logging.Debug("RateLimit", "Delaying request by %s", wait)
			select {
			case <-l.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	defer func() { l.last = l.clock.Now() }()
	return fn()
}

// Transport wraps base so that every round trip goes through the limiter.
// A nil base uses http.DefaultTransport.
func (l *Limiter) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{limiter: l, base: base}
}

type transport struct {
	limiter *Limiter
	base    http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp *http.Response
		sent bool
	)
	err := t.limiter.Do(req.Context(), func() error {
		sent = true
		var rtErr error
		resp, rtErr = t.base.RoundTrip(req)
		return rtErr
	})
	if !sent && req.Body != nil {
		_ = req.Body.Close()
	}
	return resp, err
}
