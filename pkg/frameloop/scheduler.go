package frameloop

import (
	"context"
	"time"
)

// DefaultRefreshInterval is used when a RefreshScheduler is built with a
// non-positive interval.
const DefaultRefreshInterval = time.Second / 30

// Scheduler yields until the next display refresh opportunity.
type Scheduler interface {
	// Next blocks until the next tick may start. It returns ctx.Err() when
	// cancelled while waiting.
	Next(ctx context.Context) error
}

// RefreshScheduler paces ticks to a fixed refresh interval. A tick that
// overruns one or more boundaries starts at the next boundary; missed
// refreshes are dropped, never queued.
type RefreshScheduler struct {
	interval time.Duration
	last     time.Time
}

// NewRefreshScheduler creates a scheduler with the given refresh interval.
func NewRefreshScheduler(interval time.Duration) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{interval: interval}
}

// Interval returns the refresh interval.
func (s *RefreshScheduler) Interval() time.Duration {
	return s.interval
}

// Next waits for the next refresh boundary.
func (s *RefreshScheduler) Next(ctx context.Context) error {
	now := time.Now()
	if s.last.IsZero() {
		s.last = now
	}
	next := nextBoundary(s.last, now, s.interval)
	s.last = next

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextBoundary returns the first boundary last+k*interval (k >= 1) that is
// strictly after now.
func nextBoundary(last, now time.Time, interval time.Duration) time.Time {
	next := last.Add(interval)
	if next.After(now) {
		return next
	}
	missed := now.Sub(last) / interval
	return last.Add((missed + 1) * interval)
}

// Immediate starts the next tick right away. Useful for tests and for
// hosts that pace themselves, such as a blocking window presenter.
type Immediate struct{}

// Next returns immediately unless ctx is done.
func (Immediate) Next(ctx context.Context) error {
	return ctx.Err()
}
