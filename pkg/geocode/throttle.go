package geocode

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultMinInterval is the spacing Nominatim's usage policy asks for (1 req/s plus slack).
const DefaultMinInterval = 1100 * time.Millisecond

// Clock abstracts wall-clock time so throttling can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Throttle enforces a minimum interval between outbound requests. One Throttle
// is shared by every component that talks to the provider, so they all observe
// the same last-request clock.
type Throttle struct {
	limiter  *rate.Limiter
	clock    Clock
	interval time.Duration
}

// NewThrottle creates a Throttle with the given minimum interval. A nil clock
// uses the wall clock; an interval <= 0 disables throttling.
func NewThrottle(interval time.Duration, clock Clock) *Throttle {
	if clock == nil {
		clock = realClock{}
	}
	limit := rate.Inf
	if interval > 0 {
		// rate.Every converts to a float rate, so the enforced gap can come
		// out a few nanoseconds short of interval.
		limit = rate.Every(interval)
	}
	return &Throttle{
		limiter:  rate.NewLimiter(limit, 1),
		clock:    clock,
		interval: interval,
	}
}

// Interval returns the configured minimum spacing.
func (t *Throttle) Interval() time.Duration { return t.interval }

// Wait blocks until the next request may be issued.
func (t *Throttle) Wait(ctx context.Context) error {
	now := t.clock.Now()
	r := t.limiter.ReserveN(now, 1)
	if !r.OK() {
		return eris.New("geocode: throttle reservation refused")
	}
	if err := t.clock.Sleep(ctx, r.DelayFrom(now)); err != nil {
		r.CancelAt(t.clock.Now())
		return eris.Wrap(err, "geocode: throttle wait")
	}
	return nil
}
