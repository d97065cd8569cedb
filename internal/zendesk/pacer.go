package zendesk

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles a fetch loop. Pace is called once per processed record
// with the running count and must return promptly once ctx is done.
type Pacer interface {
	Pace(ctx context.Context, processed int) error
}

// IntervalPacer pauses for Delay after every Every records. Every <= 0
// disables pacing.
type IntervalPacer struct {
	Every int
	Delay time.Duration
}

// Pace blocks for the configured delay on every Every-th record.
func (p IntervalPacer) Pace(ctx context.Context, processed int) error {
	if p.Every <= 0 || processed <= 0 || processed%p.Every != 0 {
		return nil
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LimiterPacer holds the loop to a steady records-per-second budget using
// a token bucket.
type LimiterPacer struct {
	lim *rate.Limiter
}

// NewLimiterPacer creates a pacer allowing perSecond records per second
// with a burst of the same size.
func NewLimiterPacer(perSecond int) *LimiterPacer {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &LimiterPacer{lim: rate.NewLimiter(rate.Limit(perSecond), perSecond)}
}

// Pace waits for the next token.
func (p *LimiterPacer) Pace(ctx context.Context, processed int) error {
	return p.lim.Wait(ctx)
}
