package builder

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces mutating platform calls so a guild never sees a burst.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one call per delay. A zero delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Do waits for a slot and runs fn, recording the outcome under op.
func (p *Pacer) Do(ctx context.Context, op string, fn func() error) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		mutations.WithLabelValues(op, "error").Inc()
		return err
	}
	mutations.WithLabelValues(op, "ok").Inc()
	return nil
}
