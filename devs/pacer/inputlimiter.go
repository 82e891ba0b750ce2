package pacer

import (
	"context"

	"golang.org/x/time/rate"
)

// InputLimiter bounds how often external input may be injected into a
// WaitEvent hook's event channel, protecting a bounded root input
// port from an external source that produces faster than the
// simulation consumes.
type InputLimiter struct {
	limiter *rate.Limiter
	events  chan<- func()
}

// NewInputLimiter wraps events with a token-bucket limiter allowing
// burst immediate injections before throttling to eventsPerSecond.
func NewInputLimiter(events chan<- func(), eventsPerSecond float64, burst int) *InputLimiter {
	return &InputLimiter{
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
		events:  events,
	}
}

// Inject waits for a token, then queues fn for the pacer's WaitEvent
// hook to run on its own goroutine. It returns ctx.Err() if the
// context is cancelled before a token becomes available or before fn
// could be handed off.
func (l *InputLimiter) Inject(ctx context.Context, fn func()) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	select {
	case l.events <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
