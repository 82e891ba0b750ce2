package pacer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// Async runs a real-time pacer on its own goroutine, exposing the same
// wall-clock pacing as Run but letting the caller cancel the run from
// outside. Cancellation is cooperative: ctx is checked before each
// hook wait, so a wait already in progress runs to its end before the
// run aborts, and Stop is never called on the model, matching the
// engine's documented behavior for a dropped/cancelled run.
type Async struct {
	model devs.Simulator
	cfg   *Config

	mu       sync.Mutex
	done     chan struct{}
	tReached float64
	err      error
	started  bool
}

// NewAsync wraps model for a cancellable real-time run.
func NewAsync(model devs.Simulator, cfg *Config) *Async {
	return &Async{model: model, cfg: cfg, done: make(chan struct{})}
}

// Start launches the run on a new goroutine. Calls after the first are
// ignored.
func (a *Async) Start(ctx context.Context, tStart, tStop float64) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.mu.Unlock()

	log := a.cfg.logger()
	go func() {
		defer close(a.done)
		t, err := runCancellable(ctx, a.model, tStart, tStop, a.cfg)
		a.mu.Lock()
		a.tReached, a.err = t, err
		a.mu.Unlock()
		if err != nil {
			log.Warn("async real-time run ended with an error", zap.Error(err))
		}
	}()
}

// Done returns a channel closed when the run finishes, whether by
// reaching t_stop, by a fatal error, or by ctx cancellation.
func (a *Async) Done() <-chan struct{} { return a.done }

// Result returns the final virtual time and error once Done is
// closed; calling it before then returns the zero value.
func (a *Async) Result() (t float64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tReached, a.err
}

// runCancellable is Run with a non-blocking ctx.Done() check at the
// top of every loop iteration, before the hook wait. The hook wait
// itself is not interrupted: a cancellation that arrives while the
// hook is sleeping takes effect once that wait returns.
func runCancellable(ctx context.Context, model devs.Simulator, tStart, tStop float64, cfg *Config) (t float64, err error) {
	defer recoverFatal(&err)

	log := cfg.logger()
	hook := cfg.hook()
	propagateOutput := cfg.propagateOutput()
	monitor := newDriftMonitor(tStart, cfg.timeScale(), maxJitterOf(cfg))

	tNextInternal := model.Start(tStart)
	t = tStart
	for t < tStop {
		select {
		case <-ctx.Done():
			log.Info("async real-time run cancelled before completion", zap.Float64("t", t))
			return t, nil
		default:
		}

		drainMaxJitterUpdates(cfg, monitor)

		tUntil := min(tNextInternal, tStop)
		reached, inputArrived := hook.Wait(t, tUntil)
		t = reached
		monitor.observe(t, tUntil)

		if t >= tNextInternal {
			model.Lambda(t)
			propagateOutput()
		} else if !inputArrived {
			continue
		}
		tNextInternal = model.Delta(t)
	}
	model.Stop(tStop)
	return t, nil
}
