// Package pacer wraps the virtual-time driver in devs with wall-clock
// synchronization: sleeping proportionally to elapsed virtual time,
// detecting excess drift, and admitting external input at defined
// suspension points.
package pacer

import (
	"time"

	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// Hook advances real time from tFrom toward tUntil, optionally
// appending external input to the root model's input bag and
// returning early. It must never return a time greater than tUntil;
// returning earlier signals that external input arrived.
type Hook interface {
	Wait(tFrom, tUntil float64) (t float64, inputArrived bool)
}

// Config controls one real-time run.
type Config struct {
	TimeScale time.Duration // wall time per virtual-time unit; 0 defaults to time.Second
	MaxJitter time.Duration // 0 disables jitter detection
	Logger    *zap.Logger
	Hook      Hook // nil defaults to a Sleep hook at the configured TimeScale

	// PropagateOutput, if set, runs immediately after every Lambda step,
	// while the root model's output bag still holds the values produced
	// at this instant (before the following Delta clears it). Simulator
	// carries no bag-type information, so the caller supplies a closure
	// over its own concrete output bag pointer, the same
	// closure-over-pointer idiom devs.Connect uses for coupling
	// propagation.
	PropagateOutput func()

	// MaxJitterUpdates, if non-nil, is drained (non-blockingly) once per
	// instant; each received value replaces the run's jitter tolerance
	// in place, letting a long-running real-time simulation pick up a
	// hot-reloaded configuration value without restarting.
	MaxJitterUpdates <-chan time.Duration
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) timeScale() time.Duration {
	if c == nil || c.TimeScale == 0 {
		return time.Second
	}
	return c.TimeScale
}

func (c *Config) hook() Hook {
	if c == nil || c.Hook == nil {
		return NewSleep(c.timeScale())
	}
	return c.Hook
}

func (c *Config) propagateOutput() func() {
	if c == nil || c.PropagateOutput == nil {
		return func() {}
	}
	return c.PropagateOutput
}

// drainMaxJitterUpdates applies every jitter-tolerance update queued on
// cfg.MaxJitterUpdates without blocking, so a hot-reloaded config value
// takes effect at the next instant rather than stalling the run.
func drainMaxJitterUpdates(cfg *Config, monitor *driftMonitor) {
	if cfg == nil || cfg.MaxJitterUpdates == nil {
		return
	}
	for {
		select {
		case d := <-cfg.MaxJitterUpdates:
			monitor.setMaxJitter(d)
		default:
			return
		}
	}
}

// Run drives model in real time from tStart to tStop, returning the
// final virtual time reached and the observed wall-clock drift across
// the run. It mirrors devs.Simulate's loop, but substitutes the
// hook's wall-clock wait for an unconditional step to t_until, and
// folds jitter detection into that wait.
func Run(model devs.Simulator, tStart, tStop float64, cfg *Config) (t float64, maxDrift time.Duration, err error) {
	defer recoverFatal(&err)

	log := cfg.logger()
	hook := cfg.hook()
	propagateOutput := cfg.propagateOutput()
	monitor := newDriftMonitor(tStart, cfg.timeScale(), maxJitterOf(cfg))

	tNextInternal := model.Start(tStart)
	t = tStart
	for t < tStop {
		drainMaxJitterUpdates(cfg, monitor)

		tUntil := min(tNextInternal, tStop)
		reached, inputArrived := hook.Wait(t, tUntil)
		t = reached

		monitor.observe(t, tUntil)

		if t >= tNextInternal {
			model.Lambda(t)
			propagateOutput()
		} else if !inputArrived {
			continue // spurious wakeup: no scheduled event, no external input
		}
		tNextInternal = model.Delta(t)
		log.Debug("real-time instant processed", zap.Float64("t", t), zap.Float64("t_next", tNextInternal))
	}
	model.Stop(tStop)
	return t, monitor.maxDrift, nil
}

func maxJitterOf(c *Config) time.Duration {
	if c == nil {
		return 0
	}
	return c.MaxJitter
}
