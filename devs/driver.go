package devs

import (
	"go.uber.org/zap"
)

// Config controls one virtual-time run of Simulate. A nil Logger is
// replaced by zap.NewNop(); the engine never requires a logger to run.
type Config struct {
	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Simulate drives the root Simulator from tStart to tStop:
//
//	t_next := M.start(t_start)
//	t := t_start
//	while t < t_stop:
//	    t := min(t_next, t_stop)
//	    M.lambda(t)
//	    t_next := M.delta(t)
//	M.stop(t_stop)
//
// It returns the final virtual time reached and an error if a fatal
// condition (PortFull during propagation, a user panic) aborted the run.
// Zero-ta cycles are a model bug, not an engine bug: Simulate makes no
// attempt to detect a livelocked model.
func Simulate(model Simulator, tStart, tStop float64, cfg *Config) (t float64, err error) {
	defer recoverFatal(&err)

	log := cfg.logger()
	log.Debug("simulation starting", zap.Float64("t_start", tStart), zap.Float64("t_stop", tStop))

	tNext := model.Start(tStart)
	t = tStart
	for t < tStop {
		t = min(tNext, tStop)
		model.Lambda(t)
		tNext = model.Delta(t)
		log.Debug("instant processed", zap.Float64("t", t), zap.Float64("t_next", tNext))
	}
	model.Stop(tStop)
	log.Debug("simulation stopped", zap.Float64("t_stop", tStop))
	return t, nil
}
