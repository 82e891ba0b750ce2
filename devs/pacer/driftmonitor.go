package pacer

import (
	"time"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// driftMonitor tracks the gap between expected and observed wall-clock
// progress across a real-time run and trips fatally once that gap
// exceeds a configured tolerance. It plays the role a circuit breaker
// plays for a flaky dependency: a small number of bad ticks is normal
// scheduler noise, but once the system is reliably behind schedule the
// run stops rather than silently drifting further every instant.
//
// driftMonitor is driven exclusively from the pacer's own goroutine
// (observe and setMaxJitter are never called concurrently), so no
// synchronization is needed here even though the tolerance it enforces
// can change mid-run.
type driftMonitor struct {
	timeScale time.Duration

	tStart    float64
	startWall time.Time

	maxJitter time.Duration
	maxDrift  time.Duration
}

// newDriftMonitor establishes the wall-clock baseline at tStart,
// before the first hook wait runs, so that any stall inside that
// first wait is itself counted as drift rather than absorbed into
// the baseline.
func newDriftMonitor(tStart float64, timeScale, maxJitter time.Duration) *driftMonitor {
	return &driftMonitor{timeScale: timeScale, maxJitter: maxJitter, tStart: tStart, startWall: time.Now()}
}

// setMaxJitter replaces the enforced jitter tolerance in place, for a
// config value that hot-reloaded mid-run. 0 disables jitter detection.
func (m *driftMonitor) setMaxJitter(d time.Duration) {
	m.maxJitter = d
}

// observe records that virtual time t was reached when tUntil was the
// target, and panics with a *devs.Error of kind JitterExceeded if the
// accumulated wall-clock drift since the run began exceeds maxJitter.
func (m *driftMonitor) observe(t, tUntil float64) {
	now := time.Now()
	expectedElapsed := time.Duration(float64(m.timeScale) * (t - m.tStart))
	actualElapsed := now.Sub(m.startWall)
	drift := actualElapsed - expectedElapsed
	if drift < 0 {
		drift = -drift
	}
	if drift > m.maxDrift {
		m.maxDrift = drift
	}

	if m.maxJitter > 0 && drift > m.maxJitter {
		panic((&devs.Error{
			Kind:    devs.JitterExceeded,
			Message: "real-time pacer drift exceeded the configured tolerance",
		}).WithContext("drift", drift.String()).WithContext("max_jitter", m.maxJitter.String()))
	}
}
