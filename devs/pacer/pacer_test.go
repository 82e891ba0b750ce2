package pacer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// tickState is a minimal atomic model that fires every period virtual
// time units, counting how many internal transitions it has run.
type tickState struct {
	sigma, period float64
	ticks         int
}

func newTicker(period float64) *devs.Atomic[tickState, devs.EmptyBag, devs.EmptyBag] {
	return devs.NewAtomic("ticker", tickState{sigma: period, period: period}, devs.EmptyBag{}, devs.EmptyBag{},
		devs.AtomicFuncs[tickState, devs.EmptyBag, devs.EmptyBag]{
			DeltaInt: func(s *tickState) { s.ticks++; s.sigma = s.period },
			DeltaExt: func(s *tickState, e float64, in *devs.EmptyBag) { s.sigma -= e },
			Lambda:   func(s *tickState, out *devs.EmptyBag) {},
			Ta:       func(s *tickState) float64 { return s.sigma },
		})
}

func TestRunSleepPacerReachesTStopWithBoundedDrift(t *testing.T) {
	a := newTicker(0.001) // 1ms virtual period

	start := time.Now()
	tFinal, maxDrift, err := Run(a, 0, 0.003, &Config{TimeScale: time.Millisecond})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 0.003, tFinal)
	assert.InDelta(t, 3*time.Millisecond, elapsed, float64(5*time.Millisecond))
	assert.Less(t, maxDrift, 10*time.Millisecond)
}

// stallHook behaves like Sleep but injects an artificial stall on its
// first call, forcing observed drift past any reasonable tolerance.
type stallHook struct {
	inner *Sleep
	stall time.Duration
	used  bool
}

func (h *stallHook) Wait(tFrom, tUntil float64) (float64, bool) {
	if !h.used {
		h.used = true
		time.Sleep(h.stall)
	}
	return h.inner.Wait(tFrom, tUntil)
}

func TestRunJitterExceededIsFatal(t *testing.T) {
	a := newTicker(0.001)
	hook := &stallHook{inner: NewSleep(time.Millisecond), stall: 20 * time.Millisecond}

	_, _, err := Run(a, 0, 0.003, &Config{
		TimeScale: time.Millisecond,
		MaxJitter: time.Microsecond,
		Hook:      hook,
	})

	require.Error(t, err)
	var de *devs.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, devs.JitterExceeded, de.Kind)
}

func TestRunZeroWidthWindowDoesNotWait(t *testing.T) {
	a := newTicker(1.0)
	tFinal, _, err := Run(a, 5.0, 5.0, &Config{TimeScale: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 5.0, tFinal)
}

func TestRunMaxJitterUpdatesAppliesLive(t *testing.T) {
	a := newTicker(0.001)
	hook := &stallHook{inner: NewSleep(time.Millisecond), stall: 20 * time.Millisecond}

	updates := make(chan time.Duration, 1)
	updates <- time.Second // raised before the stalled wait; would otherwise be fatal at a microsecond tolerance

	tFinal, _, err := Run(a, 0, 0.003, &Config{
		TimeScale:        time.Millisecond,
		MaxJitter:        time.Microsecond,
		Hook:             hook,
		MaxJitterUpdates: updates,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.003, tFinal)
}

// emitOut carries one integer-valued output port, for exercising
// PropagateOutput against a root model whose output bag actually holds
// values (the bundled CLI models all root at EmptyBag).
type emitOut struct {
	Count *devs.Port[int]
}

func (b *emitOut) IsEmpty() bool { return b.Count.IsEmpty() }
func (b *emitOut) Clear()        { b.Count.Clear() }

func newEmitter(period float64) *devs.Atomic[tickState, devs.EmptyBag, emitOut] {
	out := emitOut{Count: devs.NewPort[int]("count", 1)}
	return devs.NewAtomic("emitter", tickState{sigma: period, period: period}, devs.EmptyBag{}, out,
		devs.AtomicFuncs[tickState, devs.EmptyBag, emitOut]{
			DeltaInt: func(s *tickState) { s.ticks++; s.sigma = s.period },
			DeltaExt: func(s *tickState, e float64, in *devs.EmptyBag) { s.sigma -= e },
			Lambda:   func(s *tickState, out *emitOut) { _ = out.Count.AddValue(s.ticks + 1) },
			Ta:       func(s *tickState) float64 { return s.sigma },
		})
}

func TestRunPropagateOutputSeesLambdaValuesBeforeDeltaClears(t *testing.T) {
	e := newEmitter(0.001)
	var seen []int

	tFinal, _, err := Run(e, 0, 0.003, &Config{
		TimeScale: time.Millisecond,
		PropagateOutput: func() {
			seen = append(seen, e.Out.Count.Values()...)
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 0.003, tFinal)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

// pulseIn carries one integer mark port, used to exercise external
// event injection via WaitEvent/InputLimiter against a model that
// otherwise stays passivated.
type pulseIn struct {
	Mark *devs.Port[int]
}

func (b *pulseIn) IsEmpty() bool { return b.Mark.IsEmpty() }
func (b *pulseIn) Clear()        { b.Mark.Clear() }

type pulseState struct {
	pulses int
}

func newPulseReceiver() *devs.Atomic[pulseState, pulseIn, devs.EmptyBag] {
	in := pulseIn{Mark: devs.NewPort[int]("mark", 4)}
	return devs.NewAtomic("pulse_receiver", pulseState{}, in, devs.EmptyBag{},
		devs.AtomicFuncs[pulseState, pulseIn, devs.EmptyBag]{
			DeltaInt: func(s *pulseState) {},
			DeltaExt: func(s *pulseState, e float64, in *pulseIn) { s.pulses += len(in.Mark.Values()) },
			Lambda:   func(s *pulseState, out *devs.EmptyBag) {},
			Ta:       func(s *pulseState) float64 { return math.Inf(1) },
		})
}

func TestWaitEventWithInputLimiterInjectsExternalEvent(t *testing.T) {
	model := newPulseReceiver()
	events := make(chan func())
	limiter := NewInputLimiter(events, 1000, 1)
	hook := NewWaitEvent(time.Millisecond, events)

	go func() {
		_ = limiter.Inject(context.Background(), func() {
			require.NoError(t, model.In.Mark.AddValue(1))
		})
	}()

	tFinal, _, err := Run(model, 0, 0.05, &Config{TimeScale: time.Millisecond, Hook: hook})

	require.NoError(t, err)
	assert.Equal(t, 0.05, tFinal)
	assert.Equal(t, 1, model.State.pulses)
}
