package gpt

import (
	"math"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// TransducerState accumulates arrival counts over a fixed observation
// window, then signals the generator to stop.
type TransducerState struct {
	sigma           float64
	obsTime         float64
	nGenerated      int
	nProcessed      int
	fired           bool
}

// TransducerIn observes both the generator's and the processor's
// output streams.
type TransducerIn struct {
	InGen  *devs.Port[int]
	InProc *devs.Port[int]
}

func (b *TransducerIn) IsEmpty() bool { return b.InGen.IsEmpty() && b.InProc.IsEmpty() }
func (b *TransducerIn) Clear()        { b.InGen.Clear(); b.InProc.Clear() }

// TransducerOut carries the one-shot stop signal.
type TransducerOut struct {
	OutStop *devs.Port[bool]
}

func (b *TransducerOut) IsEmpty() bool { return b.OutStop.IsEmpty() }
func (b *TransducerOut) Clear()        { b.OutStop.Clear() }

// NewTransducer builds a Transducer that counts generated and
// processed jobs until obsTime, then emits a stop signal and
// passivates.
func NewTransducer(obsTime float64) *devs.Atomic[TransducerState, TransducerIn, TransducerOut] {
	return devs.NewAtomic("transducer",
		TransducerState{sigma: obsTime, obsTime: obsTime},
		TransducerIn{InGen: devs.NewPort[int]("in_gen", 1), InProc: devs.NewPort[int]("in_proc", 1)},
		TransducerOut{OutStop: devs.NewPort[bool]("out_stop", 1)},
		devs.AtomicFuncs[TransducerState, TransducerIn, TransducerOut]{
			DeltaInt: func(s *TransducerState) {
				s.fired = true
				s.sigma = math.Inf(1)
			},
			DeltaExt: func(s *TransducerState, e float64, in *TransducerIn) {
				s.sigma -= e
				if s.fired {
					return // observation window closed: ignore stragglers
				}
				if !in.InGen.IsEmpty() {
					s.nGenerated += len(in.InGen.Values())
				}
				if !in.InProc.IsEmpty() {
					s.nProcessed += len(in.InProc.Values())
				}
			},
			Lambda: func(s *TransducerState, out *TransducerOut) {
				if !s.fired {
					_ = out.OutStop.AddValue(true)
				}
			},
			Ta: func(s *TransducerState) float64 { return s.sigma },
		})
}

// Report summarizes a finished observation window.
type Report struct {
	NGenerated int
	NProcessed int
}

// Acceptance is the fraction of generated jobs the processor accepted
// (and eventually emitted) within the window.
func (r Report) Acceptance() float64 {
	if r.NGenerated == 0 {
		return 0
	}
	return float64(r.NProcessed) / float64(r.NGenerated)
}

// Throughput is processed jobs per unit of observation time.
func (r Report) Throughput(obsTime float64) float64 {
	if obsTime == 0 {
		return 0
	}
	return float64(r.NProcessed) / obsTime
}
