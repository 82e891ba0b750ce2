// Package gpt implements the generator/processor/transducer example
// network: a source of incrementing jobs, a single-slot processor
// that drops work arriving while busy, and a transducer that reports
// acceptance and throughput over a fixed observation window.
package gpt

import (
	"math"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// GeneratorState holds the next job number and the generator's own
// time-advance countdown.
type GeneratorState struct {
	sigma, period float64
	count         int
	stopped       bool
}

// GeneratorIn carries an optional stop signal; empty unless the
// generator is wired to a transducer.
type GeneratorIn struct {
	InStop *devs.Port[bool]
}

func (b *GeneratorIn) IsEmpty() bool { return b.InStop.IsEmpty() }
func (b *GeneratorIn) Clear()        { b.InStop.Clear() }

// GeneratorOut carries the job counter emitted each period.
type GeneratorOut struct {
	OutJob *devs.Port[int]
}

func (b *GeneratorOut) IsEmpty() bool { return b.OutJob.IsEmpty() }
func (b *GeneratorOut) Clear()        { b.OutJob.Clear() }

// NewGenerator builds a Generator emitting job k at t=k*period for
// k=1,2,..., until (if wired to a transducer) a stop signal arrives
// on InStop, after which it passivates permanently.
func NewGenerator(period float64) *devs.Atomic[GeneratorState, GeneratorIn, GeneratorOut] {
	return devs.NewAtomic("generator",
		GeneratorState{sigma: period, period: period},
		GeneratorIn{InStop: devs.NewPort[bool]("in_stop", 1)},
		GeneratorOut{OutJob: devs.NewPort[int]("out_job", 1)},
		devs.AtomicFuncs[GeneratorState, GeneratorIn, GeneratorOut]{
			DeltaInt: func(s *GeneratorState) {
				s.count++
				s.sigma = s.period
			},
			DeltaExt: func(s *GeneratorState, e float64, in *GeneratorIn) {
				if !in.InStop.IsEmpty() {
					s.stopped = true
				}
				if s.stopped {
					s.sigma = math.Inf(1)
				} else {
					s.sigma -= e
				}
			},
			Lambda: func(s *GeneratorState, out *GeneratorOut) {
				_ = out.OutJob.AddValue(s.count + 1)
			},
			Ta: func(s *GeneratorState) float64 { return s.sigma },
		})
}
