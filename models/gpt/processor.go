package gpt

import (
	"math"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// ProcessorState holds the single job currently being serviced, if
// any, and the countdown to its release.
type ProcessorState struct {
	sigma, service float64
	busy           bool
	job            int
}

// ProcessorIn carries the single-slot job queue; a job arriving while
// busy is dropped, matching a processor with no buffering.
type ProcessorIn struct {
	InJob *devs.Port[int]
}

func (b *ProcessorIn) IsEmpty() bool { return b.InJob.IsEmpty() }
func (b *ProcessorIn) Clear()        { b.InJob.Clear() }

// ProcessorOut carries the completed job.
type ProcessorOut struct {
	OutJob *devs.Port[int]
}

func (b *ProcessorOut) IsEmpty() bool { return b.OutJob.IsEmpty() }
func (b *ProcessorOut) Clear()        { b.OutJob.Clear() }

// NewProcessor builds a Processor that accepts a job when idle, holds
// it busy for `service` virtual-time units, then emits it and returns
// to idle. A job arriving while busy is silently dropped.
func NewProcessor(service float64) *devs.Atomic[ProcessorState, ProcessorIn, ProcessorOut] {
	return devs.NewAtomic("processor",
		ProcessorState{sigma: math.Inf(1), service: service},
		ProcessorIn{InJob: devs.NewPort[int]("in_job", 1)},
		ProcessorOut{OutJob: devs.NewPort[int]("out_job", 1)},
		devs.AtomicFuncs[ProcessorState, ProcessorIn, ProcessorOut]{
			DeltaInt: func(s *ProcessorState) {
				s.busy = false
				s.sigma = math.Inf(1)
			},
			DeltaExt: func(s *ProcessorState, e float64, in *ProcessorIn) {
				s.sigma -= e
				values := in.InJob.Values()
				if len(values) == 0 {
					return
				}
				job := values[len(values)-1]
				if s.busy {
					return // busy: the arriving job is dropped
				}
				s.job = job
				s.busy = true
				s.sigma = s.service
			},
			Lambda: func(s *ProcessorState, out *ProcessorOut) {
				if s.busy {
					_ = out.OutJob.AddValue(s.job)
				}
			},
			Ta: func(s *ProcessorState) float64 { return s.sigma },
		})
}
