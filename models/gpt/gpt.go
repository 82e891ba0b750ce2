package gpt

import "github.com/iscar-ucm/xdevs-go/devs"

// GPT wires a Generator, a Processor and a Transducer into the flat
// network used by the acceptance/throughput scenario: generator
// output feeds both the processor and the transducer, processor
// output feeds the transducer, and the transducer's stop signal feeds
// back to the generator.
type GPT struct {
	*devs.Coupled[devs.EmptyBag, devs.EmptyBag]
	Generator  *devs.Atomic[GeneratorState, GeneratorIn, GeneratorOut]
	Processor  *devs.Atomic[ProcessorState, ProcessorIn, ProcessorOut]
	Transducer *devs.Atomic[TransducerState, TransducerIn, TransducerOut]
}

// NewGPT builds the flat network with the given generator period,
// processor service time and transducer observation window.
func NewGPT(period, service, obsTime float64) *GPT {
	gen := NewGenerator(period)
	proc := NewProcessor(service)
	trans := NewTransducer(obsTime)

	coupled := devs.NewCoupled[devs.EmptyBag, devs.EmptyBag]("gpt", devs.EmptyBag{}, devs.EmptyBag{},
		[]devs.Simulator{gen, proc, trans},
		nil,
		[]func(){
			devs.Connect(gen.Out.OutJob, proc.In.InJob),
			devs.Connect(gen.Out.OutJob, trans.In.InGen),
			devs.Connect(proc.Out.OutJob, trans.In.InProc),
			devs.Connect(trans.Out.OutStop, gen.In.InStop),
		},
		nil,
	)

	return &GPT{Coupled: coupled, Generator: gen, Processor: proc, Transducer: trans}
}

// Report reads the transducer's accumulated counts. Call after a run
// reaches or passes the transducer's observation window.
func (g *GPT) Report() Report {
	return Report{NGenerated: g.Transducer.State.nGenerated, NProcessed: g.Transducer.State.nProcessed}
}

// EF nests a Generator and a Transducer, exposing the processor's
// feedback as an external input and the generator's jobs as the
// node's own output.
type EF struct {
	*devs.Coupled[EFIn, EFOut]
	Generator  *devs.Atomic[GeneratorState, GeneratorIn, GeneratorOut]
	Transducer *devs.Atomic[TransducerState, TransducerIn, TransducerOut]
}

// EFIn is EF's externally-visible input: the processed jobs coming
// back from outside the node.
type EFIn struct {
	InProcessor *devs.Port[int]
}

func (b *EFIn) IsEmpty() bool { return b.InProcessor.IsEmpty() }
func (b *EFIn) Clear()        { b.InProcessor.Clear() }

// EFOut is EF's externally-visible output: the generator's jobs.
type EFOut struct {
	OutGenerator *devs.Port[int]
}

func (b *EFOut) IsEmpty() bool { return b.OutGenerator.IsEmpty() }
func (b *EFOut) Clear()        { b.OutGenerator.Clear() }

// NewEF builds the nested generator+transducer node.
func NewEF(period, obsTime float64) *EF {
	gen := NewGenerator(period)
	trans := NewTransducer(obsTime)

	in := EFIn{InProcessor: devs.NewPort[int]("in_processor", 1)}
	out := EFOut{OutGenerator: devs.NewPort[int]("out_generator", 1)}

	coupled := devs.NewCoupled[EFIn, EFOut]("ef", in, out,
		[]devs.Simulator{gen, trans},
		[]func(){devs.Connect(in.InProcessor, trans.In.InProc)},
		[]func(){
			devs.Connect(gen.Out.OutJob, trans.In.InGen),
			devs.Connect(trans.Out.OutStop, gen.In.InStop),
		},
		[]func(){devs.Connect(gen.Out.OutJob, out.OutGenerator)},
	)

	return &EF{Coupled: coupled, Generator: gen, Transducer: trans}
}

// EFP wraps EF and a Processor into the root network of the nested
// scenario: ef.out_generator feeds the processor, and the processor's
// output feeds back into ef.in_processor.
type EFP struct {
	*devs.Coupled[devs.EmptyBag, devs.EmptyBag]
	EF        *EF
	Processor *devs.Atomic[ProcessorState, ProcessorIn, ProcessorOut]
}

// NewEFP builds the nested network for the "wrap generator+transducer,
// then wrap that with the processor" scenario.
func NewEFP(period, service, obsTime float64) *EFP {
	ef := NewEF(period, obsTime)
	proc := NewProcessor(service)

	coupled := devs.NewCoupled[devs.EmptyBag, devs.EmptyBag]("efp", devs.EmptyBag{}, devs.EmptyBag{},
		[]devs.Simulator{ef, proc},
		nil,
		[]func(){
			devs.Connect(ef.Out.OutGenerator, proc.In.InJob),
			devs.Connect(proc.Out.OutJob, ef.In.InProcessor),
		},
		nil,
	)

	return &EFP{Coupled: coupled, EF: ef, Processor: proc}
}

// Report reads EF's transducer counts, same semantics as GPT.Report.
func (e *EFP) Report() Report {
	return Report{NGenerated: e.EF.Transducer.State.nGenerated, NProcessed: e.EF.Transducer.State.nProcessed}
}
