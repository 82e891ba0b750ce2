package gpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// TestGeneratorProcessorAcceptsAlternatingJobs exercises the flat
// generator/processor pair (no transducer) directly through the
// package's own constructors. Service time (1.5) exceeds the arrival
// period (1.0), so the processor is still busy at every even-numbered
// arrival: it accepts jobs 1, 3, 5, 7, 9 and drops 2, 4, 6, 8, 10. Only
// accepts released before t_stop=10 show up on the processor's output;
// the job accepted at t=9 would release at t=10.5.
func TestGeneratorProcessorAcceptsAlternatingJobs(t *testing.T) {
	gen := NewGenerator(1.0)
	proc := NewProcessor(1.5)

	var released []int
	root := devs.NewCoupled[devs.EmptyBag, ProcessorOut]("root", devs.EmptyBag{}, ProcessorOut{OutJob: devs.NewPort[int]("out", 4)},
		[]devs.Simulator{gen, proc},
		nil,
		[]func(){devs.Connect(gen.Out.OutJob, proc.In.InJob)},
		[]func(){func() { released = append(released, proc.Out.OutJob.Values()...) }},
	)

	_, err := devs.Simulate(root, 0, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, gen.State.count)
	assert.Equal(t, []int{1, 3, 5, 7}, released)
}

// TestGPTReportAcceptanceAndThroughput runs the full flat network with
// a transducer observing over [0, 10). Once the transducer fires at
// t=10 it signals the generator to stop and stops counting arrivals in
// the same instant, so the job emitted by the generator at t=10 is
// never tallied.
func TestGPTReportAcceptanceAndThroughput(t *testing.T) {
	g := NewGPT(1.0, 1.5, 10)

	_, err := devs.Simulate(g, 0, 10, nil)
	require.NoError(t, err)

	report := g.Report()
	assert.Equal(t, 9, report.NGenerated)
	assert.Equal(t, 4, report.NProcessed)
	assert.InDelta(t, 4.0/9.0, report.Acceptance(), 1e-9)
	assert.InDelta(t, 0.4, report.Throughput(10), 1e-9)
	assert.Equal(t, "n_generated=9, n_processed=4, acceptance=0.44, throughput=0.40", report.String(10))
}

// TestGPTGeneratorPassivatesAfterTransducerFires confirms the stop
// feedback loop actually silences the generator rather than merely
// stopping the transducer's own count.
func TestGPTGeneratorPassivatesAfterTransducerFires(t *testing.T) {
	g := NewGPT(1.0, 1.5, 10)

	_, err := devs.Simulate(g, 0, 10, nil)
	require.NoError(t, err)

	assert.True(t, g.Generator.TNext() > 10)
	assert.True(t, g.Generator.State.stopped, "generator received the transducer's stop signal")
}

// TestEFPNestedMatchesFlatReport wraps the generator+transducer pair
// inside an EF node and that inside an EFP root with the processor one
// level further out. Running past the observation window (t_stop=14
// instead of 10) must not change the reported counts: the transducer
// gates its own counting on its fired flag, so the late release of the
// job accepted at t=9 (at t=10.5) is ignored regardless of how much
// longer the run continues.
func TestEFPNestedMatchesFlatReport(t *testing.T) {
	e := NewEFP(1.0, 1.5, 10)

	_, err := devs.Simulate(e, 0, 14, nil)
	require.NoError(t, err)

	report := e.Report()
	assert.Equal(t, 9, report.NGenerated)
	assert.Equal(t, 4, report.NProcessed)
}
