package devs

// AtomicFuncs holds the user-supplied transition and output functions for
// one atomic model, over state type S, input bag type I and output bag
// type O. DeltaConf, Start and Stop are optional; a nil DeltaConf runs
// DeltaInt then DeltaExt(e=0) by default.
type AtomicFuncs[S any, I Bag, O Bag] struct {
	// Start runs once before the first event, at t_start. Optional.
	Start func(state *S)
	// Stop runs once at t_stop, passivating the model. Optional.
	Stop func(state *S)
	// DeltaInt is the internal transition function.
	DeltaInt func(state *S)
	// DeltaExt is the external transition function; e is the elapsed
	// time since the model's last transition.
	DeltaExt func(state *S, e float64, input *I)
	// DeltaConf is the confluent transition function, invoked exactly
	// once when an internal event and external input coincide. Optional;
	// defaults to DeltaInt followed by DeltaExt(e=0, input).
	DeltaConf func(state *S, input *I)
	// Lambda is the output function, run immediately before an imminent
	// internal or confluent transition.
	Lambda func(state *S, output *O)
	// Ta is the time-advance function; math.Inf(1) means passivated.
	Ta func(state *S) float64
}

// Atomic wraps a user State plus AtomicFuncs under the Simulator protocol.
// Input and output are concrete, model-defined Bag types.
type Atomic[S any, I Bag, O Bag] struct {
	Header
	Name  string
	State S
	In    I
	Out   O
	Funcs AtomicFuncs[S, I, O]
}

// NewAtomic constructs an Atomic model with its initial state, input and
// output bags, and transition functions.
func NewAtomic[S any, I Bag, O Bag](name string, state S, in I, out O, funcs AtomicFuncs[S, I, O]) *Atomic[S, I, O] {
	if funcs.Ta == nil {
		panic(newTopologyError(name, "atomic model requires a Ta function"))
	}
	if funcs.DeltaInt == nil {
		panic(newTopologyError(name, "atomic model requires a DeltaInt function"))
	}
	if funcs.DeltaExt == nil {
		panic(newTopologyError(name, "atomic model requires a DeltaExt function"))
	}
	if funcs.Lambda == nil {
		panic(newTopologyError(name, "atomic model requires a Lambda function"))
	}
	return &Atomic[S, I, O]{
		Header: NewHeader(),
		Name:   name,
		State:  state,
		In:     in,
		Out:    out,
		Funcs:  funcs,
	}
}

// Start implements Simulator.Start.
func (a *Atomic[S, I, O]) Start(tStart float64) float64 {
	if a.Funcs.Start != nil {
		a.Funcs.Start(&a.State)
	}
	tNext := tStart + a.Funcs.Ta(&a.State)
	a.setSimTime(tStart, tNext)
	return tNext
}

// Stop implements Simulator.Stop: a stopped model passivates permanently.
func (a *Atomic[S, I, O]) Stop(tStop float64) {
	if a.Funcs.Stop != nil {
		a.Funcs.Stop(&a.State)
	}
	a.setSimTime(tStop, positiveInfinity)
}

// Lambda implements Simulator.Lambda: a no-op unless the model is
// imminent at t.
func (a *Atomic[S, I, O]) Lambda(t float64) {
	if t < a.tNext {
		return
	}
	a.Funcs.Lambda(&a.State, &a.Out)
}

// Delta implements Simulator.Delta: the four-way branch on
// (hasInput, t >= tNext), including the confluent tie-break
// (hasInput && t >= tNext always selects delta_conf, never a
// sequential external-then-internal call).
func (a *Atomic[S, I, O]) Delta(t float64) float64 {
	hasInput := !a.In.IsEmpty()
	imminent := t >= a.tNext

	switch {
	case !hasInput && !imminent:
		// No scheduled event and nothing arrived: no-op.
		return a.tNext
	case !hasInput && imminent:
		a.Funcs.DeltaInt(&a.State)
	case hasInput && !imminent:
		a.Funcs.DeltaExt(&a.State, t-a.tLast, &a.In)
	default: // hasInput && imminent
		if a.Funcs.DeltaConf != nil {
			a.Funcs.DeltaConf(&a.State, &a.In)
		} else {
			a.Funcs.DeltaInt(&a.State)
			a.Funcs.DeltaExt(&a.State, 0, &a.In)
		}
	}

	a.In.Clear()
	a.Out.Clear()
	tNext := t + a.Funcs.Ta(&a.State)
	a.setSimTime(t, tNext)
	return tNext
}
