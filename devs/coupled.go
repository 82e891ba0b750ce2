package devs

import "math"

// Connect builds one coupling-propagation step: copying every value
// currently on src into dst. It is the Go analogue of the code
// field-offset wiring of a generated coupling table: src and dst are
// captured directly in the closure at model-construction time, so no
// runtime port lookup or reflection happens during simulation.
//
// Connect panics with a *Error of kind PortFull if dst cannot hold all of
// src's current values; this is always treated as fatal and never
// returned as a normal error, because propagation has no well-defined
// partial-success outcome (fan-in from several sources must each
// contribute additively, so failing silently would corrupt the
// receiving port's content for every other source sharing it).
func Connect[T any](src, dst *Port[T]) func() {
	return func() {
		if src.IsEmpty() {
			return
		}
		if err := dst.AddValues(src.Values()); err != nil {
			panic(err)
		}
	}
}

// Coupled owns a static tuple of child Simulators and the three coupling
// sets (EIC, IC, EOC) linking them to each other and to the parent's own
// input/output bags. Input and output are concrete,
// model-defined Bag types; use EmptyBag for a root model with no
// parent-facing ports.
type Coupled[I Bag, O Bag] struct {
	Header
	Name     string
	In       I
	Out      O
	Children []Simulator

	eic []func() // parent.In  -> child.In
	ic  []func() // child.Out  -> child.In (sibling or self)
	eoc []func() // child.Out  -> parent.Out
}

// NewCoupled constructs a Coupled model from its children and the three
// coupling-propagation closures built with Connect. eic propagates the
// parent's own input to children's inputs; ic propagates between
// children's outputs and inputs; eoc propagates children's outputs to
// the parent's own output.
func NewCoupled[I Bag, O Bag](name string, in I, out O, children []Simulator, eic, ic, eoc []func()) *Coupled[I, O] {
	if len(children) == 0 {
		panic(newTopologyError(name, "coupled model requires at least one child"))
	}
	return &Coupled[I, O]{
		Header:   NewHeader(),
		Name:     name,
		In:       in,
		Out:      out,
		Children: children,
		eic:      eic,
		ic:       ic,
		eoc:      eoc,
	}
}

// Start implements Simulator.Start: starts every child and sets t_next to
// the minimum of their scheduled times.
func (c *Coupled[I, O]) Start(tStart float64) float64 {
	tNext := math.Inf(1)
	for _, child := range c.Children {
		if t := child.Start(tStart); t < tNext {
			tNext = t
		}
	}
	c.setSimTime(tStart, tNext)
	return tNext
}

// Stop implements Simulator.Stop: stops every child, then passivates
// itself, passivating permanently.
func (c *Coupled[I, O]) Stop(tStop float64) {
	for _, child := range c.Children {
		child.Stop(tStop)
	}
	c.setSimTime(tStop, positiveInfinity)
}

// Lambda implements Simulator.Lambda: runs every child's output function,
// then propagates EOC into the parent's own output bag. The
// child-before-parent ordering is load-bearing: EOC must observe each
// child's output after that child's own lambda has populated it.
func (c *Coupled[I, O]) Lambda(t float64) {
	if t < c.tNext {
		return
	}
	for _, child := range c.Children {
		child.Lambda(t)
	}
	for _, eoc := range c.eoc {
		eoc()
	}
}

// Delta implements Simulator.Delta: propagates EIC and IC (collectively
// XIC) into children's input bags before recursing into each child's own
// Delta, then clears the parent's own ports. The
// parent-before-child ordering is load-bearing: an imminent child must
// see both its own scheduled internal event and any externally/
// internally arrived messages in the same Delta call.
func (c *Coupled[I, O]) Delta(t float64) float64 {
	for _, eic := range c.eic {
		eic()
	}
	for _, ic := range c.ic {
		ic()
	}

	tNext := math.Inf(1)
	for _, child := range c.Children {
		if ct := child.Delta(t); ct < tNext {
			tNext = ct
		}
	}

	c.In.Clear()
	c.Out.Clear()
	c.setSimTime(t, tNext)
	return tNext
}
