package devs

import "math"

// positiveInfinity marks a passivated component: no internal event is
// scheduled.
var positiveInfinity = math.Inf(1)

// Simulator is the uniform four-operation control protocol every node in
// the simulation tree implements, whether atomic or coupled.
// A coupled node dispatches these same four operations to a statically
// known slice of children and applies its coupling rules around them.
type Simulator interface {
	// Start initializes the model at virtual time tStart and returns the
	// time of its first scheduled event.
	Start(tStart float64) float64
	// Stop passivates the model at virtual time tStop.
	Stop(tStop float64)
	// Lambda runs the model's output function if it is imminent at t.
	Lambda(t float64)
	// Delta propagates pending couplings and runs the model's state
	// transition at virtual time t, returning its next scheduled time.
	Delta(t float64) float64
	// TLast returns the virtual time of the model's last transition.
	TLast() float64
	// TNext returns the virtual time of the model's next scheduled event.
	TNext() float64
}

// Header is the book-keeping embedded in every atomic and coupled node:
// the last and next transition times.
type Header struct {
	tLast float64
	tNext float64
}

// NewHeader returns a Header satisfying invariant I2: t_last = 0,
// t_next = +Inf.
func NewHeader() Header {
	return Header{tLast: 0, tNext: math.Inf(1)}
}

// TLast returns the last transition time.
func (h *Header) TLast() float64 { return h.tLast }

// TNext returns the next scheduled transition time.
func (h *Header) TNext() float64 { return h.tNext }

func (h *Header) setSimTime(tLast, tNext float64) {
	h.tLast = tLast
	h.tNext = tNext
}
