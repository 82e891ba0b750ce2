// Package bloom implements the algal-bloom atomic model and its CSV-fed
// driving feed as a worked example of a six-input-port (five driving
// variables plus a command port), struct-output atomic model coupled to
// a file-backed data source.
package bloom

import (
	"math"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// ExitData is the bloom model's single output value: a snapshot of the
// estimated bloom location and intensity at one observation instant.
type ExitData struct {
	ID        string
	Source    string
	Timestamp float64
	Lat       float64
	Lon       float64
	Breath    float64
	Photo     float64
	Size      float64
	IsBloom   bool
}

// missing marks a driving variable that has not yet arrived this cycle.
var missing = math.Inf(-1)

type inputReadings struct {
	dox, nox, sun, wfu, wfv float64
}

func newInputReadings() inputReadings {
	return inputReadings{dox: missing, nox: missing, sun: missing, wfu: missing, wfv: missing}
}

func (r inputReadings) allArrived() bool {
	return r.dox > missing && r.nox > missing && r.sun > missing && r.wfu > missing && r.wfv > missing
}

// State holds the bloom model's location/intensity estimate plus the
// in-flight set of driving-variable readings for the current cycle.
type State struct {
	sigma float64

	k1, k2, k3      float64
	k2DisplaceBloom float64
	clock           float64

	name                          string
	bloomLatIni, bloomLonIni      float64
	bloomLat, bloomLon, bloomSize float64
	isBloom                       bool
	breath, photo                 float64

	in inputReadings
}

// NewState builds the initial bloom state for a named site.
func NewState(name string, latIni, lonIni, sizeIni float64) State {
	return State{
		sigma: math.Inf(1),

		k1:              5.0,
		k2:              0.05,
		k3:              1.0 / 6.0,
		k2DisplaceBloom: 1.0 / 60.0,

		name:        name,
		bloomLatIni: latIni,
		bloomLonIni: lonIni,
		bloomLat:    latIni,
		bloomLon:    lonIni,
		bloomSize:   sizeIni,

		in: newInputReadings(),
	}
}

func (s *State) reset() {
	s.bloomSize = 0
	s.bloomLat = s.bloomLatIni
	s.bloomLon = s.bloomLonIni
	s.isBloom = false
}

// In carries the bloom model's five driving-variable ports plus a
// command port (START/STOP/RESET) for externally-triggered resets.
type In struct {
	Cmd *devs.Port[string]
	Dox *devs.Port[float64]
	Nox *devs.Port[float64]
	Sun *devs.Port[float64]
	Wfu *devs.Port[float64]
	Wfv *devs.Port[float64]
}

func (b *In) IsEmpty() bool {
	return b.Cmd.IsEmpty() && b.Dox.IsEmpty() && b.Nox.IsEmpty() && b.Sun.IsEmpty() && b.Wfu.IsEmpty() && b.Wfv.IsEmpty()
}

func (b *In) Clear() {
	b.Cmd.Clear()
	b.Dox.Clear()
	b.Nox.Clear()
	b.Sun.Clear()
	b.Wfu.Clear()
	b.Wfv.Clear()
}

// Out carries the model's single struct-valued output port.
type Out struct {
	Exit *devs.Port[ExitData]
}

func (b *Out) IsEmpty() bool { return b.Exit.IsEmpty() }
func (b *Out) Clear()        { b.Exit.Clear() }

// NewModel builds the bloom atomic model. It starts passivated and
// activates only once all five driving variables have arrived for a
// cycle. A START/STOP/RESET command on Cmd updates the state but does
// not by itself schedule an emission.
func NewModel(state State) *devs.Atomic[State, In, Out] {
	in := In{
		Cmd: devs.NewPort[string]("cmd", 1),
		Dox: devs.NewPort[float64]("dox", 1),
		Nox: devs.NewPort[float64]("nox", 1),
		Sun: devs.NewPort[float64]("sun", 1),
		Wfu: devs.NewPort[float64]("wfu", 1),
		Wfv: devs.NewPort[float64]("wfv", 1),
	}
	out := Out{Exit: devs.NewPort[ExitData]("exit", 1)}

	return devs.NewAtomic("bloom_model", state, in, out,
		devs.AtomicFuncs[State, In, Out]{
			Start: func(s *State) {},
			DeltaInt: func(s *State) {
				s.clock += s.sigma
				s.in = newInputReadings()
				s.sigma = math.Inf(1)
			},
			DeltaExt: func(s *State, e float64, x *In) {
				s.sigma -= e
				s.clock += e

				if !x.Cmd.IsEmpty() {
					switch last(x.Cmd.Values()) {
					case "START":
						s.clock = 0
					case "STOP":
						s.sigma = math.Inf(1)
					case "RESET":
						s.reset()
					}
				}

				if !x.Dox.IsEmpty() {
					s.in.dox = last(x.Dox.Values())
				}
				if !x.Nox.IsEmpty() {
					s.in.nox = last(x.Nox.Values())
				}
				if !x.Sun.IsEmpty() {
					s.in.sun = last(x.Sun.Values())
				}
				if !x.Wfu.IsEmpty() {
					s.in.wfu = last(x.Wfu.Values())
				}
				if !x.Wfv.IsEmpty() {
					s.in.wfv = last(x.Wfv.Values())
				}

				if !s.in.allArrived() {
					return
				}

				if s.in.dox > 20.0 {
					s.isBloom = true
				} else if s.in.dox < 15.0 {
					s.isBloom = false
				}

				if s.isBloom {
					s.bloomLat += s.k2DisplaceBloom * s.in.wfv
					s.bloomLon += s.k2DisplaceBloom * s.in.wfu
				} else {
					s.bloomLat = s.bloomLatIni
					s.bloomLon = s.bloomLonIni
				}

				s.breath = s.in.dox * s.in.nox
				s.photo = s.in.sun * s.in.nox
				s.bloomSize += s.k1*s.photo + s.k2*s.breath - s.k3*s.bloomSize
				if s.bloomSize > 10.0 {
					s.bloomSize = 10.0
				}

				s.sigma = 0 // all five readings collected: emit on the next instant
			},
			Lambda: func(s *State, out *Out) {
				_ = out.Exit.AddValue(ExitData{
					ID:        "BLOOM",
					Source:    s.name,
					Timestamp: s.clock,
					Lat:       s.bloomLat,
					Lon:       s.bloomLon,
					Breath:    s.breath,
					Photo:     s.photo,
					Size:      s.bloomSize,
					IsBloom:   s.isBloom,
				})
			},
			Ta: func(s *State) float64 { return s.sigma },
		})
}

func last[T any](values []T) T { return values[len(values)-1] }
