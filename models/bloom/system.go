package bloom

import "github.com/iscar-ucm/xdevs-go/devs"

// System couples a bloom Model to its CSV-backed Feed: the feed's
// driving variables reach the model, the model's readings are mirrored
// back to the feed for logging, and the feed's periodic RESET command
// flows back into the model.
type System struct {
	*devs.Coupled[devs.EmptyBag, devs.EmptyBag]
	Model *devs.Atomic[State, In, Out]
	Feed  *devs.Atomic[FeedState, FeedIn, FeedOut]
}

// NewSystem opens inputPath/outputPath and wires the bloom model and
// its feed into a runnable root network.
func NewSystem(name string, latIni, lonIni, sizeIni float64, inputPath, outputPath string) (*System, error) {
	model := NewModel(NewState(name, latIni, lonIni, sizeIni))
	feed, err := NewFeed(inputPath, outputPath)
	if err != nil {
		return nil, err
	}

	coupled := devs.NewCoupled[devs.EmptyBag, devs.EmptyBag]("bloom_system", devs.EmptyBag{}, devs.EmptyBag{},
		[]devs.Simulator{model, feed},
		nil,
		[]func(){
			devs.Connect(model.Out.Exit, feed.In.Collected),
			devs.Connect(feed.Out.Cmd, model.In.Cmd),
			devs.Connect(feed.Out.Dox, model.In.Dox),
			devs.Connect(feed.Out.Nox, model.In.Nox),
			devs.Connect(feed.Out.Sun, model.In.Sun),
			devs.Connect(feed.Out.Wfu, model.In.Wfu),
			devs.Connect(feed.Out.Wfv, model.In.Wfv),
		},
		nil,
	)

	return &System{Coupled: coupled, Model: model, Feed: feed}, nil
}
