package bloom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelEmitsOnceAllFiveReadingsArrive(t *testing.T) {
	model := NewModel(NewState("site-a", 10.0, -20.0, 0.0))

	tNext := model.Start(0)
	assert.True(t, math.IsInf(tNext, 1), "passivated until driving variables arrive")

	require.NoError(t, model.In.Dox.AddValue(25))
	require.NoError(t, model.In.Nox.AddValue(2))
	require.NoError(t, model.In.Sun.AddValue(3))
	require.NoError(t, model.In.Wfu.AddValue(1))
	require.NoError(t, model.In.Wfv.AddValue(1))

	tNext = model.Delta(0)
	assert.Equal(t, 0.0, tNext, "all five readings present: activates on the same instant")

	model.Lambda(0)
	values := model.Out.Exit.Values()
	require.Len(t, values, 1)
	got := values[0]

	assert.True(t, got.IsBloom, "dox=25 exceeds the 20.0 bloom threshold")
	assert.Equal(t, 50.0, got.Breath, "dox*nox")
	assert.Equal(t, 6.0, got.Photo, "sun*nox")
	assert.Equal(t, 10.0, got.Size, "5*6 + 0.05*50 = 32.5, clamped to the 10.0 ceiling")
	assert.InDelta(t, 10.0+1.0/60.0, got.Lat, 1e-9)
	assert.InDelta(t, -20.0+1.0/60.0, got.Lon, 1e-9)

	tNext = model.Delta(0)
	assert.True(t, math.IsInf(tNext, 1), "passivates again after emitting")
	assert.True(t, model.In.IsEmpty())
}

func TestModelOnlyTwoReadingsDoesNotActivate(t *testing.T) {
	model := NewModel(NewState("site-b", 0, 0, 0))
	model.Start(0)

	require.NoError(t, model.In.Dox.AddValue(30))
	require.NoError(t, model.In.Nox.AddValue(1))

	tNext := model.Delta(0)
	assert.True(t, math.IsInf(tNext, 1), "two of five readings is not enough to activate")
}

func TestModelResetCommandRestoresInitialLocation(t *testing.T) {
	model := NewModel(NewState("site-c", 1.0, 2.0, 0.0))
	model.Start(0)

	require.NoError(t, model.In.Dox.AddValue(25))
	require.NoError(t, model.In.Nox.AddValue(1))
	require.NoError(t, model.In.Sun.AddValue(1))
	require.NoError(t, model.In.Wfu.AddValue(5))
	require.NoError(t, model.In.Wfv.AddValue(5))
	model.Delta(0)
	model.Lambda(0)
	model.Delta(0)

	assert.NotEqual(t, 1.0, model.State.bloomLat, "drifted away from the initial location while blooming")

	require.NoError(t, model.In.Cmd.AddValue("RESET"))
	model.Delta(1)

	assert.Equal(t, 1.0, model.State.bloomLat)
	assert.Equal(t, 2.0, model.State.bloomLon)
	assert.False(t, model.State.isBloom)
}
