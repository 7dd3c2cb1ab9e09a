package render

import (
	"testing"

	"github.com/cobaltsignal/tramkf/speed"
	"github.com/cobaltsignal/tramkf/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderTripSpeedProfile is spec scenario 6: track
// [Straight(100), Straight(900)]; trip [Stop(1), Accelerate(to=10,a=1),
// ConstantSpeed(10,100), Accelerate(to=0,a=1), Stop(10)]; dt=0.1.
// At index 50: accel=1.0, speed in (0,10). At index 150: accel=0,
// speed=10. At index 250: accel=-1.0, speed in (0,10). Initial state
// is all zeros.
func TestRenderTripSpeedProfile(t *testing.T) {
	s1, err := track.NewStraightTrack(100)
	require.NoError(t, err)
	s2, err := track.NewStraightTrack(900)
	require.NoError(t, err)

	stop1, err := speed.NewStop(1)
	require.NoError(t, err)
	accel1, err := speed.NewAccelerate(10, 1)
	require.NoError(t, err)
	cruise, err := speed.NewConstantSpeed(10, 100)
	require.NoError(t, err)
	accel2, err := speed.NewAccelerate(0, 1)
	require.NoError(t, err)
	stop2, err := speed.NewStop(10)
	require.NoError(t, err)

	tracks := []track.Segment{s1, s2}
	trips := []speed.Segment{stop1, accel1, cruise, accel2, stop2}

	out, err := RenderTrip(tracks, trips, 0.1, 1, TramState{})
	require.NoError(t, err)
	require.Greater(t, len(out), 250)

	at50 := out[49]
	assert.InDelta(t, 1.0, at50.Accel, 1e-6)
	assert.Greater(t, at50.Speed, 0.0)
	assert.Less(t, at50.Speed, 10.0)

	at150 := out[149]
	assert.InDelta(t, 0.0, at150.Accel, 1e-6)
	assert.InDelta(t, 10.0, at150.Speed, 1e-6)

	at250 := out[249]
	assert.InDelta(t, -1.0, at250.Accel, 1e-6)
	assert.Greater(t, at250.Speed, 0.0)
	assert.Less(t, at250.Speed, 10.0)
}

func TestRenderTripRejectsNonpositiveDt(t *testing.T) {
	s1, err := track.NewStraightTrack(100)
	require.NoError(t, err)
	stop1, err := speed.NewStop(1)
	require.NoError(t, err)

	_, err = RenderTrip([]track.Segment{s1}, []speed.Segment{stop1}, 0, 1, TramState{})
	assert.Error(t, err)
}

func TestRenderTripTerminatesWhenTrackExhausted(t *testing.T) {
	s1, err := track.NewStraightTrack(1)
	require.NoError(t, err)
	accel, err := speed.NewAccelerate(10, 1)
	require.NoError(t, err)

	out, err := RenderTrip([]track.Segment{s1}, []speed.Segment{accel}, 0.1, 1, TramState{})
	require.NoError(t, err)
	// Both chains are sampled before each micro-step, so the last sample
	// is the first one past the end of the 1 m track and the sample
	// before it is still on the track.
	require.GreaterOrEqual(t, len(out), 2)
	last := out[len(out)-1]
	assert.Less(t, out[len(out)-2].Distance, 1.0)
	assert.GreaterOrEqual(t, last.Distance, 1.0)
}
