package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStraightTrackSamplesZeroCurvature(t *testing.T) {
	s, err := NewStraightTrack(100)
	require.NoError(t, err)
	active, err := s.Activate(0)
	require.NoError(t, err)

	c, ok := active.Sample(50)
	require.True(t, ok)
	assert.Equal(t, Curvature{}, c)

	_, ok = active.Sample(100)
	assert.False(t, ok)
}

func TestStraightTrackRejectsNonpositiveDistance(t *testing.T) {
	_, err := NewStraightTrack(0)
	assert.Error(t, err)
	_, err = NewStraightTrack(-1)
	assert.Error(t, err)
}

func TestTrackTurnRejectsInvalidParams(t *testing.T) {
	_, err := NewTrackTurn(1, 0, 1)
	assert.Error(t, err)
	_, err = NewTrackTurn(1, 10, -1)
	assert.Error(t, err)
}

// TestTrackTurnClothoid is spec scenario 7: TrackTurn(angle=pi/2,
// radius=10, transition=1). At pos=0: dcurvature=0.1, curvature=0. At
// the midpoint of the arc: curvature=0.1, dcurvature=0.
func TestTrackTurnClothoid(t *testing.T) {
	turn, err := NewTrackTurn(math.Pi/2, 10, 1)
	require.NoError(t, err)

	active, err := turn.Activate(0)
	require.NoError(t, err)

	at, ok := active.Sample(0)
	require.True(t, ok)
	assert.InDelta(t, 0, at.Curvature, 1e-9)
	assert.InDelta(t, 0.1, at.DCurvature, 1e-9)

	a := active.(*activeTurn)
	mid := (a.arcStart + a.tOutStart) / 2

	atMid, ok := active.Sample(mid)
	require.True(t, ok)
	assert.InDelta(t, 0.1, atMid.Curvature, 1e-9)
	assert.InDelta(t, 0, atMid.DCurvature, 1e-9)
}

func TestTrackTurnEndsAfterTurnEnd(t *testing.T) {
	turn, err := NewTrackTurn(math.Pi/2, 10, 1)
	require.NoError(t, err)
	active, err := turn.Activate(0)
	require.NoError(t, err)

	a := active.(*activeTurn)
	_, ok := active.Sample(a.turnEnd)
	assert.False(t, ok)
}

func TestTrackTurnTriangularCaseWhenTransitionsDominate(t *testing.T) {
	// A small angle with a long transition length forces thetaT >
	// |angle|, collapsing arcStart onto tOutStart.
	turn, err := NewTrackTurn(0.01, 10, 5)
	require.NoError(t, err)
	active, err := turn.Activate(0)
	require.NoError(t, err)

	a := active.(*activeTurn)
	assert.InDelta(t, a.arcStart, a.tOutStart, 1e-12)
}
