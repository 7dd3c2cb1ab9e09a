// Package track models track geometry segments — straight runs and
// turns with clothoid transitions — as a chain of descriptors that
// activate at a position and yield curvature samples until exhausted.
package track

import (
	"fmt"
	"math"

	"github.com/cobaltsignal/tramkf/interp"
)

// Curvature is a sample of a track's curvature and its rate of change
// with respect to position.
type Curvature struct {
	Curvature  float64
	DCurvature float64
}

// Segment is a track geometry descriptor. Activate binds it to a
// starting position, producing an ActiveSegment realization.
type Segment interface {
	Activate(startPos float64) (ActiveSegment, error)
}

// ActiveSegment is the position-parameterized realization of a
// Segment. Sample returns the curvature at pos, or ok=false once pos
// has passed the end of the segment.
type ActiveSegment interface {
	Sample(pos float64) (Curvature, bool)
}

// StraightTrack is a zero-curvature run of the given distance.
type StraightTrack struct {
	Distance float64
}

// NewStraightTrack validates distance and returns a StraightTrack.
func NewStraightTrack(distance float64) (*StraightTrack, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("track.NewStraightTrack: distance must be positive, got %g", distance)
	}
	return &StraightTrack{Distance: distance}, nil
}

// Activate spans [startPos, startPos+Distance).
func (s *StraightTrack) Activate(startPos float64) (ActiveSegment, error) {
	return &activeStraight{end: startPos + s.Distance}, nil
}

type activeStraight struct {
	end float64
}

func (a *activeStraight) Sample(pos float64) (Curvature, bool) {
	if pos < a.end {
		return Curvature{}, true
	}
	return Curvature{}, false
}

// TrackTurn is a turn of the given signed angle (radians, positive for
// one winding direction) and radius, with clothoid transitions of
// transitionLength at entry and exit.
type TrackTurn struct {
	Angle            float64
	Radius           float64
	TransitionLength float64
}

// NewTrackTurn validates parameters and returns a TrackTurn.
func NewTrackTurn(angle, radius, transitionLength float64) (*TrackTurn, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("track.NewTrackTurn: radius must be positive, got %g", radius)
	}
	if transitionLength < 0 {
		return nil, fmt.Errorf("track.NewTrackTurn: transition_length must be nonnegative, got %g", transitionLength)
	}
	return &TrackTurn{Angle: angle, Radius: radius, TransitionLength: transitionLength}, nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Activate computes the trapezoidal (or, when the transitions
// dominate, purely triangular) curvature profile described in the
// component design: four breakpoints tInStart, arcStart, tOutStart,
// turnEnd, and a peak curvature reached either at the end of the entry
// transition (trapezoidal case) or at the single midpoint breakpoint
// (triangular case).
func (t *TrackTurn) Activate(startPos float64) (ActiveSegment, error) {
	kMax := 1 / t.Radius
	thetaT := t.TransitionLength * kMax
	absAngle := math.Abs(t.Angle)
	s := sign(t.Angle)

	a := &activeTurn{start: startPos, sign: s}

	if thetaT <= absAngle {
		arcLen := (absAngle - thetaT) / kMax
		a.tInStart = startPos
		a.arcStart = startPos + t.TransitionLength
		a.tOutStart = a.arcStart + arcLen
		a.turnEnd = a.tOutStart + t.TransitionLength
		a.peakCurvature = s * kMax
	} else {
		lt := math.Sqrt(absAngle * t.Radius * t.TransitionLength)
		peak := t.Angle / lt
		a.tInStart = startPos
		a.arcStart = startPos + lt
		a.tOutStart = a.arcStart
		a.turnEnd = a.tOutStart + lt
		a.peakCurvature = peak
	}

	return a, nil
}

type activeTurn struct {
	start    float64
	sign     float64
	tInStart float64
	arcStart float64

	tOutStart float64
	turnEnd   float64

	peakCurvature float64
}

func (a *activeTurn) Sample(pos float64) (Curvature, bool) {
	if pos >= a.turnEnd {
		return Curvature{}, false
	}

	switch {
	case pos < a.arcStart:
		// entry clothoid: curvature ramps linearly from 0 to peak.
		return Curvature{
			Curvature:  interp.Linear(a.tInStart, 0, a.arcStart, a.peakCurvature, pos),
			DCurvature: interp.Slope(a.tInStart, 0, a.arcStart, a.peakCurvature),
		}, true
	case pos < a.tOutStart:
		// constant-curvature arc (absent in the triangular case, where
		// arcStart == tOutStart and this branch is never reached).
		return Curvature{Curvature: a.peakCurvature, DCurvature: 0}, true
	default:
		// exit clothoid: curvature ramps linearly from peak to 0.
		return Curvature{
			Curvature:  interp.Linear(a.tOutStart, a.peakCurvature, a.turnEnd, 0, pos),
			DCurvature: interp.Slope(a.tOutStart, a.peakCurvature, a.turnEnd, 0),
		}, true
	}
}
