// Package speed models longitudinal speed-profile segments — stop,
// linear acceleration, jerk-limited smooth acceleration and constant
// speed — as a chain of descriptors that activate at a time/position/
// speed/acceleration tuple and yield drive samples until exhausted.
package speed

import (
	"fmt"
	"math"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/interp"
)

// Drive is a sample of the longitudinal drive channel: speed,
// acceleration and jerk.
type Drive struct {
	Speed float64
	Accel float64
	Jerk  float64
}

// Segment is a speed-profile descriptor. Activate binds it to the
// state at the moment of activation, producing an ActiveSegment
// realization.
type Segment interface {
	Activate(time, pos, speed, accel float64) (ActiveSegment, error)
}

// ActiveSegment is the time/position-parameterized realization of a
// Segment. Drive returns the sample at (time, pos, speed, accel), or
// ok=false once the segment has been exhausted.
type ActiveSegment interface {
	Drive(time, pos, speed, accel float64) (Drive, bool)
}

// Stop holds zero speed/accel/jerk for the given duration.
type Stop struct {
	Duration float64
}

// NewStop validates duration and returns a Stop.
func NewStop(duration float64) (*Stop, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("speed.NewStop: duration must be positive, got %g", duration)
	}
	return &Stop{Duration: duration}, nil
}

func (s *Stop) Activate(time, pos, speed, accel float64) (ActiveSegment, error) {
	return &activeStop{end: time + s.Duration}, nil
}

type activeStop struct {
	end float64
}

func (a *activeStop) Drive(time, pos, speed, accel float64) (Drive, bool) {
	if time < a.end {
		return Drive{}, true
	}
	return Drive{}, false
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Accelerate linearly ramps speed to toSpeed at the given (unsigned)
// acceleration magnitude.
type Accelerate struct {
	ToSpeed      float64
	Acceleration float64
}

// NewAccelerate validates acceleration and returns an Accelerate.
func NewAccelerate(toSpeed, acceleration float64) (*Accelerate, error) {
	if acceleration <= 0 {
		return nil, fmt.Errorf("speed.NewAccelerate: acceleration must be positive, got %g", acceleration)
	}
	return &Accelerate{ToSpeed: toSpeed, Acceleration: acceleration}, nil
}

func (s *Accelerate) Activate(time, pos, speed, accel float64) (ActiveSegment, error) {
	dv := s.ToSpeed - speed
	duration := abs(dv) / s.Acceleration
	signedAccel := sign(dv) * s.Acceleration
	return &activeAccelerate{
		t0: time, v0: speed,
		t1: time + duration, v1: s.ToSpeed,
		accel: signedAccel,
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

type activeAccelerate struct {
	t0, v0, t1, v1 float64
	accel          float64
}

func (a *activeAccelerate) Drive(time, pos, speed, accel float64) (Drive, bool) {
	if time >= a.t1 {
		return Drive{}, false
	}
	return Drive{Speed: interp.Linear(a.t0, a.v0, a.t1, a.v1, time), Accel: a.accel, Jerk: 0}, true
}

// SmoothlyAccelerate ramps speed to toSpeed with a jerk-limited
// trapezoidal acceleration profile: a ramp-up phase, an optional
// cruise-at-peak-acceleration phase, and a ramp-down phase.
type SmoothlyAccelerate struct {
	ToSpeed      float64
	Acceleration float64
	Jerk         float64
}

// NewSmoothlyAccelerate validates parameters and returns a
// SmoothlyAccelerate. A zero jerk is a domain error: the construction
// below divides by it to find the ramp duration.
func NewSmoothlyAccelerate(toSpeed, acceleration, jerk float64) (*SmoothlyAccelerate, error) {
	if jerk == 0 {
		return nil, tramkf.NewDomainError("speed.NewSmoothlyAccelerate", "jerk must be nonzero")
	}
	if acceleration <= 0 {
		return nil, fmt.Errorf("speed.NewSmoothlyAccelerate: acceleration must be positive, got %g", acceleration)
	}
	return &SmoothlyAccelerate{ToSpeed: toSpeed, Acceleration: acceleration, Jerk: jerk}, nil
}

func (s *SmoothlyAccelerate) Activate(time, pos, speed, accel float64) (ActiveSegment, error) {
	dv := abs(s.ToSpeed - speed)
	dirSign := sign(s.ToSpeed - speed)
	if dv == 0 {
		// Open question (spec.md section 9): the pre-activation branch
		// is resolved here as "already at target" -- one sample at the
		// initial speed with zero accel/jerk, then end-of-segment.
		return &activeSmooth{v0: speed, alreadyAtTarget: true}, nil
	}

	tRamp := abs(s.Acceleration / s.Jerk)
	dvRamp := tRamp * s.Acceleration

	var peak, tRampActual, tCruise float64
	if dvRamp < dv {
		peak = s.Acceleration
		tRampActual = tRamp
		tCruise = (dv - dvRamp) / s.Acceleration
	} else {
		peak = math.Sqrt(abs(s.Jerk) * dv)
		tRampActual = abs(peak / s.Jerk)
		tCruise = 0
	}

	jerkUp := dirSign * s.Jerk
	peakSigned := dirSign * peak

	tRampUpEnd := time + tRampActual
	tCruiseEnd := tRampUpEnd + tCruise
	tRampDownEnd := tCruiseEnd + tRampActual

	return &activeSmooth{
		t0: time, v0: speed,
		jerkUp: jerkUp, peak: peakSigned,
		tRampUpEnd:   tRampUpEnd,
		tCruiseEnd:   tCruiseEnd,
		tRampDownEnd: tRampDownEnd,
	}, nil
}

type activeSmooth struct {
	t0, v0 float64
	jerkUp float64
	peak   float64

	tRampUpEnd   float64
	tCruiseEnd   float64
	tRampDownEnd float64

	alreadyAtTarget bool
	sampled         bool
}

func (a *activeSmooth) Drive(time, pos, speed, accel float64) (Drive, bool) {
	if a.alreadyAtTarget {
		if a.sampled {
			return Drive{}, false
		}
		a.sampled = true
		return Drive{Speed: a.v0, Accel: 0, Jerk: 0}, true
	}

	if time >= a.tRampDownEnd {
		return Drive{}, false
	}

	switch {
	case time < a.tRampUpEnd:
		tau := time - a.t0
		return Drive{
			Speed: a.v0 + 0.5*a.jerkUp*tau*tau,
			Accel: a.jerkUp * tau,
			Jerk:  a.jerkUp,
		}, true
	case time < a.tCruiseEnd:
		tauRamp := a.tRampUpEnd - a.t0
		vAtRampEnd := a.v0 + 0.5*a.jerkUp*tauRamp*tauRamp
		tauCruise := time - a.tRampUpEnd
		return Drive{
			Speed: vAtRampEnd + a.peak*tauCruise,
			Accel: a.peak,
			Jerk:  0,
		}, true
	default:
		tauRamp := a.tRampUpEnd - a.t0
		vAtRampEnd := a.v0 + 0.5*a.jerkUp*tauRamp*tauRamp
		vAtCruiseEnd := vAtRampEnd + a.peak*(a.tCruiseEnd-a.tRampUpEnd)
		tauDown := time - a.tCruiseEnd
		jerkDown := -a.jerkUp
		return Drive{
			Speed: vAtCruiseEnd + a.peak*tauDown + 0.5*jerkDown*tauDown*tauDown,
			Accel: a.peak + jerkDown*tauDown,
			Jerk:  jerkDown,
		}, true
	}
}

// ConstantSpeed holds the given speed for the given distance.
type ConstantSpeed struct {
	Speed    float64
	Distance float64
}

// NewConstantSpeed validates distance and returns a ConstantSpeed.
func NewConstantSpeed(speed, distance float64) (*ConstantSpeed, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("speed.NewConstantSpeed: distance must be positive, got %g", distance)
	}
	return &ConstantSpeed{Speed: speed, Distance: distance}, nil
}

func (s *ConstantSpeed) Activate(time, pos, speed, accel float64) (ActiveSegment, error) {
	return &activeConstant{speed: s.Speed, end: pos + s.Distance}, nil
}

type activeConstant struct {
	speed float64
	end   float64
}

func (a *activeConstant) Drive(time, pos, speed, accel float64) (Drive, bool) {
	if pos < a.end {
		return Drive{Speed: a.speed, Accel: 0, Jerk: 0}, true
	}
	return Drive{}, false
}
