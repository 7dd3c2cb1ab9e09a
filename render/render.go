package render

import (
	"errors"
	"fmt"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/discretize"
	"github.com/cobaltsignal/tramkf/speed"
	"github.com/cobaltsignal/tramkf/track"
	"gonum.org/v1/gonum/mat"
)

// RenderTrip drives the kinematic ODE from an initial TramState,
// sampling the track and speed-profile chains independently on every
// micro-step, and appends a sample to the returned trajectory every
// subsamples-th micro-step. Segment transitions are resolved strictly
// between micro-steps, never inside a single RK4 evaluation, by
// sampling both chains before advancing the ODE.
func RenderTrip(tracks []track.Segment, trips []speed.Segment, dt float64, subsamples int, state0 TramState) ([]TramState, error) {
	if dt <= 0 {
		return nil, tramkf.NewDomainError("render.RenderTrip", fmt.Sprintf("dt must be positive, got %g", dt))
	}
	if subsamples < 1 {
		subsamples = 1
	}

	trackChain, err := track.NewChain(tracks, state0.Distance)
	if err != nil {
		return nil, fmt.Errorf("render.RenderTrip: %w", err)
	}
	speedChain, err := speed.NewChain(trips, state0.Time, state0.Distance, state0.Speed, state0.Accel)
	if err != nil {
		return nil, fmt.Errorf("render.RenderTrip: %w", err)
	}

	ode, err := discretize.Discretize(kinematicModel{}, discretize.RK4, dt/float64(subsamples), 1)
	if err != nil {
		return nil, fmt.Errorf("render.RenderTrip: %w", err)
	}

	x := mat.NewVecDense(nStates, state0.toSlice())
	u := &mat.VecDense{}

	var out []TramState
	iteration := 0

	for {
		curv, err := trackChain.Sample(x.AtVec(IDistance))
		if err != nil {
			if errors.Is(err, tramkf.EndOfStream) {
				break
			}
			return nil, fmt.Errorf("render.RenderTrip: %w", err)
		}
		drive, err := speedChain.Drive(x.AtVec(ITime), x.AtVec(IDistance), x.AtVec(ISpeed), x.AtVec(IAccel))
		if err != nil {
			if errors.Is(err, tramkf.EndOfStream) {
				break
			}
			return nil, fmt.Errorf("render.RenderTrip: %w", err)
		}

		x.SetVec(ICurvature, curv.Curvature)
		x.SetVec(IDCurvature, curv.DCurvature)
		x.SetVec(ISpeed, drive.Speed)
		x.SetVec(IAccel, drive.Accel)
		x.SetVec(IJerk, drive.Jerk)

		iteration++
		x.SetVec(ITime, float64(iteration-1)*dt/float64(subsamples))

		next, err := ode.Propagate(x, u)
		if err != nil {
			return nil, fmt.Errorf("render.RenderTrip: %w", err)
		}
		x = next

		if iteration%subsamples == 0 {
			out = append(out, fromSlice(x.RawVector().Data))
		}
	}

	return out, nil
}
