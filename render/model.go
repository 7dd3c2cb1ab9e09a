package render

import (
	"math"

	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/mat"
)

// kinematicModel is the continuous-time rigid-body kinematic ODE
// driving a TramState:
//
//	xdot = [1, v, v*cos(phi), v*sin(phi), a, j, 0, v*c, v*dc, 0]
//
// Speed, accel, jerk, curvature and dcurvature are overwritten by the
// segment chainers before every micro-step. Within a micro-step the
// ODE integrates time, distance, position and heading from them, and
// also advances speed, accel and curvature, which the next overwrite
// replaces.
type kinematicModel struct{}

func (kinematicModel) NStates() int             { return nStates }
func (kinematicModel) NInputs() int             { return 0 }
func (kinematicModel) Domain() model.TimeDomain { return model.Continuous }

func (kinematicModel) Propagate(x, u mat.Vector) (*mat.VecDense, error) {
	v := x.AtVec(ISpeed)
	a := x.AtVec(IAccel)
	j := x.AtVec(IJerk)
	phi := x.AtVec(IHeading)
	c := x.AtVec(ICurvature)
	dc := x.AtVec(IDCurvature)

	out := mat.NewVecDense(nStates, nil)
	out.SetVec(ITime, 1)
	out.SetVec(IDistance, v)
	out.SetVec(IX, v*math.Cos(phi))
	out.SetVec(IY, v*math.Sin(phi))
	out.SetVec(ISpeed, a)
	out.SetVec(IAccel, j)
	out.SetVec(IJerk, 0)
	out.SetVec(IHeading, v*c)
	out.SetVec(ICurvature, v*dc)
	out.SetVec(IDCurvature, 0)
	return out, nil
}
