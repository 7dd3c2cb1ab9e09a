// Package discretize turns a continuous-time StateEquation into a
// discrete-time one by repeated fixed-step integration, using either
// the explicit Euler method or classic fourth-order Runge-Kutta
// (RK4).
package discretize

import (
	"fmt"
	"math"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/mat"
)

// Method selects the integrator a DiscretizedStateEquation uses for
// each of its micro-steps.
type Method int

const (
	// Euler is the explicit Euler method: x + f(x,u)*dt.
	Euler Method = iota
	// RK4 is the classic four-stage Runge-Kutta method.
	RK4
)

// EulerStep advances x by one step of size dt under f: x + f(x,u)*dt.
func EulerStep(f model.StateEquation, x, u mat.Vector, dt float64) (*mat.VecDense, error) {
	k1, err := f.Propagate(x, u)
	if err != nil {
		return nil, fmt.Errorf("discretize.EulerStep: %w", err)
	}

	out := mat.NewVecDense(x.Len(), nil)
	out.AddScaledVec(x, dt, k1)
	return out, nil
}

// RK4Step advances x by one step of size dt under f using the
// classic four-stage Runge-Kutta formula: four stages k1..k4 are
// evaluated at (x,u), (x+k1*dt/2,u), (x+k2*dt/2,u), (x+k3*dt,u), and
// combined as x + (k1 + 2*k2 + 2*k3 + k4)*dt/6.
func RK4Step(f model.StateEquation, x, u mat.Vector, dt float64) (*mat.VecDense, error) {
	n := x.Len()

	k1, err := f.Propagate(x, u)
	if err != nil {
		return nil, fmt.Errorf("discretize.RK4Step: stage 1: %w", err)
	}

	x2 := mat.NewVecDense(n, nil)
	x2.AddScaledVec(x, dt/2, k1)
	k2, err := f.Propagate(x2, u)
	if err != nil {
		return nil, fmt.Errorf("discretize.RK4Step: stage 2: %w", err)
	}

	x3 := mat.NewVecDense(n, nil)
	x3.AddScaledVec(x, dt/2, k2)
	k3, err := f.Propagate(x3, u)
	if err != nil {
		return nil, fmt.Errorf("discretize.RK4Step: stage 3: %w", err)
	}

	x4 := mat.NewVecDense(n, nil)
	x4.AddScaledVec(x, dt, k3)
	k4, err := f.Propagate(x4, u)
	if err != nil {
		return nil, fmt.Errorf("discretize.RK4Step: stage 4: %w", err)
	}

	sum := mat.NewVecDense(n, nil)
	sum.AddScaledVec(sum, 1, k1)
	sum.AddScaledVec(sum, 2, k2)
	sum.AddScaledVec(sum, 2, k3)
	sum.AddScaledVec(sum, 1, k4)

	out := mat.NewVecDense(n, nil)
	out.AddScaledVec(x, dt/6, sum)
	return out, nil
}

// DiscretizedStateEquation wraps a continuous-time StateEquation and
// advances it by repeatedly applying an integrator over substeps of
// size Ts/subsamples.
type DiscretizedStateEquation struct {
	f          model.StateEquation
	method     Method
	ts         float64
	subsamples int
}

// Discretize builds a DiscretizedStateEquation from a continuous-time
// equation f. It fails with a domain error if f is not continuous,
// if Ts is not finite and positive, or if subsamples < 1.
func Discretize(f model.StateEquation, method Method, Ts float64, subsamples int) (*DiscretizedStateEquation, error) {
	if f.Domain() != model.Continuous {
		return nil, tramkf.NewDomainError("discretize.Discretize", fmt.Sprintf("equation must be continuous, got %s", f.Domain()))
	}
	if !(Ts > 0) || math.IsInf(Ts, 0) || math.IsNaN(Ts) {
		return nil, tramkf.NewDomainError("discretize.Discretize", fmt.Sprintf("Ts must be finite and positive, got %v", Ts))
	}
	if subsamples < 1 {
		return nil, tramkf.NewDomainError("discretize.Discretize", fmt.Sprintf("subsamples must be >= 1, got %d", subsamples))
	}

	return &DiscretizedStateEquation{f: f, method: method, ts: Ts, subsamples: subsamples}, nil
}

// Propagate advances x by one discrete step (Ts) by repeatedly
// applying the selected integrator over subsamples substeps of size
// Ts/subsamples.
func (d *DiscretizedStateEquation) Propagate(x, u mat.Vector) (*mat.VecDense, error) {
	dt := d.ts / float64(d.subsamples)

	cur := mat.NewVecDense(x.Len(), nil)
	cur.CloneFromVec(x)

	var err error
	for i := 0; i < d.subsamples; i++ {
		switch d.method {
		case RK4:
			cur, err = RK4Step(d.f, cur, u, dt)
		default:
			cur, err = EulerStep(d.f, cur, u, dt)
		}
		if err != nil {
			return nil, fmt.Errorf("discretize.DiscretizedStateEquation.Propagate: substep %d: %w", i, err)
		}
	}

	return cur, nil
}

// NStates returns the dimension of the wrapped equation's state.
func (d *DiscretizedStateEquation) NStates() int { return d.f.NStates() }

// NInputs returns the dimension of the wrapped equation's input.
func (d *DiscretizedStateEquation) NInputs() int { return d.f.NInputs() }

// Domain always reports Discrete.
func (d *DiscretizedStateEquation) Domain() model.TimeDomain { return model.Discrete }

// Ts returns the overall discrete time step.
func (d *DiscretizedStateEquation) Ts() float64 { return d.ts }

// Subsamples returns the number of integrator substeps per Ts.
func (d *DiscretizedStateEquation) Subsamples() int { return d.subsamples }
