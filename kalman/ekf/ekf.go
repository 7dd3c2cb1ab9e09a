// Package ekf implements the Extended Kalman Filter: forward and data
// steps that linearize a nonlinear model at the current belief's mean
// before applying the same dense/square-root Kalman math as the
// linear filter.
package ekf

import (
	"fmt"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/belief"
	"github.com/cobaltsignal/tramkf/kalman"
	"github.com/cobaltsignal/tramkf/kalman/lkf"
	"github.com/cobaltsignal/tramkf/linearize"
	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/mat"
)

// ExtendedKalmanFilter is a parameter-only object, like
// LinearKalmanFilter: it holds no state of its own.
type ExtendedKalmanFilter struct{}

// New returns an ExtendedKalmanFilter.
func New() *ExtendedKalmanFilter { return &ExtendedKalmanFilter{} }

func inputOrEmpty(nInputs int, u mat.Vector) mat.Vector {
	if nInputs == 0 {
		return model.EmptyInput()
	}
	return u
}

// ForwardStep linearizes f at (mean(prior), u), then applies the LKF
// forward step with the resulting LTI state equation.
func (e *ExtendedKalmanFilter) ForwardStep(f model.StateEquation, prior belief.Belief, u mat.Vector, noise kalman.ProcessNoise) (belief.Belief, error) {
	if f.NStates() != prior.Dim() {
		return nil, fmt.Errorf("ekf.ForwardStep: model has %d states, belief has dimension %d", f.NStates(), prior.Dim())
	}

	x := prior.Mean()
	uu := inputOrEmpty(f.NInputs(), u)

	A, _, err := linearize.State(f, x, uu)
	if err != nil {
		return nil, fmt.Errorf("ekf.ForwardStep: %w", err)
	}

	mean, err := f.Propagate(x, uu)
	if err != nil {
		return nil, fmt.Errorf("ekf.ForwardStep: %w", err)
	}
	mean.AddVec(mean, noise.MeanVec(f.NStates()))

	switch p := prior.(type) {
	case *belief.Dense:
		cov, _ := p.Covariance()
		postCov, err := lkf.ForwardCovDense(A, cov, noise.Cov)
		if err != nil {
			return nil, fmt.Errorf("ekf.ForwardStep: %w", err)
		}
		return belief.NewDense(mean, postCov)
	case *belief.Sqrt:
		factor, err := lkf.ForwardCovSqrt(A, p.Factor(), noise.Cov)
		if err != nil {
			return nil, fmt.Errorf("ekf.ForwardStep: %w", err)
		}
		return belief.NewSqrt(mean, factor)
	default:
		return nil, tramkf.NewDomainError("ekf.ForwardStep", fmt.Sprintf("unsupported belief representation %T", prior))
	}
}

// DataStep linearizes g at (mean(prior), u), forms the innovation
// z - g(mean(prior), u), and applies the LKF's shared innovation path
// with the linearized C.
func (e *ExtendedKalmanFilter) DataStep(g model.MeasurementEquation, prior belief.Belief, u, z mat.Vector, noise kalman.ObservationNoise) (*kalman.StepResult, error) {
	if g.NStates() != prior.Dim() {
		return nil, fmt.Errorf("ekf.DataStep: model has %d states, belief has dimension %d", g.NStates(), prior.Dim())
	}
	if z.Len() != g.NOutputs() {
		return nil, fmt.Errorf("ekf.DataStep: observation has length %d, model has %d outputs", z.Len(), g.NOutputs())
	}

	x := prior.Mean()
	uu := inputOrEmpty(g.NInputs(), u)

	C, _, err := linearize.Measurement(g, x, uu)
	if err != nil {
		return nil, fmt.Errorf("ekf.DataStep: %w", err)
	}

	predicted, err := g.Observe(x, uu)
	if err != nil {
		return nil, fmt.Errorf("ekf.DataStep: %w", err)
	}

	innovation := mat.NewVecDense(z.Len(), nil)
	innovation.SubVec(z, predicted)
	innovation.SubVec(innovation, noise.MeanVec(g.NOutputs()))

	return lkf.DataStep(C, prior, innovation, noise.Cov)
}
