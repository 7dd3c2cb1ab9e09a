// Package lkf implements the Linear Kalman Filter forward and data
// steps, in both the dense-covariance and square-root (Cholesky
// factored) representations, plus Rauch-Tung-Striebel (RTS) backward
// smoothing.
package lkf

import (
	"fmt"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/belief"
	"github.com/cobaltsignal/tramkf/kalman"
	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/mat"
)

// LinearKalmanFilter is a parameter-only object: it holds no mutable
// state of its own. Every step takes the current belief, model and
// noise explicitly and returns a new belief, so independent filter
// pipelines can run over disjoint inputs without interference.
type LinearKalmanFilter struct{}

// New returns a LinearKalmanFilter.
func New() *LinearKalmanFilter { return &LinearKalmanFilter{} }

// ForwardStep propagates prior through a linear state equation,
// producing mu+ = A*mu + B*u + q and P+ = A*P*A' + Q (or, for a Sqrt
// prior, the corresponding square-root update). The representation of
// the returned belief matches that of prior.
func (f *LinearKalmanFilter) ForwardStep(eq *model.LTIStateEquation, prior belief.Belief, u mat.Vector, noise kalman.ProcessNoise) (belief.Belief, error) {
	if eq.NStates() != prior.Dim() {
		return nil, fmt.Errorf("lkf.ForwardStep: model has %d states, belief has dimension %d", eq.NStates(), prior.Dim())
	}

	mean, err := eq.Propagate(priorMeanVector(prior), inputOrEmpty(eq.NInputs(), u))
	if err != nil {
		return nil, fmt.Errorf("lkf.ForwardStep: %w", err)
	}
	mean.AddVec(mean, noise.MeanVec(eq.NStates()))

	switch p := prior.(type) {
	case *belief.Dense:
		cov, err := ForwardCovDense(eq.A, mustCov(p), noise.Cov)
		if err != nil {
			return nil, fmt.Errorf("lkf.ForwardStep: %w", err)
		}
		return belief.NewDense(mean, cov)
	case *belief.Sqrt:
		factor, err := ForwardCovSqrt(eq.A, p.Factor(), noise.Cov)
		if err != nil {
			return nil, fmt.Errorf("lkf.ForwardStep: %w", err)
		}
		return belief.NewSqrt(mean, factor)
	default:
		return nil, tramkf.NewDomainError("lkf.ForwardStep", fmt.Sprintf("unsupported belief representation %T", prior))
	}
}

// DataStep corrects prior using a linear measurement equation and an
// observation z, applying the Joseph-form covariance update (dense)
// or the LQ-based square-root update (Sqrt). The representation of
// the returned belief matches that of prior.
func (f *LinearKalmanFilter) DataStep(eq *model.LTIMeasurementEquation, prior belief.Belief, u, z mat.Vector, noise kalman.ObservationNoise) (*kalman.StepResult, error) {
	if eq.NStates() != prior.Dim() {
		return nil, fmt.Errorf("lkf.DataStep: model has %d states, belief has dimension %d", eq.NStates(), prior.Dim())
	}
	if z.Len() != eq.NOutputs() {
		return nil, fmt.Errorf("lkf.DataStep: observation has length %d, model has %d outputs", z.Len(), eq.NOutputs())
	}

	predicted, err := eq.Observe(priorMeanVector(prior), inputOrEmpty(eq.NInputs(), u))
	if err != nil {
		return nil, fmt.Errorf("lkf.DataStep: %w", err)
	}

	innovation := mat.NewVecDense(z.Len(), nil)
	innovation.SubVec(z, predicted)
	innovation.SubVec(innovation, noise.MeanVec(eq.NOutputs()))

	return dataStep(eq.C, prior, innovation, noise.Cov)
}

// DataStep applies the innovation path shared by LKF, EKF and IEKF to
// an already-linearized observation matrix C and an already-formed
// innovation vector, dispatching on the prior's belief representation.
// EKF and IEKF call this directly after linearizing their nonlinear
// measurement equation and computing their own (possibly "modified")
// innovation, instead of re-deriving the dense/square-root update
// math.
func DataStep(C *mat.Dense, prior belief.Belief, innovation *mat.VecDense, obsCov mat.Symmetric) (*kalman.StepResult, error) {
	return dataStep(C, prior, innovation, obsCov)
}

// dataStep applies the innovation path shared by LKF, EKF and IEKF:
// given a linearized observation matrix C and an innovation vector
// already computed by the caller (nonlinear callers form their own
// "modified innovation"), it produces the posterior belief, gain and
// the innovation itself.
func dataStep(C *mat.Dense, prior belief.Belief, innovation *mat.VecDense, obsCov mat.Symmetric) (*kalman.StepResult, error) {
	switch p := prior.(type) {
	case *belief.Dense:
		post, gain, err := DataUpdateDense(C, p, innovation, obsCov)
		if err != nil {
			return nil, err
		}
		return &kalman.StepResult{Belief: post, Innovation: innovation, Gain: gain}, nil
	case *belief.Sqrt:
		obsFactor, err := noiseFactor(obsCov)
		if err != nil {
			return nil, fmt.Errorf("lkf.dataStep: %w", err)
		}
		post, gain, err := DataUpdateSqrt(C, p, innovation, obsFactor)
		if err != nil {
			return nil, err
		}
		return &kalman.StepResult{Belief: post, Innovation: innovation, Gain: gain}, nil
	default:
		return nil, tramkf.NewDomainError("lkf.dataStep", fmt.Sprintf("unsupported belief representation %T", prior))
	}
}

func priorMeanVector(b belief.Belief) *mat.VecDense {
	switch v := b.(type) {
	case *belief.Dense:
		return v.Mean()
	case *belief.Sqrt:
		return v.Mean()
	default:
		return b.Mean()
	}
}

func inputOrEmpty(nInputs int, u mat.Vector) mat.Vector {
	if nInputs == 0 {
		return model.EmptyInput()
	}
	return u
}

func mustCov(d *belief.Dense) mat.Symmetric {
	cov, _ := d.Covariance()
	return cov
}
