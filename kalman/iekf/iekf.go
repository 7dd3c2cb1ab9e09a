// Package iekf implements the Iterated Extended Kalman Filter: a
// Gauss-Newton maximization of the log-posterior at each data step,
// damped by a linesearch.Controller.
package iekf

import (
	"fmt"
	"math"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/belief"
	"github.com/cobaltsignal/tramkf/kalman"
	"github.com/cobaltsignal/tramkf/kalman/ekf"
	"github.com/cobaltsignal/tramkf/kalman/lkf"
	"github.com/cobaltsignal/tramkf/linearize"
	"github.com/cobaltsignal/tramkf/linesearch"
	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IteratedExtendedKalmanFilter performs Gauss-Newton MAP estimation at
// each data step. forward_step is not iterated and delegates directly
// to the EKF.
type IteratedExtendedKalmanFilter struct {
	stepControl linesearch.Controller
	minStepNorm float64
	maxIters    int
	ekf         *ekf.ExtendedKalmanFilter
}

// New validates parameters and returns an
// IteratedExtendedKalmanFilter.
func New(stepControl linesearch.Controller, minStepNorm float64, maxIters int) (*IteratedExtendedKalmanFilter, error) {
	if stepControl == nil {
		return nil, fmt.Errorf("iekf.New: step_control must not be nil")
	}
	if minStepNorm < 0 {
		return nil, fmt.Errorf("iekf.New: min_step_norm must be nonnegative, got %g", minStepNorm)
	}
	if maxIters < 1 {
		return nil, fmt.Errorf("iekf.New: max_iters must be >= 1, got %d", maxIters)
	}
	return &IteratedExtendedKalmanFilter{
		stepControl: stepControl,
		minStepNorm: minStepNorm,
		maxIters:    maxIters,
		ekf:         ekf.New(),
	}, nil
}

// ForwardStep delegates to the EKF; the time update is not iterated.
func (f *IteratedExtendedKalmanFilter) ForwardStep(eq model.StateEquation, prior belief.Belief, u mat.Vector, noise kalman.ProcessNoise) (belief.Belief, error) {
	return f.ekf.ForwardStep(eq, prior, u, noise)
}

func inputOrEmpty(nInputs int, u mat.Vector) mat.Vector {
	if nInputs == 0 {
		return model.EmptyInput()
	}
	return u
}

// vecNorm is the Euclidean norm of v, compared against min_step_norm
// to decide Gauss-Newton convergence (spec.md section 4.7).
func vecNorm(v mat.Vector) float64 {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return floats.Norm(data, 2)
}

// DataStep performs Gauss-Newton maximization of the log-posterior,
// damped by the configured step controller, then finalizes by
// re-linearizing at the converged point and running one more
// innovation data step to obtain the posterior covariance (or factor).
func (f *IteratedExtendedKalmanFilter) DataStep(g model.MeasurementEquation, prior belief.Belief, u, z mat.Vector, noise kalman.ObservationNoise) (*kalman.StepResult, error) {
	if g.NStates() != prior.Dim() {
		return nil, fmt.Errorf("iekf.DataStep: model has %d states, belief has dimension %d", g.NStates(), prior.Dim())
	}
	if z.Len() != g.NOutputs() {
		return nil, fmt.Errorf("iekf.DataStep: observation has length %d, model has %d outputs", z.Len(), g.NOutputs())
	}

	muPrior := prior.Mean()
	uu := inputOrEmpty(g.NInputs(), u)
	n := g.NStates()

	objective := func(x *mat.VecDense) float64 {
		gx, err := g.Observe(x, uu)
		if err != nil {
			return math.Inf(1)
		}
		obsLogPdf, err := observationLogPdf(z, noise.Cov, noise.MeanVec(g.NOutputs()), gx)
		if err != nil {
			return math.Inf(1)
		}
		priorLogPdf, err := prior.LogPdf(x)
		if err != nil {
			return math.Inf(1)
		}
		return -obsLogPdf - priorLogPdf
	}

	xHat := mat.VecDenseCopyOf(muPrior)

	for iter := 0; iter < f.maxIters; iter++ {
		C, modInnovation, err := linearizeAndModifyInnovation(g, xHat, uu, muPrior, z, noise)
		if err != nil {
			return nil, fmt.Errorf("iekf.DataStep: %w", err)
		}

		candidate, err := lkf.DataStep(C, prior, modInnovation, noise.Cov)
		if err != nil {
			return nil, fmt.Errorf("iekf.DataStep: %w", err)
		}

		deltaGN := mat.NewVecDense(n, nil)
		deltaGN.SubVec(candidate.Belief.Mean(), xHat)

		step, err := f.stepControl.Step(objective, xHat, deltaGN)
		if err != nil {
			return nil, fmt.Errorf("iekf.DataStep: %w", err)
		}

		xHat.AddVec(xHat, step)

		if vecNorm(step) < f.minStepNorm {
			break
		}
	}

	C, modInnovation, err := linearizeAndModifyInnovation(g, xHat, uu, muPrior, z, noise)
	if err != nil {
		return nil, fmt.Errorf("iekf.DataStep: %w", err)
	}

	final, err := lkf.DataStep(C, prior, modInnovation, noise.Cov)
	if err != nil {
		return nil, fmt.Errorf("iekf.DataStep: %w", err)
	}

	finalMean := mat.VecDenseCopyOf(xHat)
	var posterior belief.Belief
	switch p := final.Belief.(type) {
	case *belief.Dense:
		cov, _ := p.Covariance()
		posterior, err = belief.NewDense(finalMean, cov)
	case *belief.Sqrt:
		posterior, err = belief.NewSqrt(finalMean, p.Factor())
	default:
		err = tramkf.NewDomainError("iekf.DataStep", fmt.Sprintf("unsupported belief representation %T", final.Belief))
	}
	if err != nil {
		return nil, fmt.Errorf("iekf.DataStep: %w", err)
	}

	return &kalman.StepResult{Belief: posterior, Innovation: final.Innovation, Gain: final.Gain}, nil
}

// linearizeAndModifyInnovation linearizes g at xHat and forms the
// modified innovation z - g(xHat) - C*(muPrior - xHat) used by the
// Gauss-Newton candidate step: the correction term accounts for the
// gap between the point of linearization xHat and the prior mean the
// LKF innovation path actually centers its update on.
func linearizeAndModifyInnovation(g model.MeasurementEquation, xHat *mat.VecDense, uu mat.Vector, muPrior *mat.VecDense, z mat.Vector, noise kalman.ObservationNoise) (*mat.Dense, *mat.VecDense, error) {
	C, _, err := linearize.Measurement(g, xHat, uu)
	if err != nil {
		return nil, nil, err
	}

	gx, err := g.Observe(xHat, uu)
	if err != nil {
		return nil, nil, err
	}

	diff := mat.NewVecDense(xHat.Len(), nil)
	diff.SubVec(muPrior, xHat)
	var cDiff mat.Dense
	cDiff.Mul(C, diff)

	modInnovation := mat.NewVecDense(z.Len(), nil)
	modInnovation.SubVec(z, gx)
	modInnovation.SubVec(modInnovation, noise.MeanVec(g.NOutputs()))
	for i := 0; i < z.Len(); i++ {
		modInnovation.SetVec(i, modInnovation.AtVec(i)-cDiff.At(i, 0))
	}

	return C, modInnovation, nil
}

// observationLogPdf evaluates the log-density of z under a Gaussian
// centered at predicted+mean with covariance cov, reusing belief.Dense
// so IEKF's objective shares the exact Gaussian log-density formula
// the rest of the package uses.
func observationLogPdf(z mat.Vector, cov mat.Symmetric, mean, predicted *mat.VecDense) (float64, error) {
	n := z.Len()
	center := mat.NewVecDense(n, nil)
	center.AddVec(predicted, mean)
	d, err := belief.NewDense(center, cov)
	if err != nil {
		return 0, err
	}
	return d.LogPdf(z)
}
