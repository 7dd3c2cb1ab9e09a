// Package linesearch implements the step controllers used by the
// Iterated Extended Kalman Filter to damp its Gauss-Newton iterate: a
// no-op Identity controller and a backtracking (Armijo)
// sufficient-decrease controller.
package linesearch

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Objective is a scalar function V: R^n -> R, evaluated during a line
// search at points offset from x0 along the proposed direction.
type Objective func(x *mat.VecDense) float64

// Controller maps an objective, a current point and a proposed step
// into an accepted step. Implementations must not mutate x0 or s0.
type Controller interface {
	Step(v Objective, x0, s0 *mat.VecDense) (*mat.VecDense, error)
}

// Identity always accepts the proposed step unmodified.
type Identity struct{}

// Step returns s0 as-is.
func (Identity) Step(v Objective, x0, s0 *mat.VecDense) (*mat.VecDense, error) {
	return mat.VecDenseCopyOf(s0), nil
}

var jacSettings = &fd.JacobianSettings{Formula: fd.Central, Concurrent: true}

// gradient computes the gradient of v at x via central finite
// differences, reusing the same AD facility linearize uses for
// Jacobians: a gradient is the 1xn Jacobian of a scalar-valued
// function.
func gradient(v Objective, x *mat.VecDense) *mat.VecDense {
	n := x.Len()
	jac := mat.NewDense(1, n, nil)
	fd.Jacobian(jac, func(y, xNow []float64) {
		y[0] = v(mat.NewVecDense(len(xNow), xNow))
	}, mat.Col(nil, 0, x), jacSettings)

	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		grad[i] = jac.At(0, i)
	}
	return mat.NewVecDense(n, grad)
}

// Backtracking implements Armijo sufficient-decrease backtracking:
// starting from multiplier alpha=1 it shrinks alpha by Reduction until
// the observed decrease in V exceeds the required fraction Strictness
// of the predicted linear decrease, or MaxIters is exhausted.
type Backtracking struct {
	// Strictness is the Armijo sufficient-decrease fraction, in (0,1).
	Strictness float64
	// Reduction is the per-iteration shrink factor for alpha, in (0,1).
	Reduction float64
	// MaxIters bounds the number of backtracking iterations.
	MaxIters int
}

// NewBacktracking validates parameters and returns a Backtracking
// controller.
func NewBacktracking(strictness, reduction float64, maxIters int) (*Backtracking, error) {
	if strictness <= 0 || strictness >= 1 {
		return nil, fmt.Errorf("linesearch.NewBacktracking: strictness must be in (0,1), got %g", strictness)
	}
	if reduction <= 0 || reduction >= 1 {
		return nil, fmt.Errorf("linesearch.NewBacktracking: reduction must be in (0,1), got %g", reduction)
	}
	if maxIters < 1 {
		return nil, fmt.Errorf("linesearch.NewBacktracking: max_iters must be >= 1, got %d", maxIters)
	}
	return &Backtracking{Strictness: strictness, Reduction: reduction, MaxIters: maxIters}, nil
}

// Step runs Armijo backtracking along s0 starting from x0.
func (b *Backtracking) Step(v Objective, x0, s0 *mat.VecDense) (*mat.VecDense, error) {
	n := x0.Len()
	v0 := v(x0)
	g := gradient(v, x0)
	gs := mat.Dot(g, s0)
	rho := -gs * b.Strictness

	alpha := 1.0
	var lastAlpha float64
	var lastAccepted bool

	for iter := 0; iter < b.MaxIters; iter++ {
		s := mat.NewVecDense(n, nil)
		s.ScaleVec(alpha, s0)

		xTrial := mat.NewVecDense(n, nil)
		xTrial.AddVec(x0, s)

		deltaV := v0 - v(xTrial)
		required := rho * alpha

		if deltaV > required {
			return s, nil
		}
		lastAlpha = alpha
		lastAccepted = false
		alpha *= b.Reduction
	}

	sLast := mat.NewVecDense(n, nil)
	sLast.ScaleVec(lastAlpha, s0)
	xLast := mat.NewVecDense(n, nil)
	xLast.AddVec(x0, sLast)
	if v(xLast) < v0 {
		lastAccepted = true
	}
	if lastAccepted {
		return sLast, nil
	}
	return mat.NewVecDense(n, nil), nil
}
