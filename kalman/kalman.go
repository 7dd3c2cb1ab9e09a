// Package kalman holds the types shared by the Linear, Extended and
// Iterated Extended Kalman filter packages: additive noise
// descriptors and the diagnostic result returned from a data step.
package kalman

import (
	"github.com/cobaltsignal/tramkf/belief"
	"gonum.org/v1/gonum/mat"
)

// ProcessNoise is the additive disturbance (q, Q) in a forward step:
// a mean bias q (usually zero) and a covariance Q.
type ProcessNoise struct {
	Mean *mat.VecDense
	Cov  mat.Symmetric
}

// MeanVec returns Mean, or a zero vector of length n if Mean is nil.
func (p ProcessNoise) MeanVec(n int) *mat.VecDense {
	if p.Mean == nil {
		return mat.NewVecDense(n, nil)
	}
	return p.Mean
}

// ZeroProcessNoise returns noise-free process noise of dimension n.
func ZeroProcessNoise(n int) ProcessNoise {
	return ProcessNoise{
		Mean: mat.NewVecDense(n, nil),
		Cov:  mat.NewSymDense(n, nil),
	}
}

// ObservationNoise is the additive measurement noise (mean, Cov) in a
// data step.
type ObservationNoise struct {
	Mean *mat.VecDense
	Cov  mat.Symmetric
}

// MeanVec returns Mean, or a zero vector of length n if Mean is nil.
func (o ObservationNoise) MeanVec(n int) *mat.VecDense {
	if o.Mean == nil {
		return mat.NewVecDense(n, nil)
	}
	return o.Mean
}

// ZeroObservationNoise returns noise-free observation noise of
// dimension n.
func ZeroObservationNoise(n int) ObservationNoise {
	return ObservationNoise{
		Mean: mat.NewVecDense(n, nil),
		Cov:  mat.NewSymDense(n, nil),
	}
}

// StepResult wraps the posterior belief returned from a data step
// together with the innovation and Kalman gain that produced it, for
// callers that want the diagnostics (mirroring the teacher's
// Innovation/Gain accessors on its stateful filter types, but
// returned as a value alongside the pure belief rather than stashed
// on a mutable receiver). For a Sqrt prior, Gain holds the square-root
// gain K~ (with K = K~ * inv(L_y)) rather than the Kalman gain K; see
// lkf.DataUpdateSqrt.
type StepResult struct {
	Belief     belief.Belief
	Innovation *mat.VecDense
	Gain       *mat.Dense
}
