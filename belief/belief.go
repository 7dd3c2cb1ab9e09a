// Package belief implements Gaussian and square-root Gaussian
// uncertain values ("beliefs") over a state vector. A belief is an
// immutable value: every operation on it returns a new belief of the
// same representation family rather than mutating the receiver.
package belief

import "gonum.org/v1/gonum/mat"

// Belief is a probability distribution over an n-vector, exposed
// through the capability set every representation (Dense, Sqrt)
// implements.
type Belief interface {
	// Dim returns the dimension n of the underlying state vector.
	Dim() int
	// Mean returns the belief's mean vector.
	Mean() *mat.VecDense
	// Covariance materializes the belief's covariance matrix. For a
	// Sqrt belief this computes L*L'; callers on a hot path should
	// prefer operating on the belief directly rather than calling
	// Covariance repeatedly.
	Covariance() (*mat.SymDense, error)
	// LogPdf evaluates the log probability density of y under this
	// belief.
	LogPdf(y mat.Vector) (float64, error)
	// Pdf evaluates the probability density of y under this belief.
	Pdf(y mat.Vector) (float64, error)
}
