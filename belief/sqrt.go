package belief

import (
	"fmt"
	"math"

	"github.com/cobaltsignal/tramkf/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Sqrt is a Gaussian belief represented by its mean vector and the
// lower Cholesky factor L of its covariance, with cov = L*L' and a
// nonnegative diagonal on L. Propagating beliefs in this form keeps
// filters numerically stable over long horizons: see the LKF and EKF
// square-root steps.
type Sqrt struct {
	mean *mat.VecDense
	l    *mat.TriDense
}

// NewSqrt creates a Sqrt belief from a mean and an explicit lower
// Cholesky factor. It returns an error if l is not lower triangular
// with a nonnegative diagonal, or if its dimension does not match
// mean's length.
func NewSqrt(mean mat.Vector, l *mat.TriDense) (*Sqrt, error) {
	n, _ := l.Dims()
	if mean.Len() != n {
		return nil, fmt.Errorf("belief.NewSqrt: mean length %d does not match factor dimension %d", mean.Len(), n)
	}
	if tn, kind := l.Triangle(); tn != n || kind != mat.Lower {
		return nil, fmt.Errorf("belief.NewSqrt: L must be lower triangular")
	}
	for i := 0; i < n; i++ {
		if l.At(i, i) < 0 {
			return nil, fmt.Errorf("belief.NewSqrt: L must have a nonnegative diagonal, got L[%d][%d]=%f", i, i, l.At(i, i))
		}
	}

	m := mat.NewVecDense(mean.Len(), nil)
	m.CloneFromVec(mean)

	factor := mat.NewTriDense(n, mat.Lower, nil)
	factor.Copy(l)

	return &Sqrt{mean: m, l: factor}, nil
}

// NewSqrtFromDense converts a Dense belief to Sqrt form by taking the
// lower Cholesky factor of its covariance. It returns a construction
// error unless the covariance is positive definite or entirely zero
// (see linalg.Cholesky).
func NewSqrtFromDense(d *Dense) (*Sqrt, error) {
	l, err := linalg.Cholesky(d.cov)
	if err != nil {
		return nil, fmt.Errorf("belief.NewSqrtFromDense: %w", err)
	}
	return NewSqrt(d.mean, l)
}

// Dim returns the dimension of the belief.
func (s *Sqrt) Dim() int { return s.mean.Len() }

// Mean returns a copy of the belief's mean vector.
func (s *Sqrt) Mean() *mat.VecDense {
	m := mat.NewVecDense(s.mean.Len(), nil)
	m.CloneFromVec(s.mean)
	return m
}

// Factor returns a copy of the belief's lower Cholesky factor.
func (s *Sqrt) Factor() *mat.TriDense {
	n, _ := s.l.Dims()
	l := mat.NewTriDense(n, mat.Lower, nil)
	l.Copy(s.l)
	return l
}

// Covariance materializes L*L'.
func (s *Sqrt) Covariance() (*mat.SymDense, error) {
	var cov mat.Dense
	cov.Mul(s.l, s.l.T())

	n, _ := s.l.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}
	return sym, nil
}

// LogPdf evaluates the log density of y using the square-root form
// directly: logpdf(y) = -n/2*log(2*pi) - log|det L| - 1/2*||L\(y-mu)||^2,
// which avoids ever materializing L*L' or its inverse.
func (s *Sqrt) LogPdf(y mat.Vector) (float64, error) {
	n := s.Dim()
	if y.Len() != n {
		return 0, fmt.Errorf("belief.Sqrt.LogPdf: y has length %d, belief has dimension %d", y.Len(), n)
	}

	diff := mat.NewVecDense(n, nil)
	diff.SubVec(y, s.mean)

	z, err := linalg.SolveLower(s.l, diff)
	if err != nil {
		return 0, fmt.Errorf("belief.Sqrt.LogPdf: %w", err)
	}

	var sqNorm float64
	for i := 0; i < n; i++ {
		sqNorm += z.At(i, 0) * z.At(i, 0)
	}

	logDet := linalg.LogDetTri(s.l)

	return -float64(n)/2*math.Log(2*math.Pi) - logDet - 0.5*sqNorm, nil
}

// Pdf evaluates the density of y under this belief.
func (s *Sqrt) Pdf(y mat.Vector) (float64, error) {
	logp, err := s.LogPdf(y)
	if err != nil {
		return 0, err
	}
	return math.Exp(logp), nil
}

// ToDense converts a Sqrt belief to its Dense representation.
func (s *Sqrt) ToDense() (*Dense, error) {
	cov, err := s.Covariance()
	if err != nil {
		return nil, err
	}
	return NewDense(s.mean, cov)
}
