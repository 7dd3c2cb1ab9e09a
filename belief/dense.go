package belief

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Dense is a Gaussian belief represented by its mean vector and full
// covariance matrix.
type Dense struct {
	mean *mat.VecDense
	cov  *mat.SymDense
}

// NewDense creates a Dense belief with the given mean and covariance.
// cov must be symmetric and must match mean's length; positive
// semidefiniteness is not checked here (pdf/logpdf and conversion to
// Sqrt will fail if it does not hold).
func NewDense(mean mat.Vector, cov mat.Symmetric) (*Dense, error) {
	if mean.Len() != cov.SymmetricDim() {
		return nil, fmt.Errorf("belief.NewDense: mean length %d does not match covariance dimension %d", mean.Len(), cov.SymmetricDim())
	}

	m := mat.NewVecDense(mean.Len(), nil)
	m.CloneFromVec(mean)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Dense{mean: m, cov: c}, nil
}

// Dim returns the dimension of the belief.
func (d *Dense) Dim() int { return d.mean.Len() }

// Mean returns a copy of the belief's mean vector.
func (d *Dense) Mean() *mat.VecDense {
	m := mat.NewVecDense(d.mean.Len(), nil)
	m.CloneFromVec(d.mean)
	return m
}

// Covariance returns a copy of the belief's covariance matrix.
func (d *Dense) Covariance() (*mat.SymDense, error) {
	c := mat.NewSymDense(d.cov.SymmetricDim(), nil)
	c.CopySym(d.cov)
	return c, nil
}

// LogPdf evaluates the log density of y under this belief, using a
// multivariate normal distribution centered at the belief's mean.
func (d *Dense) LogPdf(y mat.Vector) (float64, error) {
	dist, ok := distmv.NewNormal(mat.Col(nil, 0, d.mean), d.cov, nil)
	if !ok {
		return 0, fmt.Errorf("belief.Dense.LogPdf: covariance is not positive definite")
	}
	return dist.LogProb(mat.Col(nil, 0, y)), nil
}

// Pdf evaluates the density of y under this belief.
func (d *Dense) Pdf(y mat.Vector) (float64, error) {
	logp, err := d.LogPdf(y)
	if err != nil {
		return 0, err
	}
	return math.Exp(logp), nil
}
