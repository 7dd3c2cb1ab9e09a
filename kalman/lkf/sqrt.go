package lkf

import (
	"fmt"

	"github.com/cobaltsignal/tramkf/belief"
	"github.com/cobaltsignal/tramkf/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// noiseFactor returns the lower Cholesky factor of a noise
// covariance, used to build the block matrices the square-root steps
// factorize.
func noiseFactor(cov mat.Symmetric) (*mat.TriDense, error) {
	return linalg.Cholesky(cov)
}

// ForwardCovSqrt computes the posterior square-root factor for a
// forward step: the lower-triangular factor of the LQ decomposition
// of the 1x2 block row [L_Q | A*L_prior].
func ForwardCovSqrt(A *mat.Dense, priorFactor *mat.TriDense, Q mat.Symmetric) (*mat.TriDense, error) {
	Lq, err := noiseFactor(Q)
	if err != nil {
		return nil, fmt.Errorf("lkf.ForwardCovSqrt: %w", err)
	}

	var aL mat.Dense
	aL.Mul(A, priorFactor)

	M := linalg.HStack(Lq, &aL)

	L, err := linalg.LQ(M)
	if err != nil {
		return nil, fmt.Errorf("lkf.ForwardCovSqrt: %w", err)
	}
	return L, nil
}

// DataUpdateSqrt applies the square-root Kalman data update. It
// builds the block matrix
//
//	M = [ L_R          C*L_prior ]
//	    [ 0_{n x p}    L_prior   ]
//
// factorizes it into a lower-triangular L', partitions L' as
//
//	L' = [ L_y    0      ]
//	     [ K~      L_x+  ]
//
// and returns the posterior mean mu + K~*(L_y \ innovation), the
// posterior factor L_x+, and K~ as the diagnostic gain.
func DataUpdateSqrt(C *mat.Dense, prior *belief.Sqrt, innovation *mat.VecDense, Lr *mat.TriDense) (*belief.Sqrt, *mat.Dense, error) {
	n := prior.Dim()
	p, _ := Lr.Dims()

	Lprior := prior.Factor()

	var CL mat.Dense
	CL.Mul(C, Lprior)

	topRow := linalg.HStack(Lr, &CL)
	bottomRow := linalg.HStack(linalg.ZeroDense(n, p), Lprior)
	M := linalg.VStack(topRow, bottomRow)

	Lprime, err := linalg.LQ(M)
	if err != nil {
		return nil, nil, fmt.Errorf("lkf.DataUpdateSqrt: %w", err)
	}

	Ly := mat.NewTriDense(p, mat.Lower, nil)
	for i := 0; i < p; i++ {
		for j := 0; j <= i; j++ {
			Ly.SetTri(i, j, Lprime.At(i, j))
		}
	}

	Ktilde := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Ktilde.Set(i, j, Lprime.At(p+i, j))
		}
	}

	Lxplus := mat.NewTriDense(n, mat.Lower, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			Lxplus.SetTri(i, j, Lprime.At(p+i, p+j))
		}
	}

	w, err := linalg.SolveLower(Ly, innovation)
	if err != nil {
		return nil, nil, fmt.Errorf("lkf.DataUpdateSqrt: %w", err)
	}

	var correction mat.Dense
	correction.Mul(Ktilde, w)

	mean := prior.Mean()
	for i := 0; i < n; i++ {
		mean.SetVec(i, mean.AtVec(i)+correction.At(i, 0))
	}

	post, err := belief.NewSqrt(mean, Lxplus)
	if err != nil {
		return nil, nil, fmt.Errorf("lkf.DataUpdateSqrt: %w", err)
	}

	return post, Ktilde, nil
}
