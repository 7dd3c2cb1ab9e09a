package lkf

import (
	"fmt"

	"github.com/cobaltsignal/tramkf/belief"
	"gonum.org/v1/gonum/mat"
)

// BackwardStep implements the Rauch-Tung-Striebel backward recursion:
// given the current filtered belief, the one-step-ahead prior belief
// (Belief_{k+1}^-) and the already-smoothed next belief
// (Belief_{k+1}^s), it returns the smoothed belief at the current
// step.
//
//	F   = P_k * A' * inv(P_{k+1}^-)
//	mu  = mu_k + F*(mu_{k+1}^s - mu_{k+1}^-)
//	P   = P_k - F*(P_{k+1}^- - P_{k+1}^s)*F'
//
// The math is carried out in dense covariance form regardless of the
// representation of the inputs (this is the standard RTS recursion;
// the source material does not define a square-root variant for it).
// The returned belief is Sqrt if current was Sqrt, Dense otherwise.
func (f *LinearKalmanFilter) BackwardStep(A *mat.Dense, current, nextPrior, nextSmoothed belief.Belief) (belief.Belief, error) {
	_, isSqrt := current.(*belief.Sqrt)

	cur, err := belief.AsDense(current)
	if err != nil {
		return nil, fmt.Errorf("lkf.BackwardStep: current: %w", err)
	}
	nPrior, err := belief.AsDense(nextPrior)
	if err != nil {
		return nil, fmt.Errorf("lkf.BackwardStep: nextPrior: %w", err)
	}
	nSmoothed, err := belief.AsDense(nextSmoothed)
	if err != nil {
		return nil, fmt.Errorf("lkf.BackwardStep: nextSmoothed: %w", err)
	}

	Pk, _ := cur.Covariance()
	PkNextPrior, _ := nPrior.Covariance()
	PkNextSmoothed, _ := nSmoothed.Covariance()

	var pAt mat.Dense
	pAt.Mul(Pk, A.T())

	var pNextInv mat.Dense
	if err := pNextInv.Inverse(PkNextPrior); err != nil {
		return nil, fmt.Errorf("lkf.BackwardStep: one-step prior covariance is singular: %w", err)
	}

	F := new(mat.Dense)
	F.Mul(&pAt, &pNextInv)

	meanDiff := mat.NewVecDense(nSmoothed.Dim(), nil)
	meanDiff.SubVec(nSmoothed.Mean(), nPrior.Mean())

	var correction mat.Dense
	correction.Mul(F, meanDiff)

	mean := cur.Mean()
	for i := 0; i < mean.Len(); i++ {
		mean.SetVec(i, mean.AtVec(i)+correction.At(i, 0))
	}

	var covDiff mat.Dense
	covDiff.Sub(PkNextPrior, PkNextSmoothed)

	var fCovDiff, fCovDiffFt mat.Dense
	fCovDiff.Mul(F, &covDiff)
	fCovDiffFt.Mul(&fCovDiff, F.T())

	var postCov mat.Dense
	postCov.Sub(Pk, &fCovDiffFt)

	n := mean.Len()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, postCov.At(i, j))
		}
	}

	dense, err := belief.NewDense(mean, sym)
	if err != nil {
		return nil, fmt.Errorf("lkf.BackwardStep: %w", err)
	}

	if isSqrt {
		return belief.NewSqrtFromDense(dense)
	}
	return dense, nil
}
