package lkf

import (
	"fmt"

	tramkf "github.com/cobaltsignal/tramkf"
	"github.com/cobaltsignal/tramkf/belief"
	"gonum.org/v1/gonum/mat"
)

// ForwardCovDense computes A*P*A' + Q.
func ForwardCovDense(A *mat.Dense, P, Q mat.Symmetric) (*mat.SymDense, error) {
	var ap, apat mat.Dense
	ap.Mul(A, P)
	apat.Mul(&ap, A.T())
	apat.Add(&apat, Q)

	n, _ := apat.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, apat.At(i, j))
		}
	}
	return sym, nil
}

// DataUpdateDense applies the Joseph-form Kalman data update given a
// (possibly linearized) observation matrix C, a prior belief, an
// innovation vector already computed by the caller, and an
// observation noise covariance R. It returns the posterior belief and
// the Kalman gain.
func DataUpdateDense(C *mat.Dense, prior *belief.Dense, innovation *mat.VecDense, R mat.Symmetric) (*belief.Dense, *mat.Dense, error) {
	P, _ := prior.Covariance()

	var pct, cpct mat.Dense
	pct.Mul(P, C.T())
	cpct.Mul(C, &pct)
	cpct.Add(&cpct, R)

	var sInv mat.Dense
	if err := sInv.Inverse(&cpct); err != nil {
		return nil, nil, tramkf.NewNumericalError("lkf.DataUpdateDense", fmt.Errorf("innovation covariance is singular: %w", err))
	}

	gain := new(mat.Dense)
	gain.Mul(&pct, &sInv)

	mean := prior.Mean()
	correction := new(mat.Dense)
	correction.Mul(gain, innovation)
	for i := 0; i < mean.Len(); i++ {
		mean.SetVec(i, mean.AtVec(i)+correction.At(i, 0))
	}

	n := mean.Len()
	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}

	var kc, imkc mat.Dense
	kc.Mul(gain, C)
	imkc.Sub(eye, &kc)

	var imkcP, imkcPimkcT mat.Dense
	imkcP.Mul(&imkc, P)
	imkcPimkcT.Mul(&imkcP, imkc.T())

	var kr, krkt mat.Dense
	kr.Mul(gain, R)
	krkt.Mul(&kr, gain.T())

	var postCov mat.Dense
	postCov.Add(&imkcPimkcT, &krkt)

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, postCov.At(i, j))
		}
	}

	post, err := belief.NewDense(mean, sym)
	if err != nil {
		return nil, nil, fmt.Errorf("lkf.DataUpdateDense: %w", err)
	}
	return post, gain, nil
}
