// Package linearize computes Jacobian-based linear time-invariant
// surrogates of nonlinear state and measurement equations at an
// operating point, using finite-difference Jacobians. This plays the
// role of the "AD facility" from the design: any forward- or
// reverse-mode Jacobian provider would satisfy the same contract, and
// central-difference finite differences are the standard gonum-
// ecosystem stand-in when no bespoke automatic-differentiation
// library is part of the stack.
package linearize

import (
	"fmt"

	"github.com/cobaltsignal/tramkf/model"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var settings = &fd.JacobianSettings{
	Formula:    fd.Central,
	Concurrent: true,
}

// emptyColumns returns a rows x 0 matrix (mat.NewDense rejects a zero
// dimension, so the header is set directly).
func emptyColumns(rows int) *mat.Dense {
	var d mat.Dense
	d.SetRawMatrix(blas64.General{Rows: rows, Cols: 0, Stride: 1})
	return &d
}

// State linearizes a StateEquation at (x, u), returning A = df/dx and
// B = df/du. If f.NInputs() == 0, B is the empty n x 0 matrix. State
// is exact (up to floating point) when f is already an
// LTIStateEquation.
func State(f model.StateEquation, x, u mat.Vector) (A, B *mat.Dense, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("linearize.State: %v", r)
		}
	}()

	n := f.NStates()
	A = mat.NewDense(n, n, nil)
	fx := func(y, xNow []float64) {
		xv := mat.NewVecDense(len(xNow), xNow)
		out, e := f.Propagate(xv, u)
		if e != nil {
			panic(e)
		}
		for i := 0; i < len(y); i++ {
			y[i] = out.AtVec(i)
		}
	}
	fd.Jacobian(A, fx, mat.Col(nil, 0, x), settings)

	m := f.NInputs()
	if m == 0 {
		return A, emptyColumns(n), nil
	}

	B = mat.NewDense(n, m, nil)
	fu := func(y, uNow []float64) {
		uv := mat.NewVecDense(len(uNow), uNow)
		out, e := f.Propagate(x, uv)
		if e != nil {
			panic(e)
		}
		for i := 0; i < len(y); i++ {
			y[i] = out.AtVec(i)
		}
	}
	fd.Jacobian(B, fu, mat.Col(nil, 0, u), settings)

	return A, B, nil
}

// Measurement linearizes a MeasurementEquation at (x, u), returning
// C = dg/dx and D = dg/du. If g.NInputs() == 0, D is the empty p x 0
// matrix.
func Measurement(g model.MeasurementEquation, x, u mat.Vector) (C, D *mat.Dense, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("linearize.Measurement: %v", r)
		}
	}()

	p := g.NOutputs()
	C = mat.NewDense(p, g.NStates(), nil)
	gx := func(y, xNow []float64) {
		xv := mat.NewVecDense(len(xNow), xNow)
		out, e := g.Observe(xv, u)
		if e != nil {
			panic(e)
		}
		for i := 0; i < len(y); i++ {
			y[i] = out.AtVec(i)
		}
	}
	fd.Jacobian(C, gx, mat.Col(nil, 0, x), settings)

	m := g.NInputs()
	if m == 0 {
		return C, emptyColumns(p), nil
	}

	D = mat.NewDense(p, m, nil)
	gu := func(y, uNow []float64) {
		uv := mat.NewVecDense(len(uNow), uNow)
		out, e := g.Observe(x, uv)
		if e != nil {
			panic(e)
		}
		for i := 0; i < len(y); i++ {
			y[i] = out.AtVec(i)
		}
	}
	fd.Jacobian(D, gu, mat.Col(nil, 0, u), settings)

	return C, D, nil
}
