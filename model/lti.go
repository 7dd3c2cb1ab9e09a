package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LTIStateEquation is a linear time-invariant state equation
// x' = A*x if NInputs() == 0, else x' = A*x + B*u.
type LTIStateEquation struct {
	A, B   *mat.Dense
	domain TimeDomain
}

// NewLTIStateEquation builds an LTIStateEquation tagged with the
// given time domain. A must be square and nonempty. B may be nil (no
// control input) or an n x m matrix, where n is A's dimension.
func NewLTIStateEquation(domain TimeDomain, A, B *mat.Dense) (*LTIStateEquation, error) {
	rows, cols := A.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("model.NewLTIStateEquation: A must be nonempty")
	}
	if rows != cols {
		return nil, fmt.Errorf("model.NewLTIStateEquation: A must be square, got %d x %d", rows, cols)
	}

	if B != nil {
		brows, _ := B.Dims()
		if brows != rows {
			return nil, fmt.Errorf("model.NewLTIStateEquation: B has %d rows, want %d", brows, rows)
		}
	}

	return &LTIStateEquation{A: A, B: B, domain: domain}, nil
}

// Propagate evaluates A*x (+ B*u if present).
func (e *LTIStateEquation) Propagate(x, u mat.Vector) (*mat.VecDense, error) {
	if x.Len() != e.NStates() {
		return nil, fmt.Errorf("model.LTIStateEquation.Propagate: state vector has length %d, want %d", x.Len(), e.NStates())
	}

	out := new(mat.Dense)
	out.Mul(e.A, x)

	if e.NInputs() > 0 {
		if u.Len() != e.NInputs() {
			return nil, fmt.Errorf("model.LTIStateEquation.Propagate: input vector has length %d, want %d", u.Len(), e.NInputs())
		}
		bu := new(mat.Dense)
		bu.Mul(e.B, u)
		out.Add(out, bu)
	}

	n := e.NStates()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, out.At(i, 0))
	}
	return v, nil
}

// NStates returns the dimension of A.
func (e *LTIStateEquation) NStates() int {
	n, _ := e.A.Dims()
	return n
}

// NInputs returns the number of columns of B, or 0 if B is nil or
// empty.
func (e *LTIStateEquation) NInputs() int {
	if e.B == nil || e.B.IsEmpty() {
		return 0
	}
	_, m := e.B.Dims()
	return m
}

// Domain returns the equation's time domain.
func (e *LTIStateEquation) Domain() TimeDomain { return e.domain }

// LTIMeasurementEquation is a linear measurement equation
// y = C*x if NInputs() == 0, else y = C*x + D*u.
type LTIMeasurementEquation struct {
	C, D *mat.Dense
}

// NewLTIMeasurementEquation builds an LTIMeasurementEquation. C must
// be a nonempty p x n matrix. D may be nil or a p x m matrix.
func NewLTIMeasurementEquation(C, D *mat.Dense) (*LTIMeasurementEquation, error) {
	rows, cols := C.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("model.NewLTIMeasurementEquation: C must be nonempty")
	}

	if D != nil {
		drows, _ := D.Dims()
		if drows != rows {
			return nil, fmt.Errorf("model.NewLTIMeasurementEquation: D has %d rows, want %d", drows, rows)
		}
	}

	return &LTIMeasurementEquation{C: C, D: D}, nil
}

// Observe evaluates C*x (+ D*u if present).
func (e *LTIMeasurementEquation) Observe(x, u mat.Vector) (*mat.VecDense, error) {
	if x.Len() != e.NStates() {
		return nil, fmt.Errorf("model.LTIMeasurementEquation.Observe: state vector has length %d, want %d", x.Len(), e.NStates())
	}

	out := new(mat.Dense)
	out.Mul(e.C, x)

	if e.NInputs() > 0 {
		if u.Len() != e.NInputs() {
			return nil, fmt.Errorf("model.LTIMeasurementEquation.Observe: input vector has length %d, want %d", u.Len(), e.NInputs())
		}
		du := new(mat.Dense)
		du.Mul(e.D, u)
		out.Add(out, du)
	}

	n := e.NOutputs()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, out.At(i, 0))
	}
	return v, nil
}

// NStates returns the number of columns of C.
func (e *LTIMeasurementEquation) NStates() int {
	_, n := e.C.Dims()
	return n
}

// NInputs returns the number of columns of D, or 0 if D is nil or
// empty.
func (e *LTIMeasurementEquation) NInputs() int {
	if e.D == nil || e.D.IsEmpty() {
		return 0
	}
	_, m := e.D.Dims()
	return m
}

// NOutputs returns the number of rows of C.
func (e *LTIMeasurementEquation) NOutputs() int {
	p, _ := e.C.Dims()
	return p
}
