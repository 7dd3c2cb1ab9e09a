// Package model defines the state-space model algebra: callable state
// and measurement equations, their linear time-invariant (LTI)
// specializations, and composite measurements that concatenate
// several sub-measurements sharing the same state and input space.
package model

import "gonum.org/v1/gonum/mat"

// TimeDomain tags a StateEquation as operating on continuous or
// discrete time, so that a continuous equation cannot be handed to a
// filter or discretizer expecting a discrete one (and vice versa)
// without going through Discretize explicitly.
type TimeDomain int

const (
	// Continuous marks an equation whose Propagate method returns a
	// state derivative dx/dt.
	Continuous TimeDomain = iota
	// Discrete marks an equation whose Propagate method returns the
	// next state x[k+1].
	Discrete
)

func (t TimeDomain) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	default:
		return "unknown"
	}
}

// StateEquation is a callable f(x, u) -> x' (a derivative if its
// Domain is Continuous, a next state if Discrete). The length of the
// returned vector always equals NStates. NInputs may be 0, in which
// case u is ignored and may be an empty vector.
type StateEquation interface {
	// Propagate evaluates f(x, u).
	Propagate(x, u mat.Vector) (*mat.VecDense, error)
	// NStates returns the dimension of the state vector.
	NStates() int
	// NInputs returns the dimension of the input vector, or 0.
	NInputs() int
	// Domain reports whether this equation is continuous or discrete.
	Domain() TimeDomain
}

// MeasurementEquation is a callable g(x, u) -> y.
type MeasurementEquation interface {
	// Observe evaluates g(x, u).
	Observe(x, u mat.Vector) (*mat.VecDense, error)
	// NStates returns the dimension of the state vector.
	NStates() int
	// NInputs returns the dimension of the input vector, or 0.
	NInputs() int
	// NOutputs returns the dimension of the output vector.
	NOutputs() int
}

// EmptyInput returns the canonical zero-length input vector used by
// equations with NInputs() == 0.
func EmptyInput() *mat.VecDense {
	return &mat.VecDense{}
}
