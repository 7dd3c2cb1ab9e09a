package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CompositeMeasurement concatenates the outputs of a sequence of
// sub-measurements that all share the same NStates and NInputs. Its
// own NOutputs is the sum of its sub-measurements'.
type CompositeMeasurement struct {
	subs []MeasurementEquation
}

// NewCompositeMeasurement builds a CompositeMeasurement from a
// nonempty list of sub-measurements. It returns an error if the list
// is empty or if the sub-measurements disagree on NStates or NInputs.
func NewCompositeMeasurement(subs ...MeasurementEquation) (*CompositeMeasurement, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("model.NewCompositeMeasurement: at least one sub-measurement is required")
	}

	nx, nu := subs[0].NStates(), subs[0].NInputs()
	for i, s := range subs {
		if s.NStates() != nx {
			return nil, fmt.Errorf("model.NewCompositeMeasurement: sub-measurement %d has NStates %d, want %d", i, s.NStates(), nx)
		}
		if s.NInputs() != nu {
			return nil, fmt.Errorf("model.NewCompositeMeasurement: sub-measurement %d has NInputs %d, want %d", i, s.NInputs(), nu)
		}
	}

	return &CompositeMeasurement{subs: subs}, nil
}

// Observe evaluates each sub-measurement in order and concatenates
// their outputs.
func (c *CompositeMeasurement) Observe(x, u mat.Vector) (*mat.VecDense, error) {
	out := mat.NewVecDense(c.NOutputs(), nil)

	offset := 0
	for i, s := range c.subs {
		y, err := s.Observe(x, u)
		if err != nil {
			return nil, fmt.Errorf("model.CompositeMeasurement.Observe: sub-measurement %d: %w", i, err)
		}
		for j := 0; j < y.Len(); j++ {
			out.SetVec(offset+j, y.AtVec(j))
		}
		offset += y.Len()
	}

	return out, nil
}

// NStates returns the shared state dimension of the sub-measurements.
func (c *CompositeMeasurement) NStates() int { return c.subs[0].NStates() }

// NInputs returns the shared input dimension of the sub-measurements.
func (c *CompositeMeasurement) NInputs() int { return c.subs[0].NInputs() }

// NOutputs returns the sum of the sub-measurements' output
// dimensions.
func (c *CompositeMeasurement) NOutputs() int {
	total := 0
	for _, s := range c.subs {
		total += s.NOutputs()
	}
	return total
}
