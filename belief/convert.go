package belief

import "fmt"

// AsDense coerces b to its Dense representation, converting from Sqrt
// if necessary.
func AsDense(b Belief) (*Dense, error) {
	switch v := b.(type) {
	case *Dense:
		return v, nil
	case *Sqrt:
		return v.ToDense()
	default:
		return nil, fmt.Errorf("belief.AsDense: unsupported belief representation %T", b)
	}
}

// AsSqrt coerces b to its Sqrt representation, converting from Dense
// if necessary (which performs a Cholesky factorization and can
// fail).
func AsSqrt(b Belief) (*Sqrt, error) {
	switch v := b.(type) {
	case *Sqrt:
		return v, nil
	case *Dense:
		return NewSqrtFromDense(v)
	default:
		return nil, fmt.Errorf("belief.AsSqrt: unsupported belief representation %T", b)
	}
}
