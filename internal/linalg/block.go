package linalg

import "gonum.org/v1/gonum/mat"

// HStack horizontally concatenates matrices sharing the same number
// of rows, left to right.
func HStack(blocks ...mat.Matrix) *mat.Dense {
	out := new(mat.Dense)
	out.CloneFrom(blocks[0])
	for _, b := range blocks[1:] {
		next := new(mat.Dense)
		next.Augment(out, b)
		out = next
	}
	return out
}

// VStack vertically concatenates matrices sharing the same number of
// columns, top to bottom.
func VStack(blocks ...mat.Matrix) *mat.Dense {
	out := new(mat.Dense)
	out.CloneFrom(blocks[0])
	for _, b := range blocks[1:] {
		next := new(mat.Dense)
		next.Stack(out, b)
		out = next
	}
	return out
}

// ZeroDense returns an r x c matrix of zeros.
func ZeroDense(r, c int) *mat.Dense {
	return mat.NewDense(r, c, nil)
}
