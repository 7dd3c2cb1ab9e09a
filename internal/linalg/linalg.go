// Package linalg collects the small set of dense linear-algebra
// primitives the belief and filter packages share: lower Cholesky
// factorization, LQ factorization (via QR of the transpose), and
// forward/back substitution against triangular factors. Keeping
// these in one place means the filters never materialize L*L' inside
// an inner loop and always go through a triangular solve.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cholesky returns the lower Cholesky factor L of the symmetric matrix
// p, with L*L' = p and a nonnegative diagonal. p must be positive
// definite or entirely zero (an all-zero p yields an all-zero L); any
// other matrix, including a singular nonzero positive-semidefinite
// one, makes it return an error.
func Cholesky(p mat.Symmetric) (*mat.TriDense, error) {
	n := p.SymmetricDim()

	allZero := true
	for i := 0; i < n && allZero; i++ {
		for j := 0; j <= i; j++ {
			if p.At(i, j) != 0 {
				allZero = false
				break
			}
		}
	}
	if allZero {
		return mat.NewTriDense(n, mat.Lower, nil), nil
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(p); !ok {
		return nil, fmt.Errorf("cholesky factorization failed: matrix is not positive semidefinite")
	}

	l := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(l)

	return l, nil
}

// LQ returns the lower-triangular factor L of the LQ factorization of
// m, i.e. a lower triangular matrix with nonnegative diagonal such
// that L*L' = m*m'. It is computed via the QR factorization of m',
// since if m' = Q*R then m = R'*Q' and R'*R = m*m'.
func LQ(m *mat.Dense) (*mat.TriDense, error) {
	rows, cols := m.Dims()
	if rows > cols {
		return nil, fmt.Errorf("LQ factorization requires rows <= cols, got %d x %d", rows, cols)
	}

	var mt mat.Dense
	mt.CloneFrom(m.T())

	var qr mat.QR
	qr.Factorize(&mt)

	r := mat.NewDense(cols, rows, nil)
	qr.RTo(r)

	l := mat.NewTriDense(rows, mat.Lower, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j <= i; j++ {
			l.SetTri(i, j, r.At(j, i))
		}
	}

	// RTo leaves the sign of each row of R (equivalently each column
	// of L) ambiguous up to the sign convention of the underlying QR
	// implementation; flip any negative diagonal entries so L's
	// diagonal is nonnegative, which preserves L*L'.
	for i := 0; i < rows; i++ {
		if l.At(i, i) < 0 {
			for j := i; j < rows; j++ {
				l.SetTri(j, i, -l.At(j, i))
			}
		}
	}

	return l, nil
}

// SolveLower solves L*X = b for X by forward substitution, where L is
// lower triangular. b may be a vector or a matrix with the same
// number of rows as L.
func SolveLower(l *mat.TriDense, b mat.Matrix) (*mat.Dense, error) {
	n, _ := l.Dims()
	rows, cols := b.Dims()
	if rows != n {
		return nil, fmt.Errorf("dimension mismatch: L is %d x %d, b has %d rows", n, n, rows)
	}

	x := mat.NewDense(n, cols, nil)
	for c := 0; c < cols; c++ {
		for i := 0; i < n; i++ {
			sum := b.At(i, c)
			for k := 0; k < i; k++ {
				sum -= l.At(i, k) * x.At(k, c)
			}
			diag := l.At(i, i)
			if diag == 0 {
				return nil, fmt.Errorf("singular triangular system: zero pivot at row %d", i)
			}
			x.Set(i, c, sum/diag)
		}
	}

	return x, nil
}

// SolveUpper solves U*X = b for X by back substitution, where U is
// upper triangular.
func SolveUpper(u *mat.TriDense, b mat.Matrix) (*mat.Dense, error) {
	n, _ := u.Dims()
	rows, cols := b.Dims()
	if rows != n {
		return nil, fmt.Errorf("dimension mismatch: U is %d x %d, b has %d rows", n, n, rows)
	}

	x := mat.NewDense(n, cols, nil)
	for c := 0; c < cols; c++ {
		for i := n - 1; i >= 0; i-- {
			sum := b.At(i, c)
			for k := i + 1; k < n; k++ {
				sum -= u.At(i, k) * x.At(k, c)
			}
			diag := u.At(i, i)
			if diag == 0 {
				return nil, fmt.Errorf("singular triangular system: zero pivot at row %d", i)
			}
			x.Set(i, c, sum/diag)
		}
	}

	return x, nil
}

// SolveLowerTranspose solves L'*X = b for X, where L is lower
// triangular (so L' is upper triangular).
func SolveLowerTranspose(l *mat.TriDense, b mat.Matrix) (*mat.Dense, error) {
	n, _ := l.Dims()

	// l' is upper triangular with (l')[i][j] = l[j][i]; rebuild it
	// explicitly rather than relying on a transposed view type.
	u := mat.NewTriDense(n, mat.Upper, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			u.SetTri(i, j, l.At(j, i))
		}
	}

	return SolveUpper(u, b)
}

// LogDetTri returns the log of the absolute value of the determinant
// of a triangular matrix, which for a triangular factor is just the
// sum of the logs of the absolute values of its diagonal entries.
func LogDetTri(t *mat.TriDense) float64 {
	n, _ := t.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		d := math.Abs(t.At(i, i))
		if d <= 0 {
			return math.Inf(-1)
		}
		sum += math.Log(d)
	}
	return sum
}
