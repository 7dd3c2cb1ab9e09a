package linearize

import (
	"testing"

	"github.com/cobaltsignal/tramkf/model"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// quadratic implements model.MeasurementEquation for g(x) = x^2, used
// to check that Measurement recovers a sensible Jacobian for a
// genuinely nonlinear map.
type quadratic struct{}

func (quadratic) Observe(x, u mat.Vector) (*mat.VecDense, error) {
	v := x.AtVec(0)
	return mat.NewVecDense(1, []float64{v * v}), nil
}
func (quadratic) NStates() int  { return 1 }
func (quadratic) NInputs() int  { return 0 }
func (quadratic) NOutputs() int { return 1 }

func TestStateExactOnLTI(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	B := mat.NewDense(2, 1, []float64{5, 6})
	eq, _ := model.NewLTIStateEquation(model.Discrete, A, B)

	x := mat.NewVecDense(2, []float64{1, 1})
	u := mat.NewVecDense(1, []float64{1})

	Agot, Bgot, err := State(eq, x, u)
	assert.NoError(err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(A.At(i, j), Agot.At(i, j), 1e-6)
		}
	}
	for i := 0; i < 2; i++ {
		assert.InDelta(B.At(i, 0), Bgot.At(i, 0), 1e-6)
	}
}

func TestStateNoInputsYieldsEmptyB(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(1, 1, []float64{2})
	eq, _ := model.NewLTIStateEquation(model.Discrete, A, nil)

	x := mat.NewVecDense(1, []float64{1})
	_, B, err := State(eq, x, model.EmptyInput())
	assert.NoError(err)
	rows, cols := B.Dims()
	assert.Equal(1, rows)
	assert.Equal(0, cols)
}

func TestMeasurementQuadratic(t *testing.T) {
	assert := assert.New(t)

	q := quadratic{}
	x := mat.NewVecDense(1, []float64{3})
	C, D, err := Measurement(q, x, model.EmptyInput())
	assert.NoError(err)
	assert.InDelta(6.0, C.At(0, 0), 1e-4) // d/dx x^2 = 2x = 6
	rows, cols := D.Dims()
	assert.Equal(1, rows)
	assert.Equal(0, cols)
}
