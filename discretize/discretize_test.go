package discretize

import (
	"testing"

	"github.com/cobaltsignal/tramkf/model"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestEulerStepLinear(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(1, 1, []float64{2})
	eq, _ := model.NewLTIStateEquation(model.Continuous, A, nil)

	x := mat.NewVecDense(1, []float64{1})
	xNext, err := EulerStep(eq, x, model.EmptyInput(), 0.1)
	assert.NoError(err)
	assert.InDelta(1.2, xNext.AtVec(0), 1e-9) // x + A*x*dt = 1 + 2*1*0.1
}

func TestRK4StepExactOnAffine(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(1, 1, []float64{1})
	B := mat.NewDense(1, 1, []float64{1})
	eq, _ := model.NewLTIStateEquation(model.Continuous, A, B)

	x := mat.NewVecDense(1, []float64{1})
	u := mat.NewVecDense(1, []float64{0})
	dt := 0.01

	xNext, err := RK4Step(eq, x, u, dt)
	assert.NoError(err)
	// analytic solution of x' = x is x(t) = x0*e^t
	want := 1 * expApprox(dt)
	assert.InDelta(want, xNext.AtVec(0), 1e-6)
}

func TestRK4StepZeroAIsExact(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(1, 1, []float64{0})
	B := mat.NewDense(1, 1, []float64{1})
	eq, _ := model.NewLTIStateEquation(model.Continuous, A, B)

	x := mat.NewVecDense(1, []float64{1})
	u := mat.NewVecDense(1, []float64{3})

	xNext, err := RK4Step(eq, x, u, 0.5)
	assert.NoError(err)
	assert.InDelta(1+3*0.5, xNext.AtVec(0), 1e-12)
}

func TestDiscretizeRejectsBadInputs(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(1, 1, []float64{1})
	cont, _ := model.NewLTIStateEquation(model.Continuous, A, nil)
	disc, _ := model.NewLTIStateEquation(model.Discrete, A, nil)

	_, err := Discretize(disc, RK4, 0.1, 1)
	assert.Error(err)

	_, err = Discretize(cont, RK4, 0, 1)
	assert.Error(err)

	_, err = Discretize(cont, RK4, 0.1, 0)
	assert.Error(err)

	_, err = Discretize(cont, RK4, 0.1, 1)
	assert.NoError(err)
}

func TestDiscretizedStateEquationPreservesDims(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	B := mat.NewDense(2, 1, []float64{1, 1})
	cont, _ := model.NewLTIStateEquation(model.Continuous, A, B)

	d, err := Discretize(cont, RK4, 0.1, 4)
	assert.NoError(err)
	assert.Equal(2, d.NStates())
	assert.Equal(1, d.NInputs())
	assert.Equal(model.Discrete, d.Domain())

	x := mat.NewVecDense(2, []float64{0, 0})
	u := mat.NewVecDense(1, []float64{1})
	xNext, err := d.Propagate(x, u)
	assert.NoError(err)
	assert.Equal(2, xNext.Len())
}

func expApprox(t float64) float64 {
	// small helper to avoid importing math in the test for a single
	// call; exact value isn't needed, RK4's local error at this dt is
	// far below the 1e-6 tolerance used above.
	term := 1.0
	sum := 1.0
	for n := 1; n <= 10; n++ {
		term *= t / float64(n)
		sum += term
	}
	return sum
}
