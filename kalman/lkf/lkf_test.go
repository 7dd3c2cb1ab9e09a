package lkf

import (
	"testing"

	"github.com/cobaltsignal/tramkf/belief"
	"github.com/cobaltsignal/tramkf/kalman"
	"github.com/cobaltsignal/tramkf/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func scalarDense(t *testing.T, mean, variance float64) *belief.Dense {
	t.Helper()
	d, err := belief.NewDense(mat.NewVecDense(1, []float64{mean}), mat.NewSymDense(1, []float64{variance}))
	require.NoError(t, err)
	return d
}

// TestForwardStepScalar is spec scenario 1: A=1, B=1, prior N(0,1),
// u=1, Q=1 -> posterior N(1,2).
func TestForwardStepScalar(t *testing.T) {
	eq, err := model.NewLTIStateEquation(model.Discrete, mat.NewDense(1, 1, []float64{1}), mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)

	prior := scalarDense(t, 0, 1)
	noise := kalman.ProcessNoise{Cov: mat.NewSymDense(1, []float64{1})}

	f := New()
	post, err := f.ForwardStep(eq, prior, mat.NewVecDense(1, []float64{1}), noise)
	require.NoError(t, err)

	assert.InDelta(t, 1, post.Mean().AtVec(0), 1e-9)
	cov, err := post.Covariance()
	require.NoError(t, err)
	assert.InDelta(t, 2, cov.At(0, 0), 1e-9)
}

// TestDataStepScalar is spec scenario 2: C=1, D=0, prior N(0,1),
// observation N(1,1) -> posterior N(0.5,0.5).
func TestDataStepScalar(t *testing.T) {
	eq, err := model.NewLTIMeasurementEquation(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)

	prior := scalarDense(t, 0, 1)
	noise := kalman.ObservationNoise{Cov: mat.NewSymDense(1, []float64{1})}

	f := New()
	result, err := f.DataStep(eq, prior, model.EmptyInput(), mat.NewVecDense(1, []float64{1}), noise)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, result.Belief.Mean().AtVec(0), 1e-9)
	cov, err := result.Belief.Covariance()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cov.At(0, 0), 1e-9)
	assert.InDelta(t, 1, result.Innovation.AtVec(0), 1e-9)
	assert.InDelta(t, 0.5, result.Gain.At(0, 0), 1e-9)
}

func TestForwardStepDenseSqrtAgree(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	B := mat.NewDense(2, 1, []float64{0, 0})
	eq, err := model.NewLTIStateEquation(model.Discrete, A, B)
	require.NoError(t, err)

	mean := mat.NewVecDense(2, []float64{1, 2})
	cov := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	dense, err := belief.NewDense(mean, cov)
	require.NoError(t, err)
	sqrt, err := belief.NewSqrtFromDense(dense)
	require.NoError(t, err)

	Q := mat.NewSymDense(2, []float64{0.5, 0, 0, 0.25})
	noise := kalman.ProcessNoise{Cov: Q}

	f := New()
	u := mat.NewVecDense(1, []float64{0})
	postDense, err := f.ForwardStep(eq, dense, u, noise)
	require.NoError(t, err)
	postSqrt, err := f.ForwardStep(eq, sqrt, u, noise)
	require.NoError(t, err)

	covDense, err := postDense.Covariance()
	require.NoError(t, err)
	covSqrt, err := postSqrt.Covariance()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.InDelta(t, postDense.Mean().AtVec(i), postSqrt.Mean().AtVec(i), 1e-9)
		for j := 0; j < 2; j++ {
			assert.InDelta(t, covDense.At(i, j), covSqrt.At(i, j), 1e-9)
		}
	}
}

func TestDataStepDenseSqrtAgree(t *testing.T) {
	C := mat.NewDense(1, 2, []float64{1, 0})
	var D *mat.Dense
	eq, err := model.NewLTIMeasurementEquation(C, D)
	require.NoError(t, err)

	mean := mat.NewVecDense(2, []float64{1, 2})
	cov := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	dense, err := belief.NewDense(mean, cov)
	require.NoError(t, err)
	sqrt, err := belief.NewSqrtFromDense(dense)
	require.NoError(t, err)

	noise := kalman.ObservationNoise{Cov: mat.NewSymDense(1, []float64{0.5})}
	z := mat.NewVecDense(1, []float64{2.5})

	f := New()
	resDense, err := f.DataStep(eq, dense, model.EmptyInput(), z, noise)
	require.NoError(t, err)
	resSqrt, err := f.DataStep(eq, sqrt, model.EmptyInput(), z, noise)
	require.NoError(t, err)

	covDense, err := resDense.Belief.Covariance()
	require.NoError(t, err)
	covSqrt, err := resSqrt.Belief.Covariance()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.InDelta(t, resDense.Belief.Mean().AtVec(i), resSqrt.Belief.Mean().AtVec(i), 1e-9)
		for j := 0; j < 2; j++ {
			assert.InDelta(t, covDense.At(i, j), covSqrt.At(i, j), 1e-7)
		}
	}
}

// TestDataStepJosephFormIsSymmetric guards against the classic
// non-Joseph update drifting asymmetric under repeated application.
func TestDataStepJosephFormIsSymmetric(t *testing.T) {
	C := mat.NewDense(1, 2, []float64{1, 1})
	var D *mat.Dense
	eq, err := model.NewLTIMeasurementEquation(C, D)
	require.NoError(t, err)

	mean := mat.NewVecDense(2, []float64{0, 0})
	cov := mat.NewSymDense(2, []float64{10, 2, 2, 10})
	prior, err := belief.NewDense(mean, cov)
	require.NoError(t, err)

	noise := kalman.ObservationNoise{Cov: mat.NewSymDense(1, []float64{0.01})}

	f := New()
	belief_ := belief.Belief(prior)
	for i := 0; i < 20; i++ {
		res, err := f.DataStep(eq, belief_, model.EmptyInput(), mat.NewVecDense(1, []float64{1}), noise)
		require.NoError(t, err)
		belief_ = res.Belief
	}

	cov2, err := belief_.Covariance()
	require.NoError(t, err)
	assert.InDelta(t, cov2.At(0, 1), cov2.At(1, 0), 1e-9)
}

// TestDataStepZeroObservationNoiseIsIdempotent checks that a perfectly
// trusted observation collapses the corresponding marginal variance
// without blowing up numerically.
func TestDataStepZeroObservationNoiseIsIdempotent(t *testing.T) {
	eq, err := model.NewLTIMeasurementEquation(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)

	prior := scalarDense(t, 5, 3)
	noise := kalman.ZeroObservationNoise(1)

	f := New()
	res, err := f.DataStep(eq, prior, model.EmptyInput(), mat.NewVecDense(1, []float64{5}), noise)
	require.NoError(t, err)

	assert.InDelta(t, 5, res.Belief.Mean().AtVec(0), 1e-9)
	cov, err := res.Belief.Covariance()
	require.NoError(t, err)
	assert.InDelta(t, 0, cov.At(0, 0), 1e-9)
}

func TestBackwardStepRecoversPriorWhenNoSmoothing(t *testing.T) {
	A := mat.NewDense(1, 1, []float64{1})

	current := scalarDense(t, 1, 2)
	nextPrior := scalarDense(t, 1, 2)
	nextSmoothed := scalarDense(t, 1, 2)

	f := New()
	smoothed, err := f.BackwardStep(A, current, nextPrior, nextSmoothed)
	require.NoError(t, err)

	assert.InDelta(t, 1, smoothed.Mean().AtVec(0), 1e-9)
	cov, err := smoothed.Covariance()
	require.NoError(t, err)
	assert.InDelta(t, 2, cov.At(0, 0), 1e-9)
}

func TestBackwardStepPreservesSqrtRepresentation(t *testing.T) {
	A := mat.NewDense(1, 1, []float64{1})

	current, err := belief.NewSqrtFromDense(scalarDense(t, 1, 4))
	require.NoError(t, err)
	nextPrior := scalarDense(t, 1, 4)
	nextSmoothed := scalarDense(t, 2, 1)

	f := New()
	smoothed, err := f.BackwardStep(A, current, nextPrior, nextSmoothed)
	require.NoError(t, err)

	_, ok := smoothed.(*belief.Sqrt)
	assert.True(t, ok)
}
