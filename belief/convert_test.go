package belief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestAsDenseAsSqrt(t *testing.T) {
	assert := assert.New(t)

	mean := mat.NewVecDense(1, []float64{1})
	cov := mat.NewSymDense(1, []float64{4})
	d, _ := NewDense(mean, cov)

	s, err := AsSqrt(d)
	assert.NoError(err)
	assert.InDelta(2.0, s.Factor().At(0, 0), 1e-9)

	back, err := AsDense(s)
	assert.NoError(err)
	assert.Equal(1.0, back.Mean().AtVec(0))

	same, err := AsDense(d)
	assert.NoError(err)
	assert.Same(d, same)
}
