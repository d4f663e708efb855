package core

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromRowsRoundTrip(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}}
	m, err := FromRows(rows)
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, rows, ToRows(m))

	rows[0][0] = 99
	assert.Equal(t, 1.0, m.At(0, 0), "FromRows must copy")
}

func TestFromRowsErrors(t *testing.T) {
	_, err := FromRows(nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = FromRows([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestColumnHelpers(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []float64{2, 4, 6}, Column(m, 1))

	assert.Equal(t, 25.0, SqEuclidean([]float64{0, 0}, []float64{3, 4}))
}

func TestValidate(t *testing.T) {
	n, p, err := Validate([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, p)

	_, _, err = Validate([][]float64{{0}, {math.NaN()}, {2}})
	assert.True(t, errors.Is(err, ErrNonFinite))
	_, _, err = Validate([][]float64{{0, math.Inf(-1)}})
	assert.True(t, errors.Is(err, ErrNonFinite))
}
