package core

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when two stages disagree on dimensions.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrEmptyInput is returned for zero-row or zero-column inputs.
var ErrEmptyInput = errors.New("input data cannot be empty")

// ErrNonFinite is returned when an input holds NaN or an infinity.
var ErrNonFinite = errors.New("non-finite value")

// FromRows copies a nested slice into a dense matrix. Ragged rows are an error.
func FromRows(a [][]float64) (*mat.Dense, error) {
	r := len(a)
	if r == 0 || len(a[0]) == 0 {
		return nil, ErrEmptyInput
	}
	c := len(a[0])
	data := make([]float64, 0, r*c)
	for i, row := range a {
		if len(row) != c {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d columns, want %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

// ToRows copies any gonum matrix into a nested slice.
func ToRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

// Column returns a copy of column j.
func Column(m mat.Matrix, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.At(i, j)
	}
	return out
}

// Validate checks that X is non-empty, rectangular and finite.
func Validate(X [][]float64) (n, p int, err error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, 0, ErrEmptyInput
	}
	n, p = len(X), len(X[0])
	for i, row := range X {
		if len(row) != p {
			return 0, 0, errors.Wrapf(ErrShapeMismatch, "row %d has %d columns, want %d", i, len(row), p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, errors.Wrapf(ErrNonFinite, "row %d column %d is %v", i, j, v)
			}
		}
	}
	return n, p, nil
}

// SqEuclidean is the squared Euclidean distance between two equal-length vectors.
func SqEuclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
