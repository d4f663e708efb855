package stats

import (
	"math"

	"github.com/pkg/errors"
)

// ErrNotFitted is returned when a transform is used before Fit.
var ErrNotFitted = errors.New("scaler is not fitted")

// StandardScaler standardizes each column to zero mean and unit
// (population) variance. Constant columns get a scale of 1.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return errors.New("input data cannot be empty")
	}
	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if len(X[i]) != c {
				return errors.Errorf("row %d has %d columns, want %d", i, len(X[i]), c)
			}
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= float64(r)
		v := 0.0
		for i := 0; i < r; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		s.Std[j] = math.Sqrt(v / float64(r))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	return s.apply(X, func(v, m, sd float64) float64 { return (v - m) / sd })
}

// InverseTransform maps standardized values back to the original units.
func (s *StandardScaler) InverseTransform(X [][]float64) ([][]float64, error) {
	return s.apply(X, func(v, m, sd float64) float64 { return v*sd + m })
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) apply(X [][]float64, f func(v, m, sd float64) float64) ([][]float64, error) {
	if !s.fit {
		return nil, ErrNotFitted
	}
	c := len(s.Mean)
	Y := make([][]float64, len(X))
	for i, x := range X {
		if len(x) != c {
			return nil, errors.Errorf("row %d has %d columns, scaler was fitted on %d", i, len(x), c)
		}
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = f(x[j], s.Mean[j], s.Std[j])
		}
		Y[i] = row
	}
	return Y, nil
}

// Column wraps a 1-D series as an n x 1 table for the scaler.
func Column(x []float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, v := range x {
		out[i] = []float64{v}
	}
	return out
}

// Flatten is the inverse of Column, keeping the first value of every row.
func Flatten(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = row[0]
	}
	return out
}
