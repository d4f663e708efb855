package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Kernel is a similarity function standing in for an inner product in
// an implicit feature space.
type Kernel interface {
	Eval(a, b []float64) float64
}

// RBF is exp(-Gamma * |a-b|^2).
type RBF struct{ Gamma float64 }

func (k RBF) Eval(a, b []float64) float64 {
	return math.Exp(-k.Gamma * sqDist(a, b))
}

// Linear is the plain dot product.
type Linear struct{}

func (Linear) Eval(a, b []float64) float64 { return floats.Dot(a, b) }

// Polynomial is (Gamma * <a,b> + Coef0)^Degree.
type Polynomial struct {
	Degree int
	Gamma  float64
	Coef0  float64
}

func (k Polynomial) Eval(a, b []float64) float64 {
	return math.Pow(k.Gamma*floats.Dot(a, b)+k.Coef0, float64(k.Degree))
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// ScaleGamma is the "scale" heuristic 1 / (p * Var(X)) over every entry
// of X; it falls back to 1 for constant input.
func ScaleGamma(X [][]float64) float64 {
	if len(X) == 0 || len(X[0]) == 0 {
		return 1
	}
	flat := make([]float64, 0, len(X)*len(X[0]))
	for _, row := range X {
		flat = append(flat, row...)
	}
	v := stat.PopVariance(flat, nil)
	if v == 0 {
		return 1
	}
	return 1 / (float64(len(X[0])) * v)
}

// NewKernel builds a kernel by name. gamma <= 0 is resolved from X with
// ScaleGamma.
func NewKernel(name string, gamma float64, degree int, X [][]float64) (Kernel, error) {
	if gamma <= 0 {
		gamma = ScaleGamma(X)
	}
	switch name {
	case "rbf":
		return RBF{Gamma: gamma}, nil
	case "linear":
		return Linear{}, nil
	case "poly":
		if degree < 1 {
			return nil, errors.Errorf("polynomial degree must be >= 1, got %d", degree)
		}
		return Polynomial{Degree: degree, Gamma: gamma, Coef0: 1}, nil
	}
	return nil, errors.Errorf("unknown kernel %q", name)
}

// Gram returns the len(A) x len(B) matrix of k(A[i], B[j]).
func Gram(k Kernel, A, B [][]float64) *mat.Dense {
	g := mat.NewDense(len(A), len(B), nil)
	for i, a := range A {
		for j, b := range B {
			g.Set(i, j, k.Eval(a, b))
		}
	}
	return g
}

// symGram is Gram(k, A, A) exploiting symmetry.
func symGram(k Kernel, A [][]float64) *mat.SymDense {
	n := len(A)
	g := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			g.SetSym(i, j, k.Eval(A[i], A[j]))
		}
	}
	return g
}
