package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		X[i] = []float64{x}
		y[i] = math.Sin(x)
	}
	return X, y
}

func TestSVRFitsSine(t *testing.T) {
	X, y := sineData(40)
	svr := NewSVR(RBF{Gamma: 1}, 10, 0.01)
	require.NoError(t, svr.Fit(X, y))

	pred, err := svr.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, R2(y, pred), 0.95)
	assert.NotEmpty(t, svr.SupportVectors())
	assert.LessOrEqual(t, len(svr.SupportVectors()), len(X))
}

func TestSVRWideTubeIsFlat(t *testing.T) {
	X, y := sineData(10)
	svr := NewSVR(RBF{Gamma: 1}, 1, 2)
	require.NoError(t, svr.Fit(X, y))
	assert.Empty(t, svr.SupportVectors())

	pred, err := svr.Predict(X)
	require.NoError(t, err)
	for _, v := range pred {
		assert.InDelta(t, pred[0], v, 1e-9, "no support vectors leaves only the intercept")
	}
	assert.InDelta(t, 0, pred[0], 1)
}

func TestSVRKernels(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []float64{1, 3, 5, 7, 9, 11}
	for _, k := range []Kernel{Linear{}, Polynomial{Degree: 1, Gamma: 1, Coef0: 1}} {
		svr := NewSVR(k, 100, 0.01)
		require.NoError(t, svr.Fit(X, y), "%T", k)
		pred, err := svr.Predict([][]float64{{2.5}})
		require.NoError(t, err)
		assert.InDelta(t, 6, pred[0], 0.1, "%T", k)
	}
}

type constKernel struct{}

func (constKernel) Eval(_, _ []float64) float64 { return 1 }

func TestSVRErrors(t *testing.T) {
	_, err := NewSVR(Linear{}, 1, 0.1).Predict([][]float64{{1}})
	assert.Error(t, err)
	assert.Error(t, NewSVR(Linear{}, 1, 0.1).Fit([][]float64{{1}, {2}}, []float64{1}))
	assert.Error(t, NewSVR(nil, 1, 0.1).Fit([][]float64{{1}}, []float64{1}))
	assert.Error(t, NewSVR(Linear{}, 0, 0.1).Fit([][]float64{{1}}, []float64{1}))
	assert.Error(t, NewSVR(constKernel{}, 1, 0.1).Fit([][]float64{{1}}, []float64{1}))
}

func TestKernelRidge(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}
	krr := NewKernelRidge(Linear{}, 1e-6)
	require.NoError(t, krr.Fit(X, y))

	pred, err := krr.Predict([][]float64{{5}})
	require.NoError(t, err)
	assert.InDelta(t, 10, pred[0], 1e-3)
	assert.Len(t, krr.DualCoef(), 4)

	Xs, ys := sineData(30)
	rbf := NewKernelRidge(RBF{Gamma: 1}, 1e-3)
	require.NoError(t, rbf.Fit(Xs, ys))
	ps, err := rbf.Predict(Xs)
	require.NoError(t, err)
	assert.Less(t, RMSE(ys, ps), 0.05)

	_, err = NewKernelRidge(Linear{}, 1).Predict(X)
	assert.Error(t, err)
	assert.Error(t, NewKernelRidge(Linear{}, 0).Fit(X, y))
}

func TestKernels(t *testing.T) {
	a, b := []float64{1, 2}, []float64{3, 4}
	assert.Equal(t, 11.0, Linear{}.Eval(a, b))
	assert.InDelta(t, math.Exp(-0.5*8), RBF{Gamma: 0.5}.Eval(a, b), 1e-12)
	assert.Equal(t, 144.0, Polynomial{Degree: 2, Gamma: 1, Coef0: 1}.Eval(a, b))

	G := Gram(Linear{}, [][]float64{a, b}, [][]float64{a})
	r, c := G.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 11.0, G.At(1, 0))

	X := [][]float64{{0}, {2}}
	assert.InDelta(t, 1.0, ScaleGamma(X), 1e-12)
	assert.Equal(t, 1.0, ScaleGamma([][]float64{{3}, {3}}))

	k, err := NewKernel("rbf", 0, 0, X)
	require.NoError(t, err)
	assert.Equal(t, RBF{Gamma: 1}, k)
	_, err = NewKernel("poly", 1, 0, X)
	assert.Error(t, err)
	_, err = NewKernel("sigmoid", 1, 0, X)
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	s := Score([]float64{1, 2, 3}, []float64{1, 2, 5})
	assert.InDelta(t, math.Sqrt(4.0/3), s.RMSE, 1e-12)
	assert.InDelta(t, 2.0/3, s.MAE, 1e-12)
	assert.InDelta(t, -1, s.R2, 1e-12)
}
