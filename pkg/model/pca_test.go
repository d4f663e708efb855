package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlworkshop/pkg/stats"
)

func TestPCALine(t *testing.T) {
	X := [][]float64{{1, 2}, {2, 4.1}, {3, 5.9}, {4, 8}, {5, 10.05}}
	pca := NewPCA(0)
	scores, err := pca.FitTransform(X)
	require.NoError(t, err)

	require.Len(t, pca.Components, 2)
	ratio := pca.ExplainedVarianceRatio()
	assert.Greater(t, ratio[0], 0.99)
	assert.InDelta(t, 1, ratio[0]+ratio[1], 1e-9)

	// Axis sign is arbitrary.
	c := pca.Components[0]
	assert.InDelta(t, 1/math.Sqrt(5), math.Abs(c[0]), 1e-2)
	assert.InDelta(t, 2/math.Sqrt(5), math.Abs(c[1]), 1e-2)

	// Total variance is preserved across all components.
	total := 0.0
	for j := 0; j < 2; j++ {
		col := []float64{X[0][j], X[1][j], X[2][j], X[3][j], X[4][j]}
		total += stats.Variance(col) * 5 / 4
	}
	assert.InDelta(t, total, pca.Explained[0]+pca.Explained[1], 1e-9)

	require.Len(t, scores, 5)
	require.Len(t, scores[0], 2)
	pc1 := []float64{scores[0][0], scores[1][0], scores[2][0], scores[3][0], scores[4][0]}
	assert.InDelta(t, 0, stats.Mean(pc1), 1e-9)
}

func TestPCAErrors(t *testing.T) {
	_, err := NewPCA(3).FitTransform([][]float64{{1, 2}, {3, 4}, {5, 7}})
	assert.Error(t, err, "more components than features")

	_, err = NewPCA(1).Transform([][]float64{{1, 2}})
	assert.Error(t, err, "not fitted")

	pca := NewPCA(1)
	require.NoError(t, pca.Fit([][]float64{{1, 2}, {3, 4}, {5, 7}}))
	_, err = pca.Transform([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}
