package loader

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChronoSplit(t *testing.T) {
	ts := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	ys := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tTr, tTe, yTr, yTe, err := ChronoSplit(ts, ys, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, tTr)
	assert.Equal(t, []float64{9, 10}, tTe)
	assert.Equal(t, []float64{90, 100}, yTe)
	assert.Len(t, yTr, 8)

	_, tTe, _, _, err = ChronoSplit(ts[:2], ys[:2], 0.1)
	require.NoError(t, err)
	assert.Len(t, tTe, 1, "hold-out never empty")

	_, _, _, _, err = ChronoSplit(ts, ys[:3], 0.2)
	assert.Error(t, err)
	_, _, _, _, err = ChronoSplit(ts, ys, 1.5)
	assert.Error(t, err)
}

func TestWindows(t *testing.T) {
	X, y, err := Windows([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {2, 3}, {3, 4}}, X)
	assert.Equal(t, []float64{3, 4, 5}, y)

	_, _, err = Windows([]float64{1, 2}, 2)
	assert.Error(t, err)
	_, _, err = Windows([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestKFoldSplit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	folds, err := KFoldSplit(10, 3, rng)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	seen := map[int]bool{}
	for _, f := range folds {
		assert.GreaterOrEqual(t, len(f), 3)
		for _, i := range f {
			assert.False(t, seen[i], "row %d in two folds", i)
			seen[i] = true
		}
	}
	assert.Len(t, seen, 10)

	_, err = KFoldSplit(10, 1, rng)
	assert.Error(t, err)
	_, err = KFoldSplit(2, 3, rng)
	assert.Error(t, err)
}
