package loader

import (
	"math/rand"

	"github.com/pkg/errors"
)

// ChronoSplit keeps time order: the last testRatio fraction of the series
// is held out. Both halves are guaranteed at least one point.
func ChronoSplit(t, y []float64, testRatio float64) (tTrain, tTest, yTrain, yTest []float64, err error) {
	n := len(t)
	if n != len(y) {
		return nil, nil, nil, nil, errors.Errorf("time has %d points, values %d", n, len(y))
	}
	if n < 2 {
		return nil, nil, nil, nil, errors.Errorf("need at least 2 points to split, got %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, errors.Errorf("test ratio %g outside (0,1)", testRatio)
	}
	cut := n - int(float64(n)*testRatio)
	if cut >= n {
		cut = n - 1
	}
	if cut < 1 {
		cut = 1
	}
	return t[:cut], t[cut:], y[:cut], y[cut:], nil
}

// Windows turns a series into supervised pairs: each row holds lag
// consecutive values and the target is the value right after them.
func Windows(y []float64, lag int) (X [][]float64, target []float64, err error) {
	if lag < 1 {
		return nil, nil, errors.Errorf("lag must be >= 1, got %d", lag)
	}
	if len(y) <= lag {
		return nil, nil, errors.Errorf("series of %d points is too short for lag %d", len(y), lag)
	}
	n := len(y) - lag
	X = make([][]float64, n)
	target = make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = append([]float64(nil), y[i:i+lag]...)
		target[i] = y[i+lag]
	}
	return X, target, nil
}

// KFoldSplit deals a random permutation of 0..n-1 into k validation
// folds of near-equal size.
func KFoldSplit(n, k int, rng *rand.Rand) ([][]int, error) {
	if k < 2 || k > n {
		return nil, errors.Errorf("cannot split %d rows into %d folds", n, k)
	}
	indices := rng.Perm(n)
	folds := make([][]int, k)
	for i := 0; i < n; i++ {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds, nil
}
