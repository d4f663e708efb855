package pipeline

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"mlworkshop/pkg/loader"
	"mlworkshop/pkg/model"
)

// crossValidate returns the candidate whose regressor has the lowest mean
// validation MSE over k random folds of (X, y), and that error.
func crossValidate(X [][]float64, y []float64, k int, rng *rand.Rand, candidates []float64, build func(v float64) model.Regressor) (float64, float64, error) {
	if len(candidates) == 0 {
		return 0, 0, errors.New("no candidates to cross-validate")
	}
	folds, err := loader.KFoldSplit(len(X), k, rng)
	if err != nil {
		return 0, 0, err
	}

	best, bestMSE := candidates[0], math.Inf(1)
	for _, v := range candidates {
		total := 0.0
		for f, val := range folds {
			trX, trY, vaX, vaY := holdOut(X, y, val)
			m := build(v)
			if err := m.Fit(trX, trY); err != nil {
				return 0, 0, errors.Wrapf(err, "fold %d, value %g", f, v)
			}
			pred, err := m.Predict(vaX)
			if err != nil {
				return 0, 0, errors.Wrapf(err, "fold %d, value %g", f, v)
			}
			total += model.MSE(vaY, pred)
		}
		if mse := total / float64(len(folds)); mse < bestMSE {
			best, bestMSE = v, mse
		}
	}
	return best, bestMSE, nil
}

func holdOut(X [][]float64, y []float64, val []int) (trX [][]float64, trY []float64, vaX [][]float64, vaY []float64) {
	in := make([]bool, len(X))
	for _, i := range val {
		in[i] = true
	}
	for i := range X {
		if in[i] {
			vaX, vaY = append(vaX, X[i]), append(vaY, y[i])
		} else {
			trX, trY = append(trX, X[i]), append(trY, y[i])
		}
	}
	return trX, trY, vaX, vaY
}
