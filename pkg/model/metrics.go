package model

import "math"

func MSE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

func MAE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / n
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Scores bundles the regression metrics reported per model.
type Scores struct {
	RMSE, MAE, R2 float64
}

func Score(yTrue, yPred []float64) Scores {
	return Scores{RMSE: RMSE(yTrue, yPred), MAE: MAE(yTrue, yPred), R2: R2(yTrue, yPred)}
}

// RandIndex is the fraction of observation pairs on which two labelings
// agree (both together or both apart). Label values need not match.
func RandIndex(a, b []int) float64 {
	n := len(a)
	if n < 2 || len(b) != n {
		return 0
	}
	agree, pairs := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (a[i] == a[j]) == (b[i] == b[j]) {
				agree++
			}
			pairs++
		}
	}
	return float64(agree) / float64(pairs)
}
