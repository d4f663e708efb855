package model

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"mlworkshop/pkg/core"
)

// KMeans partitions data points into K clusters. It serves as the flat
// baseline the hierarchical clustering is compared against.
type KMeans struct {
	K         int
	MaxIter   int
	Centroids [][]float64
	Inertia   float64 // Sum of squared distances to nearest centroid
	rng       *rand.Rand
}

// NewKMeans creates a KMeans model; rng drives the k-means++ seeding.
func NewKMeans(k, maxIter int, rng *rand.Rand) *KMeans {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &KMeans{K: k, MaxIter: maxIter, rng: rng}
}

// Fit runs Lloyd iterations until assignments stop changing or MaxIter.
func (m *KMeans) Fit(X [][]float64) error {
	n, p, err := core.Validate(X)
	if err != nil {
		return err
	}
	if m.K < 1 || n < m.K {
		return errors.Errorf("k=%d is invalid for %d samples", m.K, n)
	}

	m.initCenters(X)

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	for it := 0; it < m.MaxIter; it++ {
		changed := make([]bool, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * rowsPerWorker
			end := min(start+rowsPerWorker, n)
			if start >= end {
				continue
			}
			wg.Add(1)
			go func(w, start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					best := m.nearest(X[i])
					if assign[i] != best {
						changed[w] = true
						assign[i] = best
					}
				}
			}(w, start, end)
		}
		wg.Wait()

		sums := make([][]float64, m.K)
		counts := make([]int, m.K)
		for k := range sums {
			sums[k] = make([]float64, p)
		}
		for i, k := range assign {
			counts[k]++
			for j := 0; j < p; j++ {
				sums[k][j] += X[i][j]
			}
		}
		for k := 0; k < m.K; k++ {
			if counts[k] == 0 {
				continue // empty cluster keeps its centroid
			}
			for j := 0; j < p; j++ {
				m.Centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}

		moved := false
		for _, c := range changed {
			moved = moved || c
		}
		if !moved {
			break
		}
	}

	m.Inertia = 0
	for i, k := range assign {
		m.Inertia += core.SqEuclidean(X[i], m.Centroids[k])
	}
	return nil
}

// Predict assigns each row to its nearest centroid.
func (m *KMeans) Predict(X [][]float64) ([]int, error) {
	if m.Centroids == nil {
		return nil, errors.New("kmeans is not fitted")
	}
	_, p, err := core.Validate(X)
	if err != nil {
		return nil, err
	}
	if p != len(m.Centroids[0]) {
		return nil, errors.Wrapf(core.ErrShapeMismatch, "got %d features, fitted on %d", p, len(m.Centroids[0]))
	}
	out := make([]int, len(X))
	for i, x := range X {
		out[i] = m.nearest(x)
	}
	return out, nil
}

func (m *KMeans) nearest(x []float64) int {
	best, bestD := 0, math.MaxFloat64
	for k, c := range m.Centroids {
		if d := core.SqEuclidean(x, c); d < bestD {
			best, bestD = k, d
		}
	}
	return best
}

// initCenters applies k-means++ seeding.
func (m *KMeans) initCenters(X [][]float64) {
	n := len(X)
	m.Centroids = make([][]float64, 0, m.K)
	m.Centroids = append(m.Centroids, append([]float64(nil), X[m.rng.Intn(n)]...))

	distSq := make([]float64, n)
	for len(m.Centroids) < m.K {
		total := 0.0
		for i, x := range X {
			distSq[i] = core.SqEuclidean(x, m.Centroids[m.nearest(x)])
			total += distSq[i]
		}
		pick := n - 1
		if total > 0 {
			r := m.rng.Float64() * total
			cumulative := 0.0
			for i, d2 := range distSq {
				cumulative += d2
				if cumulative >= r {
					pick = i
					break
				}
			}
		} else {
			pick = m.rng.Intn(n)
		}
		m.Centroids = append(m.Centroids, append([]float64(nil), X[pick]...))
	}
}
