package data

import (
	"context"
	"math/rand"
)

// Batch represents a collection of data points.
type Batch struct {
	X [][]float64
	Y []float64
}

// Batcher emits mini-batches of (X, y) on the returned channel, in a fresh
// random order when rng is non-nil. The final batch may be short. The
// channel is closed when all rows were sent or ctx is done.
func Batcher(ctx context.Context, X [][]float64, y []float64, batchSize int, rng *rand.Rand) <-chan Batch {
	out := make(chan Batch)
	if batchSize <= 0 {
		batchSize = len(X)
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}

	go func() {
		defer close(out)
		for start := 0; start < len(idx); start += batchSize {
			end := start + batchSize
			if end > len(idx) {
				end = len(idx)
			}
			b := Batch{X: make([][]float64, 0, end-start), Y: make([]float64, 0, end-start)}
			for _, i := range idx[start:end] {
				b.X = append(b.X, X[i])
				b.Y = append(b.Y, y[i])
			}
			select {
			case <-ctx.Done():
				return
			case out <- b:
			}
		}
	}()
	return out
}
