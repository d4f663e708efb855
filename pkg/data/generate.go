package data

import (
	"math"
	"math/rand"
)

// GenerateBlobs creates n samples in k Gaussian clusters with p features.
// It returns the samples and the cluster each one was drawn from (1-based).
func GenerateBlobs(n, p, k int, spread float64, rng *rand.Rand) (X [][]float64, labels []int) {
	centres := make([][]float64, k)
	for c := range centres {
		centre := make([]float64, p)
		for j := range centre {
			centre[j] = rng.Float64()*20 - 10
		}
		centres[c] = centre
	}
	X = make([][]float64, n)
	labels = make([]int, n)
	for i := 0; i < n; i++ {
		c := i % k
		x := make([]float64, p)
		for j := range x {
			x[j] = centres[c][j] + rng.NormFloat64()*spread
		}
		X[i] = x
		labels[i] = c + 1
	}
	return X, labels
}

// GenerateCycle builds monthly records from startYear with an ~11-year
// activity cycle plus noise, shaped like the real sunspot series.
func GenerateCycle(months, startYear int, rng *rand.Rand) []Record {
	recs := make([]Record, months)
	for i := range recs {
		year := startYear + i/12
		month := i%12 + 1
		date := float64(year) + (float64(month)-0.5)/12
		phase := 2 * math.Pi * (date - float64(startYear)) / 11
		mean := math.Max(0, 80*math.Pow(math.Sin(phase/2), 2)+rng.NormFloat64()*8)
		recs[i] = Record{
			Year:         year,
			Month:        month,
			Date:         math.Round(date*1000) / 1000,
			Mean:         math.Round(mean*10) / 10,
			StdDev:       -1,
			Observations: -1,
		}
	}
	return recs
}
