package data

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const sample = `1749;01;1749.042;  96.7; -1.0;   -1;1
1749;02;1749.123; 104.3; -1.0;   -1;1
1749;03;1749.204;  -1.0; -1.0;   -1;1

2024;01;2024.042; 123.0; 20.1; 1250;0
`

func TestParseSeries(t *testing.T) {
	recs, err := ParseSeries(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, 1749, recs[0].Year)
	assert.Equal(t, 2, recs[1].Month)
	assert.InDelta(t, 104.3, recs[1].Mean, 1e-12)
	assert.True(t, recs[2].Missing())
	assert.True(t, recs[0].Provisional)
	assert.False(t, recs[3].Provisional)
	assert.Equal(t, 1250, recs[3].Observations)

	ts, ys := Series(recs, 0)
	assert.Equal(t, []float64{1749.042, 1749.123, 2024.042}, ts)
	assert.Equal(t, []float64{96.7, 104.3, 123.0}, ys)

	ts, _ = Series(recs, 2000)
	assert.Equal(t, []float64{2024.042}, ts)
}

func TestParseSeriesErrors(t *testing.T) {
	tests := map[string]string{
		"columns": "1749;01;1749.042;96.7\n",
		"month":   "1749;13;1749.042;96.7;-1;-1;1\n",
		"number":  "1749;01;abc;96.7;-1;-1;1\n",
		"flag":    "1749;01;1749.042;96.7;-1;-1;x\n",
		"empty":   "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeries(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	recs, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Len(t, recs, 4)

	_, err = LoadSeries(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadNPZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.npz")
	w, err := npz.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write("X", mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})))
	require.NoError(t, w.Write("y", []float64{0, 1, 1}))
	require.NoError(t, w.Close())

	b, err := LoadNPZ(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "y"}, b.Names())

	X, err := b.Matrix("X")
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 6.0, X.At(2, 1))

	labels, err := b.Labels("y")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, labels)

	_, err = b.Matrix("Z")
	assert.True(t, errors.Is(err, ErrArrayNotFound))
}

func TestLoadNPZNarrowDtypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.npz")
	w, err := npz.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write("X32", []float32{0.5, 1.5, 2.5}))
	require.NoError(t, w.Write("y32", []int32{1, 2, 2}))
	require.NoError(t, w.Write("z", []complex128{1 + 2i}))
	require.NoError(t, w.Close())

	b, err := LoadNPZ(path)
	require.NoError(t, err, "an unusable entry must not fail the archive")
	assert.Equal(t, []string{"X32", "y32", "z"}, b.Names())

	X, err := b.Matrix("X32")
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 2.5, X.At(2, 0))

	labels, err := b.Labels("y32")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, labels)

	_, err = b.Matrix("z")
	assert.Error(t, err)
}

func TestBatcher(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 1, 2, 3, 4}

	var sizes []int
	seen := map[float64]bool{}
	for b := range Batcher(context.Background(), X, y, 2, rand.New(rand.NewSource(1))) {
		sizes = append(sizes, len(b.Y))
		for i := range b.Y {
			assert.Equal(t, b.X[i][0], b.Y[i], "rows and targets stay aligned")
			seen[b.Y[i]] = true
		}
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Len(t, seen, 5)
}

func TestBatcherCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X := make([][]float64, 100)
	y := make([]float64, 100)
	for i := range X {
		X[i] = []float64{float64(i)}
	}
	n := 0
	for range Batcher(ctx, X, y, 1, nil) {
		n++
	}
	assert.Less(t, n, 100)
}
