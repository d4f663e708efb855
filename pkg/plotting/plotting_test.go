package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlworkshop/pkg/model"
)

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestFigures(t *testing.T) {
	dir := t.TempDir()

	bar := filepath.Join(dir, "bar.png")
	require.NoError(t, BarChart(bar, "explained", "ratio", []string{"PC1", "PC2"}, []float64{0.8, 0.2}))
	requireFile(t, bar)
	assert.Error(t, BarChart(bar, "bad", "", []string{"a"}, nil))

	sc := filepath.Join(dir, "nested", "scatter.svg")
	X := [][]float64{{0, 0}, {1, 1}, {5, 5}, {6, 5}}
	require.NoError(t, Scatter(sc, "pcs", "PC1", "PC2", X, []int{1, 1, 2, 2}, [][]float64{{0.5, 0.5}, {5.5, 5}}))
	requireFile(t, sc)
	assert.Error(t, Scatter(sc, "bad", "", "", X, []int{1}, nil))

	hist := filepath.Join(dir, "hist.png")
	require.NoError(t, Histogram(hist, "h", "x", []float64{1, 2, 2, 3, 3, 3}, 3))
	requireFile(t, hist)
	assert.Error(t, Histogram(hist, "h", "x", nil, 3))

	curves := filepath.Join(dir, "curves.png")
	require.NoError(t, Curves(curves, "c", "t", "y",
		Series{Name: "observed", X: []float64{1, 2, 3}, Y: []float64{1, 4, 9}},
		Series{Name: "fit", X: []float64{1, 2, 3}, Y: []float64{1, 4, 8}},
	))
	requireFile(t, curves)
	assert.Error(t, Curves(curves, "c", "", "", Series{Name: "bad", X: []float64{1}}))

	loss := filepath.Join(dir, "loss.png")
	require.NoError(t, LossCurve(loss, []float64{1, 0.5, 0.25}))
	requireFile(t, loss)
}

func TestDendrogramFigure(t *testing.T) {
	Z, err := model.Linkage([][]float64{{0}, {1}, {5}, {6}, {20}}, model.Ward)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dendrogram.png")
	require.NoError(t, Dendrogram(path, "ward", Z.Layout(), 3))
	requireFile(t, path)

	assert.Error(t, Dendrogram(path, "empty", &model.Dendrogram{}, 0))
}
