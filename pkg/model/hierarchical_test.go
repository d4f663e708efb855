package model

import (
	"math"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlworkshop/pkg/core"
)

var line = [][]float64{{0}, {1}, {5}, {6}, {20}}

func TestLinkageSingle(t *testing.T) {
	Z, err := Linkage(line, Single)
	require.NoError(t, err)
	assert.Equal(t, []Merge{
		{A: 0, B: 1, Distance: 1, Size: 2},
		{A: 2, B: 3, Distance: 1, Size: 2},
		{A: 5, B: 6, Distance: 4, Size: 4},
		{A: 4, B: 7, Distance: 14, Size: 5},
	}, Z.Merges)
}

func TestLinkageMethods(t *testing.T) {
	tests := []struct {
		method  Method
		heights []float64
	}{
		{Complete, []float64{1, 1, 6, 20}},
		{Average, []float64{1, 1, 5, 17}},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			Z, err := Linkage(line, tt.method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.heights, Z.Heights(), 1e-9)
		})
	}

	Z, err := Linkage(line, Ward)
	require.NoError(t, err)
	h := Z.Heights()
	assert.True(t, sort.Float64sAreSorted(h), "ward heights %v", h)
	assert.InDeltaSlice(t, []float64{1, 1, 5 * math.Sqrt2, 17 * math.Sqrt(1.6)}, h, 1e-9)

	_, err = Linkage(line, Method("centroid"))
	assert.Error(t, err)
	_, err = Linkage(line[:1], Single)
	assert.Error(t, err)
}

func TestLinkageRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Linkage([][]float64{{0}, {v}, {2}}, Single)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrNonFinite), "%v", err)
	}
}

func TestFCluster(t *testing.T) {
	Z, err := Linkage(line, Single)
	require.NoError(t, err)

	labels, err := FCluster(Z, MaxClust, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 2}, labels)

	labels, err = FCluster(Z, DistanceCut, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 3}, labels)

	labels, err = FCluster(Z, MaxClust, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, labels)

	labels, err = FCluster(Z, DistanceCut, 100)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, labels)
	assert.Equal(t, []int{0, 5}, ClusterSizes(labels))

	_, err = FCluster(Z, MaxClust, 0)
	assert.Error(t, err)

	W, err := Linkage(line, Ward)
	require.NoError(t, err)
	labels, err = FCluster(W, DistanceCut, 7.5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 2}, labels)
	labels, err = FCluster(W, DistanceCut, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 3}, labels)
	_, err = FCluster(Z, Criterion("inconsistent"), 1)
	assert.Error(t, err)
}

func TestDendrogramLayout(t *testing.T) {
	Z, err := Linkage(line, Single)
	require.NoError(t, err)

	dg := Z.Layout()
	assert.Equal(t, []int{4, 0, 1, 2, 3}, dg.Leaves)
	require.Len(t, dg.Links, 4)

	root := dg.Links[len(dg.Links)-1]
	assert.Equal(t, 3, root.Merge)
	assert.Equal(t, 14.0, root.Height)
	assert.Equal(t, [4]float64{5, 5, 30, 30}, root.X)
	assert.Equal(t, [4]float64{0, 14, 14, 4}, root.Y)
}

func TestKMeansAndRandIndex(t *testing.T) {
	X := [][]float64{{0, 0}, {0.1, 0.2}, {0.2, 0.1}, {10, 10}, {10.1, 9.9}, {9.8, 10.2}}
	truth := []int{1, 1, 1, 2, 2, 2}

	km := NewKMeans(2, 50, nil)
	require.NoError(t, km.Fit(X))
	pred, err := km.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, RandIndex(truth, pred))
	assert.Less(t, km.Inertia, 1.0)

	assert.Error(t, NewKMeans(7, 10, nil).Fit(X))
	_, err = km.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)

	assert.Equal(t, 1.0, RandIndex([]int{1, 1, 2, 2}, []int{2, 2, 1, 1}))
	assert.Equal(t, 0.0, RandIndex([]int{1, 1, 1, 1}, []int{1, 2, 3, 4}))
}
