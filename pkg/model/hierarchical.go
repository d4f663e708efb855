package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"mlworkshop/pkg/core"
)

// Method selects how the distance between two clusters is derived from
// the distances of their members.
type Method string

const (
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
	Ward     Method = "ward"
)

// ParseMethod validates a linkage method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Single, Complete, Average, Ward:
		return m, nil
	}
	return "", errors.Errorf("unknown linkage method %q", s)
}

// Merge is one row of a linkage matrix. Leaves are numbered 0..n-1 and
// the cluster created by merge i gets id n+i.
type Merge struct {
	A, B     int
	Distance float64
	Size     int
}

// LinkageMatrix records the n-1 merges of an agglomerative clustering
// over n observations, in merge order.
type LinkageMatrix struct {
	N      int
	Merges []Merge
}

// Linkage runs bottom-up agglomerative clustering with Euclidean
// distances. Cluster distances are updated with the Lance-Williams
// recurrence, so the merge heights are non-decreasing for every method
// offered here.
func Linkage(X [][]float64, method Method) (*LinkageMatrix, error) {
	n, _, err := core.Validate(X)
	if err != nil {
		return nil, errors.Wrap(err, "linkage")
	}
	if n < 2 {
		return nil, errors.New("linkage needs at least 2 observations")
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := math.Sqrt(core.SqEuclidean(X[i], X[j]))
			d[i][j], d[j][i] = v, v
		}
	}

	// slot i holds the cluster currently stored in row i of d.
	id := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range id {
		id[i], size[i], active[i] = i, 1, true
	}

	Z := &LinkageMatrix{N: n, Merges: make([]Merge, 0, n-1)}
	for step := 0; step < n-1; step++ {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}

		if bi < 0 {
			return nil, errors.Errorf("no finite distance left at merge %d", step)
		}

		a, b := id[bi], id[bj]
		if a > b {
			a, b = b, a
		}
		ni, nj := size[bi], size[bj]
		Z.Merges = append(Z.Merges, Merge{A: a, B: b, Distance: best, Size: ni + nj})

		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			v := update(method, d[k][bi], d[k][bj], best, ni, nj, size[k])
			d[k][bi], d[bi][k] = v, v
		}
		active[bj] = false
		id[bi] = n + step
		size[bi] = ni + nj
	}
	return Z, nil
}

// update is the Lance-Williams step for the distance between cluster k
// and the union of clusters i and j.
func update(m Method, dki, dkj, dij float64, ni, nj, nk int) float64 {
	switch m {
	case Single:
		return math.Min(dki, dkj)
	case Complete:
		return math.Max(dki, dkj)
	case Average:
		return (float64(ni)*dki + float64(nj)*dkj) / float64(ni+nj)
	default: // Ward
		fi, fj, fk := float64(ni), float64(nj), float64(nk)
		v := ((fi+fk)*dki*dki + (fj+fk)*dkj*dkj - fk*dij*dij) / (fi + fj + fk)
		return math.Sqrt(math.Max(v, 0))
	}
}

// Heights returns the merge distances in merge order.
func (z *LinkageMatrix) Heights() []float64 {
	out := make([]float64, len(z.Merges))
	for i, m := range z.Merges {
		out[i] = m.Distance
	}
	return out
}

// Criterion selects how FCluster cuts the tree.
type Criterion string

const (
	// MaxClust forms at most t clusters.
	MaxClust Criterion = "maxclust"
	// DistanceCut merges everything joined at a height <= t.
	DistanceCut Criterion = "distance"
)

// FCluster cuts the tree into flat clusters and returns a label in 1..k
// for every observation. Labels are numbered in order of first appearance
// along the observations.
func FCluster(z *LinkageMatrix, criterion Criterion, t float64) ([]int, error) {
	n := z.N
	var apply int
	switch criterion {
	case MaxClust:
		if t < 1 {
			return nil, errors.Errorf("maxclust needs t >= 1, got %g", t)
		}
		k := int(t)
		if k > n {
			k = n
		}
		apply = n - k
	case DistanceCut:
		if t < 0 {
			return nil, errors.Errorf("distance threshold must be >= 0, got %g", t)
		}
		apply = sort.Search(len(z.Merges), func(i int) bool { return z.Merges[i].Distance > t })
	default:
		return nil, errors.Errorf("unknown criterion %q", criterion)
	}

	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for i := 0; i < apply; i++ {
		m := z.Merges[i]
		c := n + i
		parent[find(m.A)] = c
		parent[find(m.B)] = c
	}

	labels := make([]int, n)
	next := map[int]int{}
	for i := 0; i < n; i++ {
		root := find(i)
		l, ok := next[root]
		if !ok {
			l = len(next) + 1
			next[root] = l
		}
		labels[i] = l
	}
	return labels, nil
}

// ClusterSizes counts members per label; index 0 is unused for 1-based labels.
func ClusterSizes(labels []int) []int {
	maxL := 0
	for _, l := range labels {
		if l > maxL {
			maxL = l
		}
	}
	sizes := make([]int, maxL+1)
	for _, l := range labels {
		sizes[l]++
	}
	return sizes
}
