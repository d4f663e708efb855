package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"mlworkshop/pkg/core"
)

// PCA projects samples onto their top-K principal axes. The
// decomposition itself is gonum's SVD-based stat.PC.
type PCA struct {
	K          int // 0 keeps every component
	Means      []float64
	Components [][]float64 // K x p, each a unit vector
	Explained  []float64   // variance along each component (n-1 denominator)
	total      float64
}

// NewPCA creates and returns a new PCA model.
func NewPCA(k int) *PCA {
	return &PCA{K: k}
}

// Fit computes the principal axes of X.
func (pca *PCA) Fit(X [][]float64) error {
	n, p, err := core.Validate(X)
	if err != nil {
		return err
	}
	if n < 2 {
		return errors.New("pca needs at least 2 samples")
	}
	maxK := min(n, p)
	k := pca.K
	if k <= 0 {
		k = maxK
	}
	if k > maxK {
		return errors.Errorf("cannot keep %d components from a %dx%d matrix", k, n, p)
	}

	m, _ := core.FromRows(X)
	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return errors.New("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	pca.Means = make([]float64, p)
	for j := 0; j < p; j++ {
		pca.Means[j] = stat.Mean(core.Column(m, j), nil)
	}
	pca.total = 0
	for _, v := range vars {
		pca.total += v
	}
	pca.Components = make([][]float64, k)
	pca.Explained = make([]float64, k)
	for c := 0; c < k; c++ {
		pca.Components[c] = core.Column(&vecs, c)
		pca.Explained[c] = vars[c]
	}
	return nil
}

// ExplainedVarianceRatio is each kept component's share of the total variance.
func (pca *PCA) ExplainedVarianceRatio() []float64 {
	out := make([]float64, len(pca.Explained))
	if pca.total == 0 {
		return out
	}
	for i, v := range pca.Explained {
		out[i] = v / pca.total
	}
	return out
}

// Transform projects the input data onto the principal components.
func (pca *PCA) Transform(X [][]float64) ([][]float64, error) {
	if pca.Components == nil {
		return nil, errors.New("pca is not fitted")
	}
	n, d, err := core.Validate(X)
	if err != nil {
		return nil, err
	}
	if d != len(pca.Means) {
		return nil, errors.Wrapf(core.ErrShapeMismatch, "got %d features, fitted on %d", d, len(pca.Means))
	}

	centred := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centred.Set(i, j, X[i][j]-pca.Means[j])
		}
	}
	k := len(pca.Components)
	axes := mat.NewDense(d, k, nil)
	for c, v := range pca.Components {
		axes.SetCol(c, v)
	}
	var scores mat.Dense
	scores.Mul(centred, axes)
	return core.ToRows(&scores), nil
}

// FitTransform fits on X and returns its projection.
func (pca *PCA) FitTransform(X [][]float64) ([][]float64, error) {
	if err := pca.Fit(X); err != nil {
		return nil, err
	}
	return pca.Transform(X)
}
