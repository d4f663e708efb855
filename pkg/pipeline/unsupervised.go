package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"mlworkshop/pkg/config"
	"mlworkshop/pkg/core"
	"mlworkshop/pkg/data"
	"mlworkshop/pkg/logging"
	"mlworkshop/pkg/model"
	"mlworkshop/pkg/plotting"
	"mlworkshop/pkg/stats"
)

// Synthetic sample matrix used when no input file is configured.
const (
	syntheticSamples  = 400
	syntheticFeatures = 10
	syntheticClusters = 4
)

// UnsupervisedReport is what the PCA + clustering run prints.
type UnsupervisedReport struct {
	Source            string
	Samples, Features int

	ExplainedVarianceRatio []float64

	Method       model.Method
	Labels       []int
	ClusterSizes []int // ClusterSizes[i] counts label i+1
	Heights      []float64

	KMeansInertia   float64
	KMeansAgreement float64 // Rand index between hierarchical and k-means labels

	HasReference       bool
	ReferenceAgreement float64 // Rand index against the bundled labels

	Figures []string
}

// RunUnsupervised loads the sample matrix, projects it with PCA, builds
// the linkage tree, cuts it into flat clusters and draws the figures.
func RunUnsupervised(ctx context.Context, cfg *config.Config) (*UnsupervisedReport, error) {
	log := logging.With("unsupervised")
	uc := cfg.Unsupervised
	rng := rand.New(rand.NewSource(cfg.Seed))
	rep := &UnsupervisedReport{}

	start := time.Now()
	X, reference, err := loadSamples(uc, rng, rep)
	if err != nil {
		return nil, err
	}
	if rep.Samples, rep.Features, err = core.Validate(X); err != nil {
		return nil, errors.Wrap(err, "sample matrix")
	}
	log.Info().Str("source", rep.Source).Int("rows", rep.Samples).Int("cols", rep.Features).
		Dur("took", time.Since(start)).Msg("loaded samples")

	var steps []model.Transformer
	var scaler *stats.StandardScaler
	if uc.Scale {
		scaler = stats.NewStandardScaler()
		steps = append(steps, scaler)
	}
	pca := model.NewPCA(uc.Components)
	steps = append(steps, pca)

	scores, err := NewPipeline(steps...).FitTransform(X)
	if err != nil {
		return nil, errors.Wrap(err, "pca")
	}
	rep.ExplainedVarianceRatio = pca.ExplainedVarianceRatio()
	log.Info().Floats64("explained_ratio", rep.ExplainedVarianceRatio).Msg("fitted pca")

	features := X
	if scaler != nil {
		if features, err = scaler.Transform(X); err != nil {
			return nil, errors.Wrap(err, "scaling")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Method, err = model.ParseMethod(uc.Linkage)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	Z, err := model.Linkage(features, rep.Method)
	if err != nil {
		return nil, errors.Wrap(err, "linkage")
	}
	rep.Heights = Z.Heights()
	rep.Labels, err = model.FCluster(Z, model.Criterion(uc.Criterion), uc.Threshold)
	if err != nil {
		return nil, errors.Wrap(err, "fcluster")
	}
	rep.ClusterSizes = model.ClusterSizes(rep.Labels)[1:]
	log.Info().Str("method", string(rep.Method)).Ints("sizes", rep.ClusterSizes).
		Dur("took", time.Since(start)).Msg("clustered")

	if reference != nil {
		rep.HasReference = true
		rep.ReferenceAgreement = model.RandIndex(reference, rep.Labels)
	}

	var centres [][]float64
	if uc.KMeansK > 0 {
		km := model.NewKMeans(uc.KMeansK, uc.KMeansMaxIter, rng)
		if err := km.Fit(features); err != nil {
			return nil, errors.Wrap(err, "kmeans")
		}
		assign, err := km.Predict(features)
		if err != nil {
			return nil, errors.Wrap(err, "kmeans")
		}
		rep.KMeansInertia = km.Inertia
		rep.KMeansAgreement = model.RandIndex(rep.Labels, assign)
		if centres, err = pca.Transform(km.Centroids); err != nil {
			return nil, errors.Wrap(err, "projecting centroids")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := rep.draw(cfg.OutputDir, scores, centres, Z, uc); err != nil {
		return nil, err
	}
	log.Info().Strs("figures", rep.Figures).Msg("wrote figures")
	return rep, nil
}

func loadSamples(uc config.UnsupervisedConfig, rng *rand.Rand, rep *UnsupervisedReport) ([][]float64, []int, error) {
	if uc.Input == "" {
		rep.Source = "synthetic"
		X, labels := data.GenerateBlobs(syntheticSamples, syntheticFeatures, syntheticClusters, 2, rng)
		return X, labels, nil
	}
	rep.Source = uc.Input
	bundle, err := data.LoadNPZ(uc.Input)
	if err != nil {
		return nil, nil, err
	}
	m, err := bundle.Matrix(uc.Array)
	if err != nil {
		return nil, nil, err
	}
	var labels []int
	if uc.LabelArray != "" {
		if labels, err = bundle.Labels(uc.LabelArray); err != nil {
			return nil, nil, err
		}
		if r, _ := m.Dims(); len(labels) != r {
			return nil, nil, errors.Wrapf(core.ErrShapeMismatch, "%d labels for %d samples", len(labels), r)
		}
	}
	return core.ToRows(m), labels, nil
}

func (rep *UnsupervisedReport) draw(dir string, scores, centres [][]float64, Z *model.LinkageMatrix, uc config.UnsupervisedConfig) error {
	names := make([]string, len(rep.ExplainedVarianceRatio))
	cumulative := make([]float64, len(names))
	idx := make([]float64, len(names))
	sum := 0.0
	for i, r := range rep.ExplainedVarianceRatio {
		names[i] = fmt.Sprintf("PC%d", i+1)
		sum += r
		cumulative[i] = sum
		idx[i] = float64(i + 1)
	}

	out := func(name string) string {
		p := filepath.Join(dir, name)
		rep.Figures = append(rep.Figures, p)
		return p
	}

	if err := plotting.BarChart(out("pca_explained_variance.png"), "Explained variance ratio", "ratio", names, rep.ExplainedVarianceRatio); err != nil {
		return err
	}
	if err := plotting.Curves(out("pca_cumulative_variance.png"), "Cumulative explained variance", "components", "ratio",
		plotting.Series{Name: "cumulative", X: idx, Y: cumulative}); err != nil {
		return err
	}
	if len(names) >= 2 {
		if err := plotting.Scatter(out("pca_clusters.png"), "Clusters on the first two components", "PC1", "PC2", scores, rep.Labels, centres); err != nil {
			return err
		}
	}
	cut := 0.0
	if uc.Criterion == string(model.DistanceCut) {
		cut = uc.Threshold
	}
	if err := plotting.Dendrogram(out("dendrogram.png"), fmt.Sprintf("%s linkage", rep.Method), Z.Layout(), cut); err != nil {
		return err
	}
	return plotting.Histogram(out("merge_heights.png"), "Merge distances", "distance", rep.Heights, 30)
}

// Print writes the console summary.
func (rep *UnsupervisedReport) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Unsupervised: PCA + %s linkage ===\n", rep.Method)
	fmt.Fprintf(w, "Samples: %d x %d (%s)\n", rep.Samples, rep.Features, rep.Source)
	fmt.Fprintln(w, "Explained variance ratio:")
	for i, r := range rep.ExplainedVarianceRatio {
		fmt.Fprintf(w, "  PC%-3d %.4f\n", i+1, r)
	}
	fmt.Fprintf(w, "Clusters: %d, sizes %v\n", len(rep.ClusterSizes), rep.ClusterSizes)
	if n := len(rep.Heights); n > 0 {
		fmt.Fprintf(w, "Last merge heights: %.3f\n", rep.Heights[max(0, n-5):])
	}
	if rep.KMeansInertia > 0 {
		fmt.Fprintf(w, "K-means inertia: %.3f, agreement with hierarchical (Rand): %.3f\n", rep.KMeansInertia, rep.KMeansAgreement)
	}
	if rep.HasReference {
		fmt.Fprintf(w, "Agreement with reference labels (Rand): %.3f\n", rep.ReferenceAgreement)
	}
	for _, f := range rep.Figures {
		fmt.Fprintf(w, "Saved %s\n", f)
	}
}
