package config

import "github.com/pkg/errors"

var (
	linkages   = map[string]bool{"single": true, "complete": true, "average": true, "ward": true}
	criteria   = map[string]bool{"maxclust": true, "distance": true}
	kernels    = map[string]bool{"rbf": true, "linear": true, "poly": true}
	optimizers = map[string]bool{"adam": true, "sgd": true}
)

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if err := c.Unsupervised.Validate(); err != nil {
		return errors.Wrap(err, "unsupervised")
	}
	if err := c.Forecast.Validate(); err != nil {
		return errors.Wrap(err, "forecast")
	}
	return nil
}

func (u *UnsupervisedConfig) Validate() error {
	switch {
	case u.Array == "":
		return errors.New("array must name the sample matrix")
	case u.Components < 0:
		return errors.Errorf("components must be >= 0, got %d", u.Components)
	case !linkages[u.Linkage]:
		return errors.Errorf("unknown linkage %q", u.Linkage)
	case !criteria[u.Criterion]:
		return errors.Errorf("unknown criterion %q", u.Criterion)
	case u.Threshold <= 0:
		return errors.Errorf("threshold must be positive, got %g", u.Threshold)
	case u.KMeansK < 0:
		return errors.Errorf("kmeans_k must be >= 0, got %d", u.KMeansK)
	case u.KMeansK > 0 && u.KMeansMaxIter <= 0:
		return errors.New("kmeans_max_iter must be positive")
	}
	return nil
}

func (f *ForecastConfig) Validate() error {
	switch {
	case f.TestRatio <= 0 || f.TestRatio >= 1:
		return errors.Errorf("test_ratio must be in (0,1), got %g", f.TestRatio)
	case !kernels[f.Kernel]:
		return errors.Errorf("unknown kernel %q", f.Kernel)
	case f.Kernel == "poly" && f.Degree < 1:
		return errors.Errorf("degree must be >= 1, got %d", f.Degree)
	case f.C <= 0:
		return errors.Errorf("c must be positive, got %g", f.C)
	case f.Epsilon < 0:
		return errors.Errorf("epsilon must be >= 0, got %g", f.Epsilon)
	case f.Alpha <= 0:
		return errors.Errorf("alpha must be positive, got %g", f.Alpha)
	case f.Folds == 1 || f.Folds < 0:
		return errors.Errorf("folds must be 0 or >= 2, got %d", f.Folds)
	case f.Lag < 1:
		return errors.Errorf("lag must be >= 1, got %d", f.Lag)
	case len(f.Hidden) == 0:
		return errors.New("hidden must list at least one layer size")
	case f.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", f.Epochs)
	case f.BatchSize <= 0:
		return errors.Errorf("batch_size must be positive, got %d", f.BatchSize)
	case f.LearningRate <= 0:
		return errors.Errorf("learning_rate must be positive, got %g", f.LearningRate)
	case !optimizers[f.Optimizer]:
		return errors.Errorf("unknown optimizer %q", f.Optimizer)
	}
	for _, v := range append(append([]float64(nil), f.CGrid...), f.AlphaGrid...) {
		if v <= 0 {
			return errors.Errorf("grid values must be positive, got c_grid %v alpha_grid %v", f.CGrid, f.AlphaGrid)
		}
	}
	for _, h := range f.Hidden {
		if h < 1 {
			return errors.Errorf("hidden layer sizes must be positive, got %v", f.Hidden)
		}
	}
	return nil
}
