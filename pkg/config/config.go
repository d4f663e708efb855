// Package config loads workshop settings from defaults, an optional YAML
// file and WORKSHOP_* environment variables, in that order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix is stripped from environment variables. A double underscore
// separates sections: WORKSHOP_FORECAST__TEST_RATIO -> forecast.test_ratio.
const EnvPrefix = "WORKSHOP_"

// Config is the root configuration for both workshop pipelines.
type Config struct {
	Log          LogConfig          `koanf:"log"`
	OutputDir    string             `koanf:"output_dir"`
	Seed         int64              `koanf:"seed"`
	Unsupervised UnsupervisedConfig `koanf:"unsupervised"`
	Forecast     ForecastConfig     `koanf:"forecast"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// UnsupervisedConfig drives the PCA + hierarchical clustering pipeline.
type UnsupervisedConfig struct {
	Input      string `koanf:"input"`
	Array      string `koanf:"array"`       // sample matrix entry in the .npz
	LabelArray string `koanf:"label_array"` // optional reference labels
	Scale      bool   `koanf:"scale"`
	Components int    `koanf:"components"` // 0 keeps all

	Linkage   string  `koanf:"linkage"`   // single, complete, average, ward
	Criterion string  `koanf:"criterion"` // maxclust or distance
	Threshold float64 `koanf:"threshold"`

	KMeansK       int `koanf:"kmeans_k"` // 0 disables the k-means baseline
	KMeansMaxIter int `koanf:"kmeans_max_iter"`
}

// ForecastConfig drives the time-series regression pipeline.
type ForecastConfig struct {
	Input     string  `koanf:"input"`
	TestRatio float64 `koanf:"test_ratio"`
	Since     float64 `koanf:"since"` // drop records before this fractional year; 0 keeps all

	Kernel  string  `koanf:"kernel"` // rbf, linear, poly
	Gamma   float64 `koanf:"gamma"`  // <= 0 resolves from the data
	Degree  int     `koanf:"degree"`
	C       float64 `koanf:"c"`
	Epsilon float64 `koanf:"epsilon"`
	Alpha   float64 `koanf:"alpha"`

	// Folds >= 2 picks C and Alpha from the grids by k-fold
	// cross-validation on the training part; 0 uses C and Alpha as given.
	Folds     int       `koanf:"folds"`
	CGrid     []float64 `koanf:"c_grid"`
	AlphaGrid []float64 `koanf:"alpha_grid"`

	Lag          int     `koanf:"lag"`
	Hidden       []int   `koanf:"hidden"`
	Epochs       int     `koanf:"epochs"`
	BatchSize    int     `koanf:"batch_size"`
	LearningRate float64 `koanf:"learning_rate"`
	Optimizer    string  `koanf:"optimizer"` // adam or sgd
}

// Default returns the settings used in the workshop notebooks.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "console"},
		OutputDir: "out",
		Seed:      42,
		Unsupervised: UnsupervisedConfig{
			Input:         "",
			Array:         "X",
			Scale:         true,
			Components:    0,
			Linkage:       "ward",
			Criterion:     "maxclust",
			Threshold:     4,
			KMeansK:       4,
			KMeansMaxIter: 100,
		},
		Forecast: ForecastConfig{
			Input:        "",
			TestRatio:    0.2,
			Kernel:       "rbf",
			Gamma:        0,
			Degree:       3,
			C:            10,
			Epsilon:      0.1,
			Alpha:        0.1,
			Folds:        3,
			CGrid:        []float64{1, 10, 100},
			AlphaGrid:    []float64{0.01, 0.1, 1},
			Lag:          12,
			Hidden:       []int{32, 16},
			Epochs:       100,
			BatchSize:    32,
			LearningRate: 0.001,
			Optimizer:    "adam",
		},
	}
}

// Load layers defaults, the YAML file at path (skipped when empty) and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "loading defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "loading config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
