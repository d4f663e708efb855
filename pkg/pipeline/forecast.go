package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	nn "mlworkshop/pkg/NeuralNetwork"
	"mlworkshop/pkg/config"
	"mlworkshop/pkg/data"
	"mlworkshop/pkg/loader"
	"mlworkshop/pkg/logging"
	"mlworkshop/pkg/model"
	"mlworkshop/pkg/optim"
	"mlworkshop/pkg/plotting"
	"mlworkshop/pkg/stats"
)

const (
	syntheticMonths    = 12 * 70
	syntheticStartYear = 1950
)

// ModelScore is the hold-out score of one forecaster.
type ModelScore struct {
	Name string
	model.Scores
}

// ForecastReport is what the time-series run prints.
type ForecastReport struct {
	Source              string
	Points, Train, Test int
	Summary             stats.Summary

	Gamma          float64
	C, Alpha       float64 // after cross-validation when enabled
	SupportVectors int
	Scores         []ModelScore
	LossHistory    []float64

	Figures []string
}

// RunForecast fits the kernel regressors on scaled time and the
// feed-forward network on lag windows, scores all of them on the
// chronological hold-out and draws the figures.
func RunForecast(ctx context.Context, cfg *config.Config) (*ForecastReport, error) {
	log := logging.With("forecast")
	fc := cfg.Forecast
	rng := rand.New(rand.NewSource(cfg.Seed))
	rep := &ForecastReport{}

	recs, err := loadRecords(fc, rng, rep)
	if err != nil {
		return nil, err
	}
	t, y := data.Series(recs, fc.Since)
	rep.Points = len(t)
	rep.Summary = stats.Describe(y)

	tTr, tTe, yTr, yTe, err := loader.ChronoSplit(t, y, fc.TestRatio)
	if err != nil {
		return nil, errors.Wrap(err, "splitting series")
	}
	rep.Train, rep.Test = len(tTr), len(tTe)
	if rep.Train <= fc.Lag {
		return nil, errors.Errorf("training part has %d points, lag %d needs more", rep.Train, fc.Lag)
	}
	log.Info().Str("source", rep.Source).Int("train", rep.Train).Int("test", rep.Test).Msg("loaded series")

	// Feature scaling on the time axis; the target gets its own scaler so
	// the intercept-free kernel ridge sees a centred response.
	tScaler, yScaler := stats.NewStandardScaler(), stats.NewStandardScaler()
	xTrain, err := tScaler.FitTransform(stats.Column(tTr))
	if err != nil {
		return nil, errors.Wrap(err, "scaling time")
	}
	xAll, err := tScaler.Transform(stats.Column(t))
	if err != nil {
		return nil, errors.Wrap(err, "scaling time")
	}
	yTrainScaled, err := yScaler.FitTransform(stats.Column(yTr))
	if err != nil {
		return nil, errors.Wrap(err, "scaling target")
	}
	target := stats.Flatten(yTrainScaled)

	kernel, err := model.NewKernel(fc.Kernel, fc.Gamma, fc.Degree, xTrain)
	if err != nil {
		return nil, err
	}
	if k, ok := kernel.(model.RBF); ok {
		rep.Gamma = k.Gamma
	}

	curves := []plotting.Series{{Name: "observed", X: t, Y: y}}
	score := func(name string, pred []float64) {
		rep.Scores = append(rep.Scores, ModelScore{Name: name, Scores: model.Score(yTe, pred)})
	}
	unscale := func(p []float64) ([]float64, error) {
		back, err := yScaler.InverseTransform(stats.Column(p))
		if err != nil {
			return nil, err
		}
		return stats.Flatten(back), nil
	}

	rep.C, rep.Alpha = fc.C, fc.Alpha
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fc.Folds >= 2 {
		if err := rep.tune(fc, kernel, xTrain, target, rng); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	svr := model.NewSVR(kernel, rep.C, fc.Epsilon)
	if err := svr.Fit(xTrain, target); err != nil {
		return nil, errors.Wrap(err, "svr")
	}
	rep.SupportVectors = len(svr.SupportVectors())
	full, err := predictCurve(svr, xAll, unscale)
	if err != nil {
		return nil, errors.Wrap(err, "svr")
	}
	score("SVR", full[rep.Train:])
	curves = append(curves, plotting.Series{Name: "SVR", X: t, Y: full})
	log.Info().Int("support_vectors", rep.SupportVectors).Float64("c", rep.C).
		Dur("took", time.Since(start)).Msg("fitted svr")

	start = time.Now()
	krr := model.NewKernelRidge(kernel, rep.Alpha)
	if err := krr.Fit(xTrain, target); err != nil {
		return nil, errors.Wrap(err, "kernel ridge")
	}
	full, err = predictCurve(krr, xAll, unscale)
	if err != nil {
		return nil, errors.Wrap(err, "kernel ridge")
	}
	score("KernelRidge", full[rep.Train:])
	curves = append(curves, plotting.Series{Name: "KernelRidge", X: t, Y: full})
	log.Info().Dur("took", time.Since(start)).Msg("fitted kernel ridge")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mlpPred, err := rep.fitNetwork(ctx, cfg, y, yScaler, unscale)
	if err != nil {
		return nil, err
	}
	score("MLP", mlpPred)
	curves = append(curves, plotting.Series{Name: "MLP (one step)", X: tTe, Y: mlpPred})

	// Persistence baseline: next month equals this month.
	naive := make([]float64, rep.Test)
	copy(naive, y[rep.Train-1:len(y)-1])
	score("Persistence", naive)

	if err := rep.draw(cfg.OutputDir, curves, yTe, mlpPred, y); err != nil {
		return nil, err
	}
	log.Info().Strs("figures", rep.Figures).Msg("wrote figures")
	return rep, nil
}

// tune picks C for the SVR and Alpha for kernel ridge from their grids.
func (rep *ForecastReport) tune(fc config.ForecastConfig, kernel model.Kernel, X [][]float64, y []float64, rng *rand.Rand) error {
	log := logging.With("forecast")
	start := time.Now()

	var mse float64
	var err error
	if len(fc.CGrid) > 0 {
		rep.C, mse, err = crossValidate(X, y, fc.Folds, rng, fc.CGrid, func(c float64) model.Regressor {
			return model.NewSVR(kernel, c, fc.Epsilon)
		})
		if err != nil {
			return errors.Wrap(err, "cross-validating svr")
		}
		log.Debug().Float64("c", rep.C).Float64("cv_mse", mse).Msg("chose svr C")
	}
	if len(fc.AlphaGrid) > 0 {
		rep.Alpha, mse, err = crossValidate(X, y, fc.Folds, rng, fc.AlphaGrid, func(a float64) model.Regressor {
			return model.NewKernelRidge(kernel, a)
		})
		if err != nil {
			return errors.Wrap(err, "cross-validating kernel ridge")
		}
		log.Debug().Float64("alpha", rep.Alpha).Float64("cv_mse", mse).Msg("chose kernel ridge alpha")
	}
	log.Info().Int("folds", fc.Folds).Float64("c", rep.C).Float64("alpha", rep.Alpha).
		Dur("took", time.Since(start)).Msg("cross-validated")
	return nil
}

func loadRecords(fc config.ForecastConfig, rng *rand.Rand, rep *ForecastReport) ([]data.Record, error) {
	if fc.Input == "" {
		rep.Source = "synthetic"
		return data.GenerateCycle(syntheticMonths, syntheticStartYear, rng), nil
	}
	rep.Source = fc.Input
	return data.LoadSeries(fc.Input)
}

func predictCurve(m model.Regressor, X [][]float64, unscale func([]float64) ([]float64, error)) ([]float64, error) {
	p, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	return unscale(p)
}

// fitNetwork trains on lag windows whose target lies in the training
// part and returns one-step-ahead predictions for every hold-out month.
func (rep *ForecastReport) fitNetwork(ctx context.Context, cfg *config.Config, y []float64, yScaler *stats.StandardScaler, unscale func([]float64) ([]float64, error)) ([]float64, error) {
	log := logging.With("forecast")
	fc := cfg.Forecast

	scaled, err := yScaler.Transform(stats.Column(y))
	if err != nil {
		return nil, errors.Wrap(err, "scaling series")
	}
	windows, targets, err := loader.Windows(stats.Flatten(scaled), fc.Lag)
	if err != nil {
		return nil, err
	}
	split := rep.Train - fc.Lag

	net, err := nn.NewNetwork(fc.Lag, fc.Hidden, 1, "relu", "identity", cfg.Seed)
	if err != nil {
		return nil, err
	}
	opt, err := optim.New(fc.Optimizer, fc.LearningRate)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rep.LossHistory, err = net.Train(ctx, windows[:split], targets[:split], nn.TrainConfig{
		Epochs:    fc.Epochs,
		BatchSize: fc.BatchSize,
		Optimizer: opt,
		OnEpoch: func(ep int, loss float64) {
			log.Debug().Int("epoch", ep+1).Float64("loss", loss).Msg("epoch done")
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "training network")
	}
	log.Info().Int("epochs", fc.Epochs).Float64("final_loss", rep.LossHistory[len(rep.LossHistory)-1]).
		Dur("took", time.Since(start)).Msg("trained network")

	pred, err := net.Predict(windows[split:])
	if err != nil {
		return nil, errors.Wrap(err, "network prediction")
	}
	return unscale(pred)
}

func (rep *ForecastReport) draw(dir string, curves []plotting.Series, yTe, mlpPred, y []float64) error {
	out := func(name string) string {
		p := filepath.Join(dir, name)
		rep.Figures = append(rep.Figures, p)
		return p
	}
	if err := plotting.Curves(out("forecast.png"), "Monthly series and model fits", "year", "value", curves...); err != nil {
		return err
	}
	if err := plotting.LossCurve(out("mlp_loss.png"), rep.LossHistory); err != nil {
		return err
	}
	residuals := make([]float64, len(yTe))
	for i := range yTe {
		residuals[i] = yTe[i] - mlpPred[i]
	}
	if err := plotting.Histogram(out("mlp_residuals.png"), "MLP hold-out residuals", "observed - predicted", residuals, 20); err != nil {
		return err
	}
	return plotting.Histogram(out("value_distribution.png"), "Distribution of monthly values", "value", y, 30)
}

// Print writes the console summary.
func (rep *ForecastReport) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Forecasting: kernel regressors and feed-forward network ===")
	fmt.Fprintf(w, "Series: %d points (%s), train %d, test %d\n", rep.Points, rep.Source, rep.Train, rep.Test)
	s := rep.Summary
	fmt.Fprintf(w, "Values: mean %.2f std %.2f min %.2f median %.2f max %.2f\n", s.Mean, s.Std, s.Min, s.Median, s.Max)
	if rep.Gamma > 0 {
		fmt.Fprintf(w, "RBF gamma: %.4g\n", rep.Gamma)
	}
	fmt.Fprintf(w, "SVR C: %g, kernel ridge alpha: %g\n", rep.C, rep.Alpha)
	fmt.Fprintf(w, "SVR support vectors: %d\n", rep.SupportVectors)
	fmt.Fprintf(w, "%-14s %10s %10s %8s\n", "model", "RMSE", "MAE", "R2")
	for _, sc := range rep.Scores {
		fmt.Fprintf(w, "%-14s %10.3f %10.3f %8.3f\n", sc.Name, sc.RMSE, sc.MAE, sc.R2)
	}
	if n := len(rep.LossHistory); n > 0 {
		fmt.Fprintf(w, "MLP loss: first %.4f, last %.4f over %d epochs\n", rep.LossHistory[0], rep.LossHistory[n-1], n)
	}
	for _, f := range rep.Figures {
		fmt.Fprintf(w, "Saved %s\n", f)
	}
}
