package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mlworkshop/pkg/config"
	"mlworkshop/pkg/logging"
	"mlworkshop/pkg/pipeline"
)

type options struct {
	configPath string
	logLevel   string
	outDir     string
	input      string
	seed       int64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("workshop failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "workshop",
		Short:         "Run the PCA/clustering and time-series forecasting workshops",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&opts.logLevel, "log-level", "", "override log.level")
	f.StringVarP(&opts.outDir, "out", "o", "", "override output_dir for figures")
	f.StringVarP(&opts.input, "input", "i", "", "override the input file of the selected workshop")
	f.Int64Var(&opts.seed, "seed", 0, "override the random seed")

	root.AddCommand(newUnsupervisedCmd(opts), newForecastCmd(opts))
	return root
}

func newUnsupervisedCmd(opts *options) *cobra.Command {
	var synthetic bool
	cmd := &cobra.Command{
		Use:   "unsupervised",
		Short: "PCA and hierarchical clustering of a packed sample matrix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Unsupervised.Input = opts.input
			}
			if synthetic {
				cfg.Unsupervised.Input = ""
			}
			rep, err := pipeline.RunUnsupervised(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rep.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use generated Gaussian blobs instead of the input file")
	return cmd
}

func newForecastCmd(opts *options) *cobra.Command {
	var (
		synthetic bool
		epochs    int
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "SVR, kernel ridge and feed-forward forecasts of a monthly series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Forecast.Input = opts.input
			}
			if synthetic {
				cfg.Forecast.Input = ""
			}
			if epochs > 0 {
				cfg.Forecast.Epochs = epochs
			}
			rep, err := pipeline.RunForecast(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rep.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a generated 11-year cycle instead of the input file")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "override forecast.epochs")
	return cmd
}

// load reads the config, applies the global flag overrides and
// initialises logging.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.outDir != "" {
		cfg.OutputDir = o.outDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = o.seed
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	logging.Debug().Str("config", o.configPath).Msgf("loaded configuration for %s", cmd.Name())
	return cfg, nil
}
