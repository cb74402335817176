package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/pkfit/internal/adapters/csvfile"
	"github.com/bft-labs/pkfit/internal/adapters/fs"
	logAdapter "github.com/bft-labs/pkfit/internal/adapters/log"
	"github.com/bft-labs/pkfit/internal/adapters/metrics"
	"github.com/bft-labs/pkfit/internal/app"
	"github.com/bft-labs/pkfit/internal/cliconfig"
	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/fit"
)

const longHelp = `Fit a one-compartment IV infusion model to concentration-time data.

Every subject in the input CSV is fit by exhaustive search over a (CL, V)
grid, then one pooled (CL, V) is fit across all subjects. Results, residuals,
a JSON run summary and a Markdown report are written to the output directory.

Configuration is read from $HOME/.pkfit/config.toml (or --config), then
PKFIT_* environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  pkfit --input study.csv --out-dir results
  pkfit --input study.csv --cl-min 1 --cl-max 20 --cl-steps 39 --spacing linear
  pkfit --input study.csv --watch --metrics-file /var/lib/node_exporter/pkfit.prom
  pkfit predict --dose 100 --tinf 1 --cl 5 --v 20 --time 0.5,1,2,4`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := cliconfig.Logger("info")

	root := newRootCmd(&log)
	root.AddCommand(newPredictCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Str("kind", domain.Kind(err)).Msg("pkfit")
		os.Exit(1)
	}
}

func newRootCmd(log *zerolog.Logger) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "pkfit",
		Short:         "Grid-search CL and V for a one-compartment IV infusion model",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
			}

			// Environment overrides file, flags override environment.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			*log = cliconfig.Logger(cfg.LogLevel)
			log.Info().Interface("config", cfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logAdapter.NewZerologAdapterWithLogger(*log))
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.pkfit/config.toml)")
	f.StringVar(&cfg.Input, "input", cfg.Input, "observation CSV (ID, TIME, CONC, Dose, Condition)")
	f.StringVar(&cfg.MetadataPath, "metadata", cfg.MetadataPath, "optional study metadata JSON (units, study name)")
	f.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "output directory")

	f.Float64Var(&cfg.CLMin, "cl-min", cfg.CLMin, "lower clearance bound")
	f.Float64Var(&cfg.CLMax, "cl-max", cfg.CLMax, "upper clearance bound")
	f.IntVar(&cfg.CLSteps, "cl-steps", cfg.CLSteps, "clearance grid points")
	f.Float64Var(&cfg.VMin, "v-min", cfg.VMin, "lower volume bound")
	f.Float64Var(&cfg.VMax, "v-max", cfg.VMax, "upper volume bound")
	f.IntVar(&cfg.VSteps, "v-steps", cfg.VSteps, "volume grid points")
	f.StringVar(&cfg.Spacing, "spacing", cfg.Spacing, "grid spacing: linear or log")
	f.IntVar(&cfg.PooledCLSteps, "pooled-cl-steps", cfg.PooledCLSteps, "clearance grid points for the pooled fit (0: same as cl-steps)")
	f.IntVar(&cfg.PooledVSteps, "pooled-v-steps", cfg.PooledVSteps, "volume grid points for the pooled fit (0: same as v-steps)")

	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers (0: number of CPUs)")
	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-run whenever the input or metadata file changes")
	f.BoolVar(&cfg.Report, "report", cfg.Report, "write report.md and validation.md")
	f.BoolVar(&cfg.Residuals, "residuals", cfg.Residuals, "write residuals.csv")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics in textfile format after each run")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	return root
}

func run(ctx context.Context, cfg cliconfig.Config, logger *logAdapter.ZerologAdapter) error {
	recorder := metrics.NewRecorder()

	fitter := fit.New(
		fit.WithWorkers(cfg.Workers),
		fit.WithLogger(logger),
		fit.WithRecorder(recorder),
	)

	opts := []app.RunnerOption{app.WithRunLogger(logger)}
	if cfg.MetadataPath != "" {
		opts = append(opts, app.WithMetadata(csvfile.NewMetadataFile(cfg.MetadataPath)))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, app.WithRunCompleter(&textfileExporter{
			recorder: recorder,
			path:     cfg.MetricsFile,
			logger:   logger,
		}))
	}

	runner := app.NewRunner(
		app.RunConfig{Grid: cfg.GridSpec(), PooledGrid: cfg.PooledGridSpec()},
		csvfile.NewSource(cfg.Input),
		fs.NewResultWriter(cfg.OutDir, fs.WithReport(cfg.Report), fs.WithResiduals(cfg.Residuals)),
		fitter,
		opts...,
	)

	if cfg.Watch {
		w := app.NewWatcher(runner, logger, app.DefaultDebounce, cfg.Input, cfg.MetadataPath)
		logger.Info("watching for changes")
		return w.Run(ctx)
	}

	_, err := runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted")
		return nil
	}
	return err
}
