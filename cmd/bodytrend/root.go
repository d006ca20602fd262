package main

import (
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/body-trend-etl/internal/config"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
	"github.com/couchcryptid/body-trend-etl/internal/observability"
	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

// metrics are registered once per process with the default registry.
var metrics = sync.OnceValue(observability.NewMetrics)

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	debug   bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bodytrend",
		Short:         "Normalize body-composition exports and pick one morning weigh-in per day",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./bodytrend.yaml when present)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.newRunCmd(),
		a.newIngestCmd(),
		a.newSampleCmd(),
		a.newCleanCmd(),
		a.newSummaryCmd(),
		a.newServeCmd(),
		a.newConfigCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func (a *app) paths() pipeline.Paths {
	return pipeline.Paths{
		CSV:     a.cfg.InputCSV,
		Records: a.cfg.RecordsJSON,
		Samples: a.cfg.SamplesJSON,
	}
}

func (a *app) pipeline(loader pipeline.SampleLoader) *pipeline.Pipeline {
	opts := pipeline.Options{
		Strict: a.cfg.StrictCSV,
		Sample: domain.SampleOptions{
			Window: domain.MorningWindow{
				StartHour: a.cfg.MorningStartHour,
				EndHour:   a.cfg.MorningEndHour,
			},
			Location:          domain.ChinaStandardTime,
			DropUnweighedDays: a.cfg.DropUnweighedDays,
		},
	}
	return pipeline.New(a.paths(), opts, loader, a.logger, metrics())
}
