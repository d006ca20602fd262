package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/body-trend-etl/internal/adapter/kafka"
	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

func (a *app) newRunCmd() *cobra.Command {
	var csvPath string
	var copyCSV bool
	var noServe bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest the CSV, sample daily mornings, then serve the trend page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.useCSV(csvPath, copyCSV); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var loader pipeline.SampleLoader
			if a.cfg.KafkaEnabled() {
				writer := kafkaadapter.NewWriter(a.cfg, a.logger)
				defer func() {
					if err := writer.Close(); err != nil {
						a.logger.Error("kafka writer close error", "error", err)
					}
				}()
				loader = writer
				a.logger.Info("kafka sample sink enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaSampleTopic)
			}

			p := a.pipeline(loader)
			report, err := p.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d records -> %s\n", color.GreenString("✓"), report.Records, a.cfg.RecordsJSON)
			fmt.Fprintf(out, "%s %d daily samples -> %s\n", color.GreenString("✓"), report.Samples, a.cfg.SamplesJSON)
			if report.Published > 0 {
				fmt.Fprintf(out, "%s %d samples published to %s\n", color.GreenString("✓"), report.Published, a.cfg.KafkaSampleTopic)
			}

			if noServe || !a.cfg.ServeEnabled {
				return nil
			}
			return a.serve(ctx, p)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV export to ingest (overrides INPUT_CSV)")
	cmd.Flags().BoolVar(&copyCSV, "copy", false, "copy the --csv file to INPUT_CSV before ingesting")
	cmd.Flags().BoolVar(&noServe, "no-serve", false, "exit after writing the output files")
	return cmd
}

func (a *app) newIngestCmd() *cobra.Command {
	var csvPath string
	var copyCSV bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Convert the CSV export into the normalized records file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.useCSV(csvPath, copyCSV); err != nil {
				return err
			}
			res, err := a.pipeline(nil).Ingest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d records -> %s\n", color.GreenString("✓"), len(res.Records), a.cfg.RecordsJSON)
			if n := res.ShortRows + res.LongRows; n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d malformed rows absorbed\n", color.YellowString("!"), n)
			}
			if res.InvalidTimes > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d timestamps kept verbatim\n", color.YellowString("!"), res.InvalidTimes)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV export to ingest (overrides INPUT_CSV)")
	cmd.Flags().BoolVar(&copyCSV, "copy", false, "copy the --csv file to INPUT_CSV before ingesting")
	return cmd
}

func (a *app) newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Reduce the records file to one morning sample per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.pipeline(nil).Sample(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d daily samples from %d morning readings -> %s\n",
				color.GreenString("✓"), len(res.Samples), res.Candidates, a.cfg.SamplesJSON)
			return nil
		},
	}
}

// useCSV points the run at csvPath, or with copyTo set copies csvPath over
// the configured INPUT_CSV so later runs find it there.
func (a *app) useCSV(csvPath string, copyTo bool) error {
	if csvPath == "" {
		if copyTo {
			return errors.New("--copy needs --csv")
		}
		return requireInput(a.cfg.InputCSV)
	}
	if err := requireInput(csvPath); err != nil {
		return err
	}
	if !copyTo {
		a.cfg.InputCSV = csvPath
		return nil
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", csvPath, err)
	}
	if err := jsonfile.WriteFile(a.cfg.InputCSV, data); err != nil {
		return err
	}
	a.logger.Info("input CSV copied", "from", csvPath, "to", a.cfg.InputCSV)
	return nil
}

// requireInput fails with a hint when the CSV export is missing.
func requireInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input CSV %s not found: export it from the scale app and pass --csv or set INPUT_CSV: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input CSV %s is a directory", path)
	}
	return nil
}
