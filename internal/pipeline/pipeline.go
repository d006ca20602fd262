package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
	"github.com/couchcryptid/body-trend-etl/internal/observability"
)

// ErrOutputMissing is returned when a stage finished without leaving its
// output file behind, so the next stage has nothing to read.
var ErrOutputMissing = errors.New("stage output missing")

// SampleLoader publishes the daily samples produced by a run.
type SampleLoader interface {
	LoadSamples(ctx context.Context, runID string, samples []domain.Record) error
}

// Paths locates the files each stage reads and writes.
type Paths struct {
	CSV     string
	Records string
	Samples string
}

// Options tunes ingestion and sampling.
type Options struct {
	Strict bool
	Sample domain.SampleOptions
}

// Report summarizes one run.
type Report struct {
	RunID     string
	Records   int
	Samples   int
	Published int
	Cleaned   bool
}

// Pipeline orchestrates ingest, sample, and the optional publish stage.
type Pipeline struct {
	paths   Paths
	opts    Options
	loader  SampleLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline. Pass a nil loader to skip publishing.
func New(paths Paths, opts Options, loader SampleLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Sample.Location == nil {
		opts.Sample.Location = domain.ChinaStandardTime
	}
	if opts.Sample.Window == (domain.MorningWindow{}) {
		opts.Sample.Window = domain.DefaultMorningWindow
	}
	return &Pipeline{
		paths:   paths,
		opts:    opts,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
	}
}

// Paths returns the configured file locations.
func (p *Pipeline) Paths() Paths { return p.paths }

// CheckReadiness returns nil once a run has completed or a samples file from
// an earlier run is present.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() || jsonfile.Exists(p.paths.Samples) {
		return nil
	}
	return errors.New("no daily samples have been produced yet")
}

// Samples reads the current samples file.
func (p *Pipeline) Samples() ([]domain.Record, error) {
	return jsonfile.ReadRecords(p.paths.Samples)
}

// Run executes every stage in order. Each stage starts only if the previous
// one left its output file; the first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("pipeline started", "csv", p.paths.CSV)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	ingested, err := p.ingest(logger)
	if err != nil {
		return report, err
	}
	report.Records = len(ingested.Records)
	if err := requireOutput("ingest", p.paths.Records); err != nil {
		return report, err
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	sampled, err := p.sample(logger)
	if err != nil {
		return report, err
	}
	report.Samples = len(sampled.Samples)
	if err := requireOutput("sample", p.paths.Samples); err != nil {
		return report, err
	}

	cleaned, err := Clean(p.paths.Samples, false)
	if err != nil {
		return report, err
	}
	if cleaned.Changed {
		report.Cleaned = true
		logger.Warn("samples file contained carriage returns", "path", p.paths.Samples, "removed_bytes", cleaned.RemovedBytes)
	}

	if p.loader != nil {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := p.publish(ctx, logger, report.RunID, sampled.Samples); err != nil {
			return report, err
		}
		report.Published = len(sampled.Samples)
	}

	p.ready.Store(true)
	p.metrics.LastRunSuccess.Set(float64(domain.Now().Unix()))
	logger.Info("pipeline finished",
		"records", report.Records,
		"samples", report.Samples,
		"published", report.Published,
	)
	return report, nil
}

func requireOutput(stage, path string) error {
	if !jsonfile.Exists(path) {
		return fmt.Errorf("%s: %w: %s", stage, ErrOutputMissing, path)
	}
	return nil
}
