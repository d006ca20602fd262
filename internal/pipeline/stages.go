package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// Ingest converts the CSV export into the records file.
func (p *Pipeline) Ingest(ctx context.Context) (domain.IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.IngestResult{}, err
	}
	return p.ingest(p.logger)
}

// Sample reduces the records file to the daily samples file.
func (p *Pipeline) Sample(ctx context.Context) (domain.SampleResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SampleResult{}, err
	}
	return p.sample(p.logger)
}

func (p *Pipeline) ingest(logger *slog.Logger) (domain.IngestResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(p.paths.CSV)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("read input %s: %w", p.paths.CSV, err)
	}

	res, err := domain.ParseCSV(string(raw), domain.IngestOptions{
		Location: p.opts.Sample.Location,
		Strict:   p.opts.Strict,
	})
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("parse %s: %w", p.paths.CSV, err)
	}

	if err := jsonfile.WriteRecords(p.paths.Records, domain.SanitizeRecords(res.Records)); err != nil {
		return domain.IngestResult{}, err
	}

	p.metrics.RecordsIngested.Add(float64(len(res.Records)))
	p.metrics.RowsMalformed.Add(float64(res.ShortRows + res.LongRows))
	p.metrics.InvalidTimestamps.Add(float64(res.InvalidTimes))
	p.metrics.InvalidNumbers.Add(float64(res.InvalidNumbers))
	p.metrics.StageDuration.WithLabelValues("ingest").Observe(time.Since(start).Seconds())

	if res.ShortRows+res.LongRows > 0 || res.InvalidTimes > 0 {
		logger.Warn("input anomalies absorbed",
			"short_rows", res.ShortRows,
			"long_rows", res.LongRows,
			"invalid_times", res.InvalidTimes,
			"invalid_numbers", res.InvalidNumbers,
		)
	}
	logger.Info("ingest complete", "records", len(res.Records), "output", p.paths.Records)
	return res, nil
}

func (p *Pipeline) sample(logger *slog.Logger) (domain.SampleResult, error) {
	start := time.Now()
	records, err := jsonfile.ReadRecords(p.paths.Records)
	if err != nil {
		return domain.SampleResult{}, err
	}

	res := domain.SampleWith(records, p.opts.Sample)
	if err := jsonfile.WriteRecords(p.paths.Samples, res.Samples); err != nil {
		return domain.SampleResult{}, err
	}

	p.metrics.SamplesSelected.Add(float64(len(res.Samples)))
	p.metrics.RecordsSkipped.Add(float64(res.Skipped))
	p.metrics.StageDuration.WithLabelValues("sample").Observe(time.Since(start).Seconds())

	logger.Info("sample complete",
		"records", len(records),
		"candidates", res.Candidates,
		"samples", len(res.Samples),
		"skipped", res.Skipped,
		"unweighed_days", res.UnweighedDays,
		"output", p.paths.Samples,
	)
	return res, nil
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, runID string, samples []domain.Record) error {
	start := time.Now()
	if err := p.loader.LoadSamples(ctx, runID, samples); err != nil {
		return fmt.Errorf("publish samples: %w", err)
	}
	p.metrics.SamplesPublished.Add(float64(len(samples)))
	p.metrics.StageDuration.WithLabelValues("publish").Observe(time.Since(start).Seconds())
	logger.Info("samples published", "count", len(samples))
	return nil
}
