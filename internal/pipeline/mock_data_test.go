package pipeline_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
	"github.com/couchcryptid/body-trend-etl/internal/observability"
	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

func mockDataPath(name string) string {
	return filepath.Join("..", "..", "data", "mock", name)
}

func TestPipeline_WithMockExport(t *testing.T) {
	dir := t.TempDir()
	paths := pipeline.Paths{
		CSV:     mockDataPath("BODY.csv"),
		Records: filepath.Join(dir, "BODY_DATA.json"),
		Samples: filepath.Join(dir, "BODY_MORNING_DATA.json"),
	}
	p := pipeline.New(paths, pipeline.Options{}, nil, discardLogger(), observability.NewMetricsForTesting())

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, report.Records)
	assert.Equal(t, 6, report.Samples)

	want, err := os.ReadFile(mockDataPath("BODY_MORNING_DATA.json"))
	require.NoError(t, err)
	got, err := os.ReadFile(paths.Samples)
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}

	records, err := jsonfile.ReadRecords(paths.Records)
	require.NoError(t, err)
	assert.False(t, domain.ContainsCR(records))
	for _, r := range records {
		assert.Equal(t, 10, r.Len(), "every record carries every header")
	}
}

func TestSample_MockExportInvariants(t *testing.T) {
	raw, err := os.ReadFile(mockDataPath("BODY.csv"))
	require.NoError(t, err)

	records := domain.Ingest(string(raw))
	samples := domain.Sample(records)

	seen := make(map[string]bool)
	prev := ""
	for _, s := range samples {
		ts, ok := s.Time()
		require.True(t, ok)
		date := ts[:10]
		assert.False(t, seen[date], "duplicate date %s", date)
		seen[date] = true
		assert.GreaterOrEqual(t, ts, prev, "samples are chronological")
		prev = ts

		hour := ts[11:13]
		assert.Contains(t, []string{"07", "08"}, hour)

		for _, r := range records {
			rts, _ := r.Time()
			if rts[:10] != date || (rts[11:13] != "07" && rts[11:13] != "08") {
				continue
			}
			if w := r.Weight(); !math.IsNaN(w) {
				assert.LessOrEqual(t, s.Weight(), w, "sample for %s is the lightest morning reading", date)
			}
		}
	}
	assert.False(t, domain.ContainsCR(samples))
}
