package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

func TestClean(t *testing.T) {
	t.Run("strips carriage returns and keeps a backup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "samples.json")
		original := `[{"time":"2024-05-01 08:15:00","weight":69.9,"bmi\r":"22.8\r"}]`
		require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

		res, err := pipeline.Clean(path, true)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, path+".bak", res.BackupPath)

		backup, err := os.ReadFile(res.BackupPath)
		require.NoError(t, err)
		assert.Equal(t, original, string(backup))

		cleaned, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[\n  {\n    \"time\": \"2024-05-01 08:15:00\",\n    \"weight\": 69.9,\n    \"bmi\": \"22.8\"\n  }\n]", string(cleaned))
		assert.Equal(t, len(original)-len(cleaned), res.RemovedBytes)
	})

	t.Run("clean file is untouched", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "samples.json")
		original := `[{"time":"2024-05-01 08:15:00"}]`
		require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

		res, err := pipeline.Clean(path, true)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.NoFileExists(t, path+".bak")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, original, string(data))
	})

	t.Run("arbitrary json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.json")
		require.NoError(t, os.WriteFile(path, []byte(`["a\r", {"k\r": ["b\r"]}]`), 0o644))

		res, err := pipeline.Clean(path, false)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Empty(t, res.BackupPath)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `["a", {"k": ["b"]}]`, string(data))
	})

	t.Run("errors name the path", func(t *testing.T) {
		dir := t.TempDir()
		missing := filepath.Join(dir, "absent.json")
		_, err := pipeline.Clean(missing, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), missing)

		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
		_, err = pipeline.Clean(bad, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), bad)
	})
}
