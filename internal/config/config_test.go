package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/BODY.csv", cfg.InputCSV)
	assert.Equal(t, "data/BODY_DATA.json", cfg.RecordsJSON)
	assert.Equal(t, "data/BODY_MORNING_DATA.json", cfg.SamplesJSON)
	assert.Equal(t, "web", cfg.WebDir)
	assert.False(t, cfg.StrictCSV)
	assert.Equal(t, 7, cfg.MorningStartHour)
	assert.Equal(t, 9, cfg.MorningEndHour)
	assert.False(t, cfg.DropUnweighedDays)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.ServeEnabled)
	assert.True(t, cfg.OpenBrowser)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "body-daily-samples", cfg.KafkaSampleTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_CSV", "/tmp/in.csv")
	t.Setenv("RECORDS_JSON", "/tmp/records.json")
	t.Setenv("SAMPLES_JSON", "/tmp/samples.json")
	t.Setenv("WEB_DIR", "/srv/web")
	t.Setenv("STRICT_CSV", "true")
	t.Setenv("MORNING_START_HOUR", "6")
	t.Setenv("MORNING_END_HOUR", "10")
	t.Setenv("DROP_UNWEIGHED_DAYS", "1")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SERVE_ENABLED", "false")
	t.Setenv("OPEN_BROWSER", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_SAMPLE_TOPIC", "custom-samples")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.csv", cfg.InputCSV)
	assert.Equal(t, "/tmp/records.json", cfg.RecordsJSON)
	assert.Equal(t, "/tmp/samples.json", cfg.SamplesJSON)
	assert.Equal(t, "/srv/web", cfg.WebDir)
	assert.True(t, cfg.StrictCSV)
	assert.Equal(t, 6, cfg.MorningStartHour)
	assert.Equal(t, 10, cfg.MorningEndHour)
	assert.True(t, cfg.DropUnweighedDays)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.False(t, cfg.ServeEnabled)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-samples", cfg.KafkaSampleTopic)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodytrend.yaml")
	content := "input_csv: exports/scale.csv\n" +
		"morning_start_hour: 6\n" +
		"serve_enabled: false\n" +
		"kafka_brokers: " + testBroker + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "exports/scale.csv", cfg.InputCSV)
		assert.Equal(t, 6, cfg.MorningStartHour)
		assert.False(t, cfg.ServeEnabled)
		assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
		assert.Equal(t, "data/BODY_DATA.json", cfg.RecordsJSON)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("INPUT_CSV", "env.csv")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env.csv", cfg.InputCSV)
	})
}

func TestLoad_ConfigFileBrokerList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodytrend.yaml")
	content := "kafka_brokers:\n  - a:9092\n  - b:9092\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())

	t.Run("shown config loads back", func(t *testing.T) {
		out, err := yaml.Marshal(cfg)
		require.NoError(t, err)
		shown := filepath.Join(t.TempDir(), "shown.yaml")
		require.NoError(t, os.WriteFile(shown, out, 0o644))

		reloaded, err := Load(shown)
		require.NoError(t, err)
		assert.Equal(t, cfg, reloaded)
	})
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"MORNING_START_HOUR", "seven"},
		{"MORNING_START_HOUR", "24"},
		{"MORNING_START_HOUR", "-1"},
		{"MORNING_END_HOUR", "5"},
		{"MORNING_END_HOUR", "25"},
		{"STRICT_CSV", "maybe"},
		{"SERVE_ENABLED", "yes please"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_KafkaTopicRequiredWithBrokers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodytrend.yaml")
	content := "kafka_brokers: " + testBroker + "\nkafka_sample_topic: \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_SAMPLE_TOPIC")
}

func TestParseBrokers(t *testing.T) {
	assert.Nil(t, ParseBrokers(""))
	assert.Nil(t, ParseBrokers(" , "))
	assert.Equal(t, []string{"a:1", "b:2"}, ParseBrokers("a:1,b:2"))
}
