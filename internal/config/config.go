package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables
// and an optional YAML file.
type Config struct {
	InputCSV    string `yaml:"input_csv"`
	RecordsJSON string `yaml:"records_json"`
	SamplesJSON string `yaml:"samples_json"`
	WebDir      string `yaml:"web_dir"`

	StrictCSV         bool `yaml:"strict_csv"`
	MorningStartHour  int  `yaml:"morning_start_hour"`
	MorningEndHour    int  `yaml:"morning_end_hour"`
	DropUnweighedDays bool `yaml:"drop_unweighed_days"`

	HTTPAddr        string        `yaml:"http_addr"`
	ServeEnabled    bool          `yaml:"serve_enabled"`
	OpenBrowser     bool          `yaml:"open_browser"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Optional Kafka sink for daily samples. No brokers disables it.
	KafkaBrokers     []string `yaml:"kafka_brokers"`
	KafkaSampleTopic string   `yaml:"kafka_sample_topic"`
}

var defaults = map[string]any{
	"input_csv":           "data/BODY.csv",
	"records_json":        "data/BODY_DATA.json",
	"samples_json":        "data/BODY_MORNING_DATA.json",
	"web_dir":             "web",
	"strict_csv":          "false",
	"morning_start_hour":  "7",
	"morning_end_hour":    "9",
	"drop_unweighed_days": "false",
	"http_addr":           ":8080",
	"serve_enabled":       "true",
	"open_browser":        "true",
	"log_level":           "info",
	"log_format":          "text",
	"shutdown_timeout":    "10s",
	"kafka_brokers":       "",
	"kafka_sample_topic":  "body-daily-samples",
}

// Load reads configuration with precedence env > config file > defaults.
// cfgFile is optional; when empty, bodytrend.yaml is looked up in the working
// directory and silently skipped if absent. An explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("bodytrend")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	p := parser{v: v}
	cfg := &Config{
		InputCSV:          v.GetString("input_csv"),
		RecordsJSON:       v.GetString("records_json"),
		SamplesJSON:       v.GetString("samples_json"),
		WebDir:            v.GetString("web_dir"),
		StrictCSV:         p.bool("strict_csv"),
		MorningStartHour:  p.int("morning_start_hour"),
		MorningEndHour:    p.int("morning_end_hour"),
		DropUnweighedDays: p.bool("drop_unweighed_days"),
		HTTPAddr:          v.GetString("http_addr"),
		ServeEnabled:      p.bool("serve_enabled"),
		OpenBrowser:       p.bool("open_browser"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
		ShutdownTimeout:   p.duration("shutdown_timeout"),
		KafkaBrokers:      brokers(v),
		KafkaSampleTopic:  v.GetString("kafka_sample_topic"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.InputCSV == "" {
		return nil, errors.New("INPUT_CSV is required")
	}
	if cfg.RecordsJSON == "" {
		return nil, errors.New("RECORDS_JSON is required")
	}
	if cfg.SamplesJSON == "" {
		return nil, errors.New("SAMPLES_JSON is required")
	}
	window := domain.MorningWindow{StartHour: cfg.MorningStartHour, EndHour: cfg.MorningEndHour}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("MORNING_START_HOUR/MORNING_END_HOUR: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid LOG_LEVEL")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("invalid LOG_FORMAT")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSampleTopic == "" {
		return nil, errors.New("KAFKA_SAMPLE_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether daily samples should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// brokers accepts a YAML list or a comma-separated string for
// kafka_brokers. List entries may themselves hold commas.
func brokers(v *viper.Viper) []string {
	var out []string
	for _, s := range v.GetStringSlice("kafka_brokers") {
		out = append(out, ParseBrokers(s)...)
	}
	return out
}

// parser reads typed values and keeps the first error, named after the
// environment variable that carries the key.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", strings.ToUpper(key), p.v.GetString(key))
	}
}

func (p *parser) bool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return b
}

func (p *parser) int(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return n
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return d
}
