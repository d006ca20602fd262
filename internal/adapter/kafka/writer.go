package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/body-trend-etl/internal/config"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// Writer produces daily samples to a Kafka topic.
// It implements pipeline.SampleLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sample topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSampleTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadSamples publishes every sample in a single WriteMessages call, keyed by
// the sample's date.
func (w *Writer) LoadSamples(ctx context.Context, runID string, samples []domain.Record) error {
	if len(samples) == 0 {
		return nil
	}
	sampledAt := domain.Now()
	msgs := make([]kafkago.Message, len(samples))
	for i := range samples {
		msg, err := serializeToMessage(samples[i], runID, sampledAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d samples to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("samples written to kafka", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a daily sample into a Kafka message.
func serializeToMessage(sample domain.Record, runID string, sampledAt time.Time) (kafkago.Message, error) {
	data, err := sample.MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sample: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sampleDate(sample)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "sampled_at", Value: []byte(sampledAt.Format(time.RFC3339))},
		},
	}, nil
}

func sampleDate(sample domain.Record) string {
	ts, _ := sample.Time()
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
