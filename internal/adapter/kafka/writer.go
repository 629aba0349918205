package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/seojedaperez/ignismap-engine/internal/config"
	"github.com/seojedaperez/ignismap-engine/internal/engine"
)

// Writer publishes completed analysis bundles to a Kafka topic.
// It implements engine.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one analysis bundle. Keyed by the
// observation ID so replays of the same detection land on one partition.
func (w *Writer) Publish(ctx context.Context, bundle engine.AnalysisBundle) error {
	msg, err := serializeToMessage(bundle)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an analysis bundle into a Kafka message.
func serializeToMessage(bundle engine.AnalysisBundle) (kafkago.Message, error) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis bundle: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(bundle.Observation.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "role", Value: []byte(bundle.Role)},
			{Key: "magnitude_band", Value: []byte(bundle.Risk.MagnitudeBand)},
			{Key: "generated_at", Value: []byte(bundle.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
