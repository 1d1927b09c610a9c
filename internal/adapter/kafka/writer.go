package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/case-map-service/internal/config"
	"github.com/couchcryptid/case-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes day snapshots to a Kafka topic.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes a day's snapshots in a single WriteMessages call.
// Keys hash by "date|code" so a country-day always lands on one partition.
func (w *Writer) LoadBatch(ctx context.Context, snapshots []domain.DaySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snapshots))
	for i := range snapshots {
		msg, err := serializeToMessage(snapshots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d snapshots: %w", len(msgs), err)
	}
	w.logger.Debug("published snapshots", "date", snapshots[0].Date, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DaySnapshot into a Kafka message.
func serializeToMessage(s domain.DaySnapshot) (kafkago.Message, error) {
	data, err := domain.SerializeSnapshot(s)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(s.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "date", Value: []byte(s.Date)},
			{Key: "processed_at", Value: []byte(s.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
