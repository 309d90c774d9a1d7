package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
	"github.com/couchcryptid/dwd-archive-etl/internal/pipeline"
)

// Writer publishes normalized station output to Kafka, one topic per
// collection: <prefix>-intervals, <prefix>-records, <prefix>-aggregates.
// It implements pipeline.Sink.
//
// All of a station's messages go out in a single WriteMessages call with
// full acks; messages are keyed by station id so one station's records stay
// ordered within a partition.
type Writer struct {
	writer *kafkago.Writer
	prefix string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured brokers. Topics are
// chosen per message, so the underlying writer is not bound to one.
func NewWriter(brokers []string, topicPrefix string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, prefix: topicPrefix, logger: logger}
}

// PersistStation serializes and publishes the station's intervals, records,
// and aggregates.
func (w *Writer) PersistStation(ctx context.Context, out *pipeline.StationOutput) error {
	msgs, err := w.buildMessages(out)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write station %d: %w", out.StationID, err)
	}
	w.logger.Debug("station published", "station_id", out.StationID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) buildMessages(out *pipeline.StationOutput) ([]kafkago.Message, error) {
	key := []byte(strconv.Itoa(out.StationID))
	msgs := make([]kafkago.Message, 0, len(out.Intervals)+len(out.Observations)+len(out.Aggregates))

	for i := range out.Intervals {
		msg, err := serialize(w.prefix+"-intervals", key, &out.Intervals[i])
		if err != nil {
			return nil, fmt.Errorf("serialize interval: %w", err)
		}
		msgs = append(msgs, msg)
	}
	for i := range out.Observations {
		msg, err := serialize(w.prefix+"-records", key, &out.Observations[i])
		if err != nil {
			return nil, fmt.Errorf("serialize record: %w", err)
		}
		msgs = append(msgs, msg)
	}
	for _, res := range domain.Resolutions {
		for i := range out.Aggregates[res] {
			msg, err := serialize(w.prefix+"-aggregates", key, &out.Aggregates[res][i])
			if err != nil {
				return nil, fmt.Errorf("serialize aggregate: %w", err)
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func serialize(topic string, key []byte, v any) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Topic: topic,
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "schema_version", Value: []byte(domain.SchemaVersion)},
		},
	}, nil
}
