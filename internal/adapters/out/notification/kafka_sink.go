// Package notification publishes delivery status changes.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/outbox"
	"marketplace/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

var _ ports.NotificationSink = (*KafkaSink)(nil)

// writeBatchTimeout bounds how long a single notification waits for a batch
// to fill. Notify is called on the request path with one message at a time.
const writeBatchTimeout = 5 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per status change, keyed by delivery ID so
// the changes of a delivery stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	return newKafkaSink(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           writeBatchTimeout,
		AllowAutoTopicCreation: true,
	}, topic), nil
}

func newKafkaSink(writer messageWriter, topic string) *KafkaSink {
	return &KafkaSink{writer: writer, topic: topic}
}

// Notify publishes n and waits for the brokers to acknowledge it.
func (s *KafkaSink) Notify(ctx context.Context, n outbox.NotificationPayload) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Key:   []byte(n.DeliveryID),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(n.Event)},
			{Key: "new_status", Value: []byte(n.NewStatus)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
