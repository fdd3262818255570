// Package events publishes transaction lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=events

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// KafkaPublisher publishes lifecycle events keyed by transaction id, so
// events of one transaction stay ordered within a partition.
type KafkaPublisher struct {
	writer KafkaWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher. A nil writer turns Publish into a no-op.
func NewKafkaPublisher(writer KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// publishBatchTimeout bounds how long Publish waits for a batch to fill.
// Publish runs on the request path after the durable write.
const publishBatchTimeout = 10 * time.Millisecond

// NewKafkaWriter builds the production writer for brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: publishBatchTimeout,
	}
}

// Publish sends ev. Failures are logged and not returned: the record that
// triggered the event is already durable and stays authoritative.
func (p *KafkaPublisher) Publish(ctx context.Context, ev models.LifecycleEvent) {
	log := logger.FromContext(ctx)
	if p.writer == nil {
		log.Debugw("Kafka writer not configured, skipping publishing", "type", ev.Type, "transaction_id", ev.TransactionID)
		return
	}

	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorw("Failed to marshal lifecycle event", "type", ev.Type, "transaction_id", ev.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(ev.TransactionID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Errorw("Failed to publish lifecycle event", "type", ev.Type, "transaction_id", ev.TransactionID, "error", err)
		return
	}
	log.Infow("Lifecycle event published", "type", ev.Type, "transaction_id", ev.TransactionID, "event_id", ev.EventID)
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Decode parses a message produced by Publish.
func Decode(msg kafka.Message) (models.LifecycleEvent, error) {
	var ev models.LifecycleEvent
	err := json.Unmarshal(msg.Value, &ev)
	return ev, err
}
