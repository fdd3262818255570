package events

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
)

//go:generate mockgen -source=consumer.go -destination=mock_consumer.go -package=events

// KafkaReader defines a Kafka consumer-group reader abstraction.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// VerdictPropagator applies a fraud verdict to its transaction.
type VerdictPropagator interface {
	PropagateVerdict(ctx context.Context, transactionID, fraudStatus string) (bool, error)
}

// NewKafkaReader builds the production reader for the lifecycle topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		SessionTimeout: 10 * time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6,
	})
}

// VerdictConsumer reacts to fraud.checked events by propagating the verdict.
// Every message is committed after handling, failed or not: the reconciler
// repairs whatever a lost propagation leaves behind.
type VerdictConsumer struct {
	reader     KafkaReader
	propagator VerdictPropagator
}

// NewVerdictConsumer creates a new VerdictConsumer.
func NewVerdictConsumer(reader KafkaReader, propagator VerdictPropagator) *VerdictConsumer {
	return &VerdictConsumer{reader: reader, propagator: propagator}
}

// Run consumes until ctx is done or the reader fails.
func (c *VerdictConsumer) Run(ctx context.Context) error {
	logger.Log.Infow("verdict consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Log.Infow("verdict consumer stopped")
				return nil
			}
			logger.Log.Errorw("failed to fetch Kafka message", "error", err)
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Log.Errorw("failed to commit Kafka message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *VerdictConsumer) handle(ctx context.Context, msg kafka.Message) {
	ev, err := Decode(msg)
	if err != nil {
		logger.Log.Warnw("skipping undecodable event", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	if ev.Type != models.EventFraudChecked {
		return
	}

	changed, err := c.propagator.PropagateVerdict(ctx, ev.TransactionID, ev.FraudStatus)
	if err != nil {
		logger.Log.Warnw("failed to propagate verdict", "transaction_id", ev.TransactionID,
			"fraud_status", ev.FraudStatus, "error", err)
		return
	}
	logger.Log.Debugw("verdict propagated", "transaction_id", ev.TransactionID,
		"fraud_status", ev.FraudStatus, "changed", changed)
}
