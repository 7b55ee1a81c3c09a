package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/infra"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a single topic keyed by the order ID so that
// all events of one order land on the same partition.
type Publisher struct {
	w     writer
	topic string
	log   *slog.Logger
}

var _ infra.EventPublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		topic: topic,
		log:   log,
	}
}

type keyed interface {
	PartitionKey() string
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	msg := infra.Envelope{Pattern: pattern, Data: data, ID: uuid.NewString()}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var key []byte
	if k, ok := data.(keyed); ok {
		key = []byte(k.PartitionKey())
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(pattern)},
			{Key: "message_id", Value: []byte(msg.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.Debug("event published", "broker", "kafka", "topic", p.topic, "pattern", pattern, "message_id", msg.ID)
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
