package infra

import "context"

// EventPublisher delivers a domain event to the configured broker under
// the given routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// Envelope is the wire shape shared by every broker implementation.
type Envelope struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id,omitempty"`
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

var _ EventPublisher = NopPublisher{}
