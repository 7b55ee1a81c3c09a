package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/logging"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublisher_KeysByOrderID(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{w: w, topic: "order.events", log: logging.Discard()}

	evt := domain.OrderStatusEvent{OrderID: "o-42", Status: domain.StatusShipped}
	require.NoError(t, p.Publish(context.Background(), domain.EventOrderStatusUpdated, evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o-42", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventOrderStatusUpdated, string(msg.Headers[0].Value))

	var env infra.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, domain.EventOrderStatusUpdated, env.Pattern)
	assert.Equal(t, string(msg.Headers[1].Value), env.ID)
}

func TestPublisher_UnkeyedPayload(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{w: w, topic: "order.events", log: logging.Discard()}

	require.NoError(t, p.Publish(context.Background(), "ping", map[string]string{"a": "b"}))
	assert.Nil(t, w.msgs[0].Key)
}

func TestPublisher_WriteError(t *testing.T) {
	p := &Publisher{w: &fakeWriter{err: errors.New("leader not available")}, topic: "t", log: logging.Discard()}
	assert.ErrorContains(t, p.Publish(context.Background(), "x", nil), "leader not available")
}
