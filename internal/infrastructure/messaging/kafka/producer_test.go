package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/commerce-batch/internal/config"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
	written   []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.written = append(m.written, msgs...)
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, logging.NewNopLogger())
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestNewProducer_Valid(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	env, err := NewEventEnvelope("product.created", "tenant-1", ProductCreatedPayload{
		ProductID: "p1",
		SKU:       "SKU-1",
	})
	require.NoError(t, err)

	err = p.Publish(context.Background(), TopicProductCreated, env)
	require.NoError(t, err)
	require.Len(t, w.written, 1)

	msg := w.written[0]
	assert.Equal(t, TopicProductCreated, msg.Topic)
	assert.Equal(t, []byte("tenant-1"), msg.Key)
	assert.Equal(t, int64(1), p.Sent())
}

func TestPublish_KeyFallsBackToEventID(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	env, err := NewEventEnvelope("batch.completed", "", BatchCompletedPayload{BatchID: "b1"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), TopicBatchCompleted, env))
	require.Len(t, w.written, 1)
	assert.Equal(t, []byte(env.EventID), w.written[0].Key)
}

func TestPublish_EmptyTopic(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})

	env, _ := NewEventEnvelope("product.created", "tenant-1", ProductCreatedPayload{})
	err := p.Publish(context.Background(), "", env)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_WriteFailure(t *testing.T) {
	w := &mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("broker unreachable")
		},
	}
	p := newTestProducer(w)

	env, _ := NewEventEnvelope("product.created", "tenant-1", ProductCreatedPayload{})
	err := p.Publish(context.Background(), TopicProductCreated, env)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInternal))
	assert.Equal(t, int64(1), p.Failed())
}

func TestPublish_AfterClose(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	require.NoError(t, p.Close())

	env, _ := NewEventEnvelope("product.created", "tenant-1", ProductCreatedPayload{})
	err := p.Publish(context.Background(), TopicProductCreated, env)
	assert.Equal(t, ErrProducerClosed, err)
}

func TestPublishEvent_RoutesToTopic(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.PublishEvent(context.Background(), "inventory.adjusted", "tenant-1",
		InventoryAdjustedPayload{ProductID: "p1", LocationID: "l1", Quantity: 5})

	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicInventoryAdjusted, w.written[0].Topic)
}

func TestPublishEvent_UnknownType(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})

	err := p.PublishEvent(context.Background(), "order.shipped", "tenant-1", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestClose_Idempotent(t *testing.T) {
	closes := 0
	w := &mockKafkaWriter{closeFunc: func() error { closes++; return nil }}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)
}
