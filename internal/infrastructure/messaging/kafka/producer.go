package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/retailcore/commerce-batch/internal/config"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = apperrors.New(apperrors.ErrCodeInternal, "producer closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes to Kafka. Messages are keyed by tenant
// so per-tenant ordering is preserved within a topic partition.
type Producer struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a Producer from the kafka section of the config.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka brokers required")
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks,
	}

	return &Producer{writer: writer, logger: log}, nil
}

// NewProducerWithWriter injects a writer, used in tests.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log}
}

// Publish sends one envelope to topic. The message key is the envelope's
// tenant ID when set, otherwise the event ID.
func (p *Producer) Publish(ctx context.Context, topic string, env *EventEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if topic == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "topic required")
	}

	value, err := json.Marshal(env)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal envelope")
	}

	key := env.TenantID
	if key == "" {
		key = env.EventID
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "source_service", Value: []byte(env.Source)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "publish failed")
	}
	p.sent.Add(1)

	p.logger.Debug("Event published",
		logging.String("topic", topic),
		logging.String("event_type", env.EventType),
		logging.Int64("latency_ms", time.Since(start).Milliseconds()))
	return nil
}

// PublishEvent wraps payload in an envelope and publishes it on the topic
// registered for eventType.
func (p *Producer) PublishEvent(ctx context.Context, eventType, tenantID string, payload interface{}) error {
	topic, ok := TopicForEventType(eventType)
	if !ok {
		return apperrors.New(apperrors.ErrCodeValidation, "no topic for event type "+eventType)
	}
	env, err := NewEventEnvelope(eventType, tenantID, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, topic, env)
}

// Sent reports the number of successfully published messages.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Failed reports the number of failed publishes.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close flushes and closes the underlying writer. Safe to call twice.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}
