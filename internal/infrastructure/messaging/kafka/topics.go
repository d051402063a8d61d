package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
)

// Topic constants.
const (
	TopicProductCreated    = "product.created"
	TopicProductUpdated    = "product.updated"
	TopicProductDeleted    = "product.deleted"
	TopicInventoryAdjusted = "inventory.adjusted"
	TopicBatchCompleted    = "batch.completed"
)

// sourceService identifies this service in event envelopes.
const sourceService = "commerce-batch"

// EventEnvelope standardizes event messages across topics.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TenantID      string            `json:"tenant_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ProductCreatedPayload is published to TopicProductCreated.
type ProductCreatedPayload struct {
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductUpdatedPayload is published to TopicProductUpdated.
type ProductUpdatedPayload struct {
	ProductID string    `json:"product_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductDeletedPayload is published to TopicProductDeleted.
type ProductDeletedPayload struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// InventoryAdjustedPayload is published to TopicInventoryAdjusted.
type InventoryAdjustedPayload struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int       `json:"quantity"`
	AdjustedAt time.Time `json:"adjusted_at"`
}

// BatchCompletedPayload is published to TopicBatchCompleted once a batch
// reaches a terminal state.
type BatchCompletedPayload struct {
	BatchID     string    `json:"batch_id"`
	Status      string    `json:"status"`
	Total       int       `json:"total_operations"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	DurationMs  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEventEnvelope wraps a payload for publishing.
func NewEventEnvelope(eventType, tenantID string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        sourceService,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		TenantID:      tenantID,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return apperrors.New(apperrors.ErrCodeValidation, "envelope has no payload")
	}
	return json.Unmarshal(e.Payload, target)
}

// TopicForEventType maps a domain event type to the topic it is published on.
func TopicForEventType(eventType string) (string, bool) {
	switch eventType {
	case "product.created":
		return TopicProductCreated, true
	case "product.updated":
		return TopicProductUpdated, true
	case "product.deleted":
		return TopicProductDeleted, true
	case "inventory.adjusted":
		return TopicInventoryAdjusted, true
	case "batch.completed":
		return TopicBatchCompleted, true
	default:
		return "", false
	}
}
