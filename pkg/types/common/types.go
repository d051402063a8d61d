// Package common holds small cross-cutting types shared by the domain,
// transport, and messaging layers.
package common

import (
	"time"

	"github.com/google/uuid"
)

// Metadata is an open-ended key-value bag.
type Metadata map[string]interface{}

// NewID generates a new UUID v4 string.
func NewID() string {
	return uuid.New().String()
}

// DomainEvent represents a significant event in the domain.
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides common fields for domain events.
type BaseEvent struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     string    `json:"aggregate_id"`
}

// NewBaseEvent stamps a fresh event of the given type for an aggregate.
func NewBaseEvent(eventType, aggID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		AggID:     aggID,
	}
}

func (e BaseEvent) EventID() string { return e.ID }

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func (e BaseEvent) AggregateID() string { return e.AggID }

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	// ContextKeyTenantID is the context key for the tenant identifier.
	ContextKeyTenantID ContextKey = "tenant_id"
	// ContextKeyRequestID is the context key for the request identifier.
	ContextKeyRequestID ContextKey = "request_id"
)
