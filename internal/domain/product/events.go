package product

import (
	"github.com/google/uuid"

	"github.com/retailcore/commerce-batch/pkg/types/common"
)

// Event type identifiers published to the message bus.
const (
	EventProductCreated    = "product.created"
	EventProductUpdated    = "product.updated"
	EventProductDeleted    = "product.deleted"
	EventInventoryAdjusted = "inventory.adjusted"
)

type ProductCreatedEvent struct {
	common.BaseEvent
	TenantID uuid.UUID `json:"tenant_id"`
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseEvent: common.NewBaseEvent(EventProductCreated, p.ID.String()),
		TenantID:  p.TenantID,
		SKU:       p.SKU,
		Name:      p.Name,
	}
}

type ProductUpdatedEvent struct {
	common.BaseEvent
	TenantID uuid.UUID `json:"tenant_id"`
}

func NewProductUpdatedEvent(tenantID, productID uuid.UUID) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseEvent: common.NewBaseEvent(EventProductUpdated, productID.String()),
		TenantID:  tenantID,
	}
}

type ProductDeletedEvent struct {
	common.BaseEvent
	TenantID uuid.UUID `json:"tenant_id"`
}

func NewProductDeletedEvent(tenantID, productID uuid.UUID) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseEvent: common.NewBaseEvent(EventProductDeleted, productID.String()),
		TenantID:  tenantID,
	}
}

type InventoryAdjustedEvent struct {
	common.BaseEvent
	TenantID   uuid.UUID `json:"tenant_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int       `json:"quantity"`
}

func NewInventoryAdjustedEvent(level *InventoryLevel) *InventoryAdjustedEvent {
	return &InventoryAdjustedEvent{
		BaseEvent:  common.NewBaseEvent(EventInventoryAdjusted, level.ProductID.String()),
		TenantID:   level.TenantID,
		LocationID: level.LocationID,
		Quantity:   level.QuantityOnHand,
	}
}
