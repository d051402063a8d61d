// Package product implements the product catalog bounded context: the
// Product and inventory aggregates, the batch payload carried by product
// batch operations, and the persistence contract. Infrastructure concerns
// live in separate adapter layers.
package product

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/common"
)

// Operation type identifiers accepted in product batch requests.
const (
	OpCreate          = "create"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpUpdateInventory = "update_inventory"
)

// SupportedOperations lists every operation type the product executor
// handles.
var SupportedOperations = []string{OpCreate, OpUpdate, OpDelete, OpUpdateInventory}

// Product is the catalog aggregate root. Every product belongs to exactly
// one tenant; deletion is a soft delete via IsActive.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       float64         `json:"price"`
	TaxRate     float64         `json:"tax_rate"`
	IsActive    bool            `json:"is_active"`
	Metadata    common.Metadata `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InventoryLevel is the stock record for one product at one location.
// Quantities are upserted as a whole; QuantityAvailable mirrors
// QuantityOnHand until reservations are built on top.
type InventoryLevel struct {
	ID                uuid.UUID `json:"id"`
	TenantID          uuid.UUID `json:"tenant_id"`
	ProductID         uuid.UUID `json:"product_id"`
	LocationID        uuid.UUID `json:"location_id"`
	QuantityOnHand    int       `json:"quantity_on_hand"`
	QuantityAvailable int       `json:"quantity_available"`
	ReorderPoint      int       `json:"reorder_point"`
	ReorderQuantity   int       `json:"reorder_quantity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Default reorder thresholds for inventory rows created through a batch
// upsert.
const (
	DefaultReorderPoint    = 10
	DefaultReorderQuantity = 50
)

// BatchData is the payload of one product batch operation. Apart from the
// tenant every field is optional; each operation type validates the subset
// it needs.
type BatchData struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	LocationID  *uuid.UUID      `json:"location_id,omitempty"`
	SKU         *string         `json:"sku,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	TaxRate     *float64        `json:"tax_rate,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	Quantity    *int            `json:"quantity,omitempty"`
	Metadata    common.Metadata `json:"metadata,omitempty"`
}

// RequireID returns the payload's product ID or a MISSING_ID error.
func (d BatchData) RequireID() (uuid.UUID, error) {
	if d.ID == nil {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeMissingID, "missing required field: id")
	}
	return *d.ID, nil
}

// RequireLocationID returns the payload's location ID or a
// MISSING_LOCATION_ID error.
func (d BatchData) RequireLocationID() (uuid.UUID, error) {
	if d.LocationID == nil {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeMissingLocationID, "missing required field: location_id")
	}
	return *d.LocationID, nil
}

// RequireQuantity returns the payload's quantity or a MISSING_QUANTITY error.
func (d BatchData) RequireQuantity() (int, error) {
	if d.Quantity == nil {
		return 0, apperrors.New(apperrors.ErrCodeMissingQuantity, "missing required field: quantity")
	}
	return *d.Quantity, nil
}

// NewProduct builds a Product from a create payload. Optional fields fall
// back to their catalog defaults: zero tax, active, empty metadata.
func NewProduct(tenantID uuid.UUID, d BatchData) *Product {
	now := time.Now().UTC()
	p := &Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		IsActive:  true,
		Metadata:  d.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.SKU != nil {
		p.SKU = *d.SKU
	}
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Category != nil {
		p.Category = *d.Category
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.TaxRate != nil {
		p.TaxRate = *d.TaxRate
	}
	if d.IsActive != nil {
		p.IsActive = *d.IsActive
	}
	return p
}

// ApplyUpdate merges the non-nil fields of an update payload into the
// product, mirroring a COALESCE-style partial update.
func (p *Product) ApplyUpdate(d BatchData) {
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Category != nil {
		p.Category = *d.Category
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.TaxRate != nil {
		p.TaxRate = *d.TaxRate
	}
	if d.IsActive != nil {
		p.IsActive = *d.IsActive
	}
	if d.Metadata != nil {
		p.Metadata = d.Metadata
	}
	p.UpdatedAt = time.Now().UTC()
}

// Deactivate soft-deletes the product.
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
}
