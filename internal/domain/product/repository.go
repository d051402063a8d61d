package product

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the product catalog. All
// reads and writes are tenant scoped; implementations must never let one
// tenant touch another tenant's rows.
type Repository interface {
	// Create inserts a new product. A duplicate (tenant_id, sku) pair fails
	// with PRODUCT_ALREADY_EXISTS.
	Create(ctx context.Context, p *Product) error

	// GetByID loads a product. Returns PRODUCT_NOT_FOUND when absent.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// Update applies the partial payload to an existing product, leaving
	// absent fields untouched. Returns PRODUCT_NOT_FOUND when no row matches.
	Update(ctx context.Context, tenantID, id uuid.UUID, d BatchData) error

	// SoftDelete flips the product inactive. Returns PRODUCT_NOT_FOUND when
	// no row matches.
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error

	// UpsertInventory sets the on-hand and available quantities for a
	// (product, location) pair, inserting the row on first write.
	UpsertInventory(ctx context.Context, level *InventoryLevel) error
}
