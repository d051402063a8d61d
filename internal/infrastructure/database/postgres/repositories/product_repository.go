// Package repositories contains the PostgreSQL implementations of the
// domain persistence contracts.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/common"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pqUniqueViolation = "23505"

// ProductRepository is the PostgreSQL implementation of product.Repository.
// Every statement filters on tenant_id so tenants stay isolated at the SQL
// level.
type ProductRepository struct {
	db     *sql.DB
	logger logging.Logger
}

// NewProductRepository constructs a ready-to-use ProductRepository.
func NewProductRepository(db *sql.DB, logger logging.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// Create inserts a new product row.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	metaJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal product metadata")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO commerce.products (
			id, tenant_id, sku, name, description, category,
			price, tax_rate, is_active, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.TenantID, p.SKU, p.Name, p.Description, p.Category,
		p.Price, p.TaxRate, p.IsActive, metaJSON, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return apperrors.Wrap(err, apperrors.ErrCodeProductAlreadyExists,
				"a product with this SKU already exists")
		}
		r.logger.Error("ProductRepository.Create failed", logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert product")
	}
	return nil
}

// GetByID loads one product scoped to its tenant.
func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*product.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, sku, name, description, category,
		       price, tax_rate, is_active, metadata, created_at, updated_at
		FROM commerce.products
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)

	var (
		p           product.Product
		description sql.NullString
		category    sql.NullString
		metaJSON    []byte
	)
	err := row.Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &description, &category,
		&p.Price, &p.TaxRate, &p.IsActive, &metaJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.FromCode(apperrors.ErrCodeProductNotFound)
	}
	if err != nil {
		r.logger.Error("ProductRepository.GetByID failed", logging.Err(err))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to load product")
	}

	p.Description = description.String
	p.Category = category.String
	if len(metaJSON) > 0 {
		var meta common.Metadata
		if err := json.Unmarshal(metaJSON, &meta); err == nil {
			p.Metadata = meta
		}
	}
	return &p, nil
}

// Update applies the non-nil payload fields to an existing product,
// mirroring a COALESCE-style partial update.
func (r *ProductRepository) Update(ctx context.Context, tenantID, id uuid.UUID, d product.BatchData) error {
	var metaJSON []byte
	if d.Metadata != nil {
		var err error
		metaJSON, err = json.Marshal(d.Metadata)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal product metadata")
		}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE commerce.products
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    category = COALESCE($3, category),
		    price = COALESCE($4, price),
		    tax_rate = COALESCE($5, tax_rate),
		    is_active = COALESCE($6, is_active),
		    metadata = COALESCE($7, metadata),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $8 AND tenant_id = $9`,
		d.Name, d.Description, d.Category, d.Price, d.TaxRate, d.IsActive,
		metaJSON, id, tenantID,
	)
	if err != nil {
		r.logger.Error("ProductRepository.Update failed", logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update product")
	}
	return requireRowAffected(res)
}

// SoftDelete deactivates the product instead of removing the row.
func (r *ProductRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE commerce.products
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		r.logger.Error("ProductRepository.SoftDelete failed", logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete product")
	}
	return requireRowAffected(res)
}

// UpsertInventory writes the stock level for a (product, location) pair,
// inserting the row on first write.
func (r *ProductRepository) UpsertInventory(ctx context.Context, level *product.InventoryLevel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO commerce.inventory (
			id, tenant_id, product_id, location_id,
			quantity_on_hand, quantity_available, reorder_point, reorder_quantity
		) VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET
			quantity_on_hand = $5,
			quantity_available = $5,
			updated_at = CURRENT_TIMESTAMP`,
		level.ID, level.TenantID, level.ProductID, level.LocationID,
		level.QuantityOnHand, level.ReorderPoint, level.ReorderQuantity,
	)
	if err != nil {
		r.logger.Error("ProductRepository.UpsertInventory failed", logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to upsert inventory")
	}
	return nil
}

// requireRowAffected converts a zero-row write into PRODUCT_NOT_FOUND.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read rows affected")
	}
	if n == 0 {
		return apperrors.FromCode(apperrors.ErrCodeProductNotFound)
	}
	return nil
}
