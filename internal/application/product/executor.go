// Package product provides the application-level executor that carries
// product batch operations from the batch engine into the catalog domain.
package product

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainProduct "github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/messaging/kafka"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
	"github.com/retailcore/commerce-batch/pkg/types/common"
)

// EventPublisher is the slice of the Kafka producer the executor needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, tenantID string, payload interface{}) error
}

// CacheInvalidator drops cached reads after a write. Satisfied by the redis
// cache.
type CacheInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Executor routes product batch operations to the repository. Events and
// cache invalidation are best effort: a failed publish never fails the
// operation that already committed.
type Executor struct {
	repo      domainProduct.Repository
	publisher EventPublisher
	cache     CacheInvalidator
	logger    logging.Logger
}

// Option configures the Executor.
type Option func(*Executor)

// WithPublisher attaches an event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(e *Executor) { e.publisher = p }
}

// WithCache attaches a cache invalidator.
func WithCache(c CacheInvalidator) Option {
	return func(e *Executor) { e.cache = c }
}

// NewExecutor builds an Executor over the repository.
func NewExecutor(repo domainProduct.Repository, log logging.Logger, opts ...Option) *Executor {
	e := &Executor{repo: repo, logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether operationType is a product operation.
func (e *Executor) Supports(operationType string) bool {
	for _, op := range domainProduct.SupportedOperations {
		if op == operationType {
			return true
		}
	}
	return false
}

// Execute runs one operation and returns its result payload.
func (e *Executor) Execute(ctx context.Context, op batchtypes.BatchOperation[domainProduct.BatchData]) (any, error) {
	tenantID, err := resolveTenant(ctx, op.Data)
	if err != nil {
		return nil, err
	}

	switch op.OperationType {
	case domainProduct.OpCreate:
		return e.create(ctx, tenantID, op.Data)
	case domainProduct.OpUpdate:
		return e.update(ctx, tenantID, op.Data)
	case domainProduct.OpDelete:
		return e.delete(ctx, tenantID, op.Data)
	case domainProduct.OpUpdateInventory:
		return e.updateInventory(ctx, tenantID, op.Data)
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedOperation,
			"unsupported operation type: "+op.OperationType)
	}
}

// resolveTenant prefers the authenticated tenant from the request context
// and falls back to the payload.
func resolveTenant(ctx context.Context, d domainProduct.BatchData) (uuid.UUID, error) {
	if v := ctx.Value(common.ContextKeyTenantID); v != nil {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, nil
		}
	}
	if d.TenantID != uuid.Nil {
		return d.TenantID, nil
	}
	return uuid.Nil, apperrors.New(apperrors.ErrCodeMissingTenantID, "missing required field: tenant_id")
}

func (e *Executor) create(ctx context.Context, tenantID uuid.UUID, d domainProduct.BatchData) (any, error) {
	p := domainProduct.NewProduct(tenantID, d)
	if err := e.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	e.publish(ctx, domainProduct.EventProductCreated, tenantID, kafka.ProductCreatedPayload{
		ProductID: p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	})
	e.invalidate(ctx, tenantID)

	return map[string]interface{}{
		"product_id": p.ID.String(),
		"sku":        p.SKU,
	}, nil
}

func (e *Executor) update(ctx context.Context, tenantID uuid.UUID, d domainProduct.BatchData) (any, error) {
	id, err := d.RequireID()
	if err != nil {
		return nil, err
	}
	if err := e.repo.Update(ctx, tenantID, id, d); err != nil {
		return nil, err
	}

	e.publish(ctx, domainProduct.EventProductUpdated, tenantID, kafka.ProductUpdatedPayload{
		ProductID: id.String(),
		UpdatedAt: time.Now().UTC(),
	})
	e.invalidate(ctx, tenantID)

	return map[string]interface{}{
		"product_id": id.String(),
		"updated":    true,
	}, nil
}

func (e *Executor) delete(ctx context.Context, tenantID uuid.UUID, d domainProduct.BatchData) (any, error) {
	id, err := d.RequireID()
	if err != nil {
		return nil, err
	}
	if err := e.repo.SoftDelete(ctx, tenantID, id); err != nil {
		return nil, err
	}

	e.publish(ctx, domainProduct.EventProductDeleted, tenantID, kafka.ProductDeletedPayload{
		ProductID: id.String(),
		DeletedAt: time.Now().UTC(),
	})
	e.invalidate(ctx, tenantID)

	return map[string]interface{}{
		"product_id": id.String(),
		"deleted":    true,
	}, nil
}

func (e *Executor) updateInventory(ctx context.Context, tenantID uuid.UUID, d domainProduct.BatchData) (any, error) {
	id, err := d.RequireID()
	if err != nil {
		return nil, err
	}
	locationID, err := d.RequireLocationID()
	if err != nil {
		return nil, err
	}
	quantity, err := d.RequireQuantity()
	if err != nil {
		return nil, err
	}

	level := &domainProduct.InventoryLevel{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ProductID:         id,
		LocationID:        locationID,
		QuantityOnHand:    quantity,
		QuantityAvailable: quantity,
		ReorderPoint:      domainProduct.DefaultReorderPoint,
		ReorderQuantity:   domainProduct.DefaultReorderQuantity,
	}
	if err := e.repo.UpsertInventory(ctx, level); err != nil {
		return nil, err
	}

	e.publish(ctx, domainProduct.EventInventoryAdjusted, tenantID, kafka.InventoryAdjustedPayload{
		ProductID:  id.String(),
		LocationID: locationID.String(),
		Quantity:   quantity,
		AdjustedAt: time.Now().UTC(),
	})
	e.invalidate(ctx, tenantID)

	return map[string]interface{}{
		"product_id":  id.String(),
		"location_id": locationID.String(),
		"quantity":    quantity,
	}, nil
}

func (e *Executor) publish(ctx context.Context, eventType string, tenantID uuid.UUID, payload interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvent(ctx, eventType, tenantID.String(), payload); err != nil {
		e.logger.Warn("Failed to publish event",
			logging.String("event_type", eventType),
			logging.Err(err))
	}
}

func (e *Executor) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if e.cache == nil {
		return
	}
	if _, err := e.cache.DeleteByPrefix(ctx, "products:"+tenantID.String()); err != nil {
		e.logger.Warn("Failed to invalidate product cache",
			logging.String("tenant_id", tenantID.String()),
			logging.Err(err))
	}
}
