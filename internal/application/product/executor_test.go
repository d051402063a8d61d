package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainProduct "github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	"github.com/retailcore/commerce-batch/internal/testutil"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
	"github.com/retailcore/commerce-batch/pkg/types/common"
)

type mockRepo struct {
	createFunc          func(ctx context.Context, p *domainProduct.Product) error
	getByIDFunc         func(ctx context.Context, tenantID, id uuid.UUID) (*domainProduct.Product, error)
	updateFunc          func(ctx context.Context, tenantID, id uuid.UUID, d domainProduct.BatchData) error
	softDeleteFunc      func(ctx context.Context, tenantID, id uuid.UUID) error
	upsertInventoryFunc func(ctx context.Context, level *domainProduct.InventoryLevel) error
}

func (m *mockRepo) Create(ctx context.Context, p *domainProduct.Product) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domainProduct.Product, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, apperrors.New(apperrors.ErrCodeProductNotFound, "product not found")
}

func (m *mockRepo) Update(ctx context.Context, tenantID, id uuid.UUID, d domainProduct.BatchData) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, tenantID, id, d)
	}
	return nil
}

func (m *mockRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, tenantID, id)
	}
	return nil
}

func (m *mockRepo) UpsertInventory(ctx context.Context, level *domainProduct.InventoryLevel) error {
	if m.upsertInventoryFunc != nil {
		return m.upsertInventoryFunc(ctx, level)
	}
	return nil
}

type publishedEvent struct {
	eventType string
	tenantID  string
	payload   interface{}
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) PublishEvent(_ context.Context, eventType, tenantID string, payload interface{}) error {
	m.events = append(m.events, publishedEvent{eventType, tenantID, payload})
	return m.err
}

type mockCache struct {
	prefixes []string
	err      error
}

func (m *mockCache) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	m.prefixes = append(m.prefixes, prefix)
	return 1, m.err
}

func strPtr(s string) *string      { return &s }
func f64Ptr(f float64) *float64    { return &f }
func intPtr(i int) *int            { return &i }
func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func newOp(opType string, d domainProduct.BatchData) batchtypes.BatchOperation[domainProduct.BatchData] {
	return batchtypes.BatchOperation[domainProduct.BatchData]{
		ID:            "op-1",
		OperationType: opType,
		Data:          d,
	}
}

func TestSupports(t *testing.T) {
	e := NewExecutor(&mockRepo{}, logging.NewNopLogger())

	for _, op := range domainProduct.SupportedOperations {
		assert.True(t, e.Supports(op), op)
	}
	assert.False(t, e.Supports("archive"))
	assert.False(t, e.Supports(""))
}

func TestExecute_Create(t *testing.T) {
	tenantID := uuid.New()
	var created *domainProduct.Product
	repo := &mockRepo{
		createFunc: func(_ context.Context, p *domainProduct.Product) error {
			created = p
			return nil
		},
	}
	pub := &mockPublisher{}
	cache := &mockCache{}
	e := NewExecutor(repo, logging.NewNopLogger(), WithPublisher(pub), WithCache(cache))

	out, err := e.Execute(context.Background(), newOp(domainProduct.OpCreate, domainProduct.BatchData{
		TenantID: tenantID,
		SKU:      strPtr("SKU-1"),
		Name:     strPtr("Widget"),
		Price:    f64Ptr(9.99),
	}))

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, tenantID, created.TenantID)
	assert.Equal(t, "SKU-1", created.SKU)

	result, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, created.ID.String(), result["product_id"])
	assert.Equal(t, "SKU-1", result["sku"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, domainProduct.EventProductCreated, pub.events[0].eventType)
	assert.Equal(t, tenantID.String(), pub.events[0].tenantID)

	require.Len(t, cache.prefixes, 1)
	assert.Equal(t, "products:"+tenantID.String(), cache.prefixes[0])
}

func TestExecute_Create_RepoErrorPropagates(t *testing.T) {
	repo := &mockRepo{
		createFunc: func(_ context.Context, _ *domainProduct.Product) error {
			return apperrors.New(apperrors.ErrCodeProductAlreadyExists, "duplicate sku")
		},
	}
	pub := &mockPublisher{}
	e := NewExecutor(repo, logging.NewNopLogger(), WithPublisher(pub))

	_, err := e.Execute(context.Background(), newOp(domainProduct.OpCreate, domainProduct.BatchData{
		TenantID: uuid.New(),
		SKU:      strPtr("SKU-1"),
	}))

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeProductAlreadyExists))
	assert.Empty(t, pub.events)
}

func TestExecute_TenantFromContextWins(t *testing.T) {
	ctxTenant := uuid.New()
	var created *domainProduct.Product
	repo := &mockRepo{
		createFunc: func(_ context.Context, p *domainProduct.Product) error {
			created = p
			return nil
		},
	}
	e := NewExecutor(repo, logging.NewNopLogger())

	ctx := context.WithValue(context.Background(), common.ContextKeyTenantID, ctxTenant)
	_, err := e.Execute(ctx, newOp(domainProduct.OpCreate, domainProduct.BatchData{
		TenantID: uuid.New(),
		SKU:      strPtr("SKU-1"),
	}))

	require.NoError(t, err)
	assert.Equal(t, ctxTenant, created.TenantID)
}

func TestExecute_MissingTenant(t *testing.T) {
	e := NewExecutor(&mockRepo{}, logging.NewNopLogger())

	_, err := e.Execute(context.Background(), newOp(domainProduct.OpCreate, domainProduct.BatchData{
		SKU: strPtr("SKU-1"),
	}))

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingTenantID))
}

func TestExecute_Update(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	var gotData domainProduct.BatchData
	repo := &mockRepo{
		updateFunc: func(_ context.Context, gotTenant, gotID uuid.UUID, d domainProduct.BatchData) error {
			assert.Equal(t, tenantID, gotTenant)
			assert.Equal(t, productID, gotID)
			gotData = d
			return nil
		},
	}
	pub := &mockPublisher{}
	e := NewExecutor(repo, logging.NewNopLogger(), WithPublisher(pub))

	out, err := e.Execute(context.Background(), newOp(domainProduct.OpUpdate, domainProduct.BatchData{
		TenantID: tenantID,
		ID:       idPtr(productID),
		Price:    f64Ptr(19.99),
	}))

	require.NoError(t, err)
	require.NotNil(t, gotData.Price)
	assert.Equal(t, 19.99, *gotData.Price)

	result := out.(map[string]interface{})
	assert.Equal(t, productID.String(), result["product_id"])
	assert.Equal(t, true, result["updated"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, domainProduct.EventProductUpdated, pub.events[0].eventType)
}

func TestExecute_Update_MissingID(t *testing.T) {
	e := NewExecutor(&mockRepo{}, logging.NewNopLogger())

	_, err := e.Execute(context.Background(), newOp(domainProduct.OpUpdate, domainProduct.BatchData{
		TenantID: uuid.New(),
		Price:    f64Ptr(19.99),
	}))

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingID))
}

func TestExecute_Delete(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	deleted := false
	repo := &mockRepo{
		softDeleteFunc: func(_ context.Context, gotTenant, gotID uuid.UUID) error {
			assert.Equal(t, tenantID, gotTenant)
			assert.Equal(t, productID, gotID)
			deleted = true
			return nil
		},
	}
	pub := &mockPublisher{}
	e := NewExecutor(repo, logging.NewNopLogger(), WithPublisher(pub))

	out, err := e.Execute(context.Background(), newOp(domainProduct.OpDelete, domainProduct.BatchData{
		TenantID: tenantID,
		ID:       idPtr(productID),
	}))

	require.NoError(t, err)
	assert.True(t, deleted)

	result := out.(map[string]interface{})
	assert.Equal(t, true, result["deleted"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, domainProduct.EventProductDeleted, pub.events[0].eventType)
}

func TestExecute_UpdateInventory(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()
	var level *domainProduct.InventoryLevel
	repo := &mockRepo{
		upsertInventoryFunc: func(_ context.Context, l *domainProduct.InventoryLevel) error {
			level = l
			return nil
		},
	}
	pub := &mockPublisher{}
	e := NewExecutor(repo, logging.NewNopLogger(), WithPublisher(pub))

	out, err := e.Execute(context.Background(), newOp(domainProduct.OpUpdateInventory, domainProduct.BatchData{
		TenantID:   tenantID,
		ID:         idPtr(productID),
		LocationID: idPtr(locationID),
		Quantity:   intPtr(25),
	}))

	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 25, level.QuantityOnHand)
	assert.Equal(t, 25, level.QuantityAvailable)
	assert.Equal(t, domainProduct.DefaultReorderPoint, level.ReorderPoint)
	assert.Equal(t, domainProduct.DefaultReorderQuantity, level.ReorderQuantity)

	result := out.(map[string]interface{})
	assert.Equal(t, 25, result["quantity"])
	assert.Equal(t, locationID.String(), result["location_id"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, domainProduct.EventInventoryAdjusted, pub.events[0].eventType)
}

func TestExecute_UpdateInventory_MissingFields(t *testing.T) {
	e := NewExecutor(&mockRepo{}, logging.NewNopLogger())
	tenantID := uuid.New()
	productID := uuid.New()

	_, err := e.Execute(context.Background(), newOp(domainProduct.OpUpdateInventory, domainProduct.BatchData{
		TenantID: tenantID,
		ID:       idPtr(productID),
		Quantity: intPtr(5),
	}))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingLocationID))

	_, err = e.Execute(context.Background(), newOp(domainProduct.OpUpdateInventory, domainProduct.BatchData{
		TenantID:   tenantID,
		ID:         idPtr(productID),
		LocationID: idPtr(uuid.New()),
	}))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingQuantity))
}

func TestExecute_PublishFailureDoesNotFailOperation(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	cache := &mockCache{err: errors.New("redis down")}
	log := testutil.NewMockLogger()
	e := NewExecutor(&mockRepo{}, log, WithPublisher(pub), WithCache(cache))

	_, err := e.Execute(context.Background(), newOp(domainProduct.OpCreate, domainProduct.BatchData{
		TenantID: uuid.New(),
		SKU:      strPtr("SKU-1"),
	}))

	assert.NoError(t, err)
	assert.True(t, log.HasMessage("Failed to publish event"))
	assert.True(t, log.HasMessage("Failed to invalidate product cache"))
}

func TestExecute_UnsupportedOperation(t *testing.T) {
	e := NewExecutor(&mockRepo{}, logging.NewNopLogger())

	_, err := e.Execute(context.Background(), newOp("archive", domainProduct.BatchData{
		TenantID: uuid.New(),
	}))

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnsupportedOperation))
}
