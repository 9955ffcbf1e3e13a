package manufacturing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/manufacturing"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/workforce"
	"github.com/erp/factory/tests/testutil"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]manufacturing.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]manufacturing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySourceOrder(ctx context.Context, id uuid.UUID) ([]manufacturing.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]manufacturing.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *manufacturing.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockBOMRepository struct {
	mock.Mock
}

func (m *MockBOMRepository) FindComponents(ctx context.Context, parentID uuid.UUID) ([]catalog.ProductComponent, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]catalog.ProductComponent), args.Error(1)
}

func (m *MockBOMRepository) FindLine(ctx context.Context, parentID, componentID uuid.UUID) (*catalog.ProductComponent, error) {
	args := m.Called(ctx, parentID, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductComponent), args.Error(1)
}

func (m *MockBOMRepository) Graph(ctx context.Context) (catalog.BOMGraph, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.BOMGraph), args.Error(1)
}

func (m *MockBOMRepository) Save(ctx context.Context, line *catalog.ProductComponent) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockBOMRepository) Delete(ctx context.Context, parentID, componentID uuid.UUID) error {
	return m.Called(ctx, parentID, componentID).Error(0)
}

func (m *MockBOMRepository) IsUsedAsComponent(ctx context.Context, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workforce.Worker), args.Error(1)
}

func (m *MockWorkerRepository) FindAll(ctx context.Context) ([]workforce.Worker, error) {
	args := m.Called(ctx)
	return args.Get(0).([]workforce.Worker), args.Error(1)
}

func (m *MockWorkerRepository) ExistsByEmployeeNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkerRepository) Save(ctx context.Context, w *workforce.Worker) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWorkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type moFixture struct {
	orders   *MockOrderRepository
	products *testutil.MockProductRepository
	bom      *MockBOMRepository
	workers  *MockWorkerRepository
	stock    *testutil.MockStock
	tx       *testutil.InlineTx
	svc      *OrderService
	table    *catalog.Product
}

func newMOFixture(t *testing.T) *moFixture {
	t.Helper()
	f := &moFixture{
		orders:   new(MockOrderRepository),
		products: new(testutil.MockProductRepository),
		bom:      new(MockBOMRepository),
		workers:  new(MockWorkerRepository),
		stock:    new(testutil.MockStock),
		tx:       &testutil.InlineTx{},
	}
	f.svc = NewOrderService(Deps{
		Orders: f.orders, Products: f.products, BOM: f.bom, Workers: f.workers,
		Stock: f.stock, Numbers: testutil.NewSequenceNumbers(), Tx: f.tx,
	})
	var err error
	f.table, err = catalog.NewProduct("TABLE", "Table", "pcs")
	require.NoError(t, err)
	f.products.On("FindByID", mock.Anything, f.table.ID).Return(f.table, nil).Maybe()
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*f.table}, nil).Maybe()
	return f
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	top, _ := catalog.NewProduct("TOP", "Table top", "pcs")
	_ = top.SetPrices(decimal.NewFromInt(30), decimal.Zero)
	leg, _ := catalog.NewProduct("LEG", "Leg", "pcs")
	_ = leg.SetPrices(decimal.NewFromInt(5), decimal.Zero)
	f.bom.On("FindComponents", ctx, f.table.ID).Return([]catalog.ProductComponent{
		{ComponentID: top.ID, Quantity: decimal.NewFromInt(1), Component: top},
		{ComponentID: leg.ID, Quantity: decimal.NewFromInt(4), Component: leg},
	}, nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.Order")).Return(nil)

	labor := decimal.NewFromInt(100)
	resp, err := f.svc.Create(ctx, CreateOrderRequest{ProductID: f.table.ID, PlannedQuantity: 10, LaborCost: &labor, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "MO-0001", resp.OrderNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "high", resp.Priority)
	assert.True(t, resp.MaterialCost.Equal(decimal.NewFromInt(500)), resp.MaterialCost.String())
	assert.True(t, resp.TotalCost.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Table", resp.ProductName)
}

func TestOrderService_StartThenComplete(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	o, err := manufacturing.NewOrder("MO-1", f.table.ID, 100)
	require.NoError(t, err)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)

	resp, err := f.svc.Start(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)
	assert.NotNil(t, resp.StartedAt)

	resp, err = f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 95})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 95, resp.ProducedQuantity)
	assert.Equal(t, 1, f.tx.Calls)
	f.stock.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Complete_Overproduction(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	o, _ := manufacturing.NewOrder("MO-2", f.table.ID, 10)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 11})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "OVERPRODUCTION", de.Code)
	assert.Equal(t, manufacturing.StatusPending, o.Status)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	f.orders.On("Save", mock.Anything, o).Return(nil)
	resp, err := f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 11, Override: true})
	require.NoError(t, err)
	assert.Equal(t, 11, resp.ProducedQuantity)
}

func TestOrderService_Complete_StocksWarehouseAndSerials(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	warehouse := uuid.New()
	o, _ := manufacturing.NewOrder("MO-3", f.table.ID, 3)
	o.Assign(nil, &warehouse, nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.stock.On("AddStock", mock.Anything, f.table.ID, warehouse, decimal.NewFromInt(2)).Return(nil)

	resp, err := f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 2, GenerateSerialNumbers: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"TABLE-0001", "TABLE-0002"}, resp.SerialNumbers)
	f.stock.AssertExpectations(t)

	_, err = f.svc.GenerateSerialNumbers(ctx, o.ID, SerialNumbersRequest{})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SERIALS_COMPLETE", de.Code)

	resp, err = f.svc.GenerateSerialNumbers(ctx, o.ID, SerialNumbersRequest{Count: 1})
	require.NoError(t, err)
	assert.Len(t, resp.SerialNumbers, 3)
}

func TestOrderService_PauseResumeStop(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	o, _ := manufacturing.NewOrder("MO-4", f.table.ID, 5)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)

	resp, err := f.svc.Pause(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "paused", resp.Status)
	assert.NotNil(t, resp.PausedAt)

	resp, err = f.svc.Resume(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)

	resp, err = f.svc.Stop(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
}

func TestOrderService_Transition_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)
	id := uuid.New()
	f.orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Start(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_Complete_AgainStocksOnlyTheDifference(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	warehouse := uuid.New()
	o, _ := manufacturing.NewOrder("MO-5", f.table.ID, 100)
	o.Assign(nil, &warehouse, nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.stock.On("AddStock", mock.Anything, f.table.ID, warehouse, decimal.NewFromInt(95)).Return(nil).Once()
	f.stock.On("AddStock", mock.Anything, f.table.ID, warehouse, decimal.NewFromInt(3)).Return(nil).Once()

	_, err := f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 95})
	require.NoError(t, err)
	_, err = f.svc.Resume(ctx, o.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 95})
	require.NoError(t, err)
	assert.Equal(t, 95, o.StockedQuantity)

	_, err = f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 98})
	require.NoError(t, err)
	assert.Equal(t, 98, o.StockedQuantity)

	// lowering the produced quantity leaves stock alone
	resp, err := f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 90})
	require.NoError(t, err)
	assert.Equal(t, 90, resp.ProducedQuantity)
	assert.Equal(t, 98, o.StockedQuantity)

	f.stock.AssertExpectations(t)
	f.stock.AssertNumberOfCalls(t, "AddStock", 2)
}

func TestOrderService_Complete_SerialsAlreadyGenerated(t *testing.T) {
	ctx := context.Background()
	f := newMOFixture(t)

	o, _ := manufacturing.NewOrder("MO-6", f.table.ID, 4)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)

	resp, err := f.svc.GenerateSerialNumbers(ctx, o.ID, SerialNumbersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.SerialNumbers, 4)

	resp, err = f.svc.Complete(ctx, o.ID, CompleteRequest{ProducedQuantity: 3, GenerateSerialNumbers: true})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 3, resp.ProducedQuantity)
	assert.Len(t, resp.SerialNumbers, 4)
}
