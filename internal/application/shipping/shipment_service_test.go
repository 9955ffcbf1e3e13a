package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/shipping"
	"github.com/erp/factory/internal/domain/trade"
	"github.com/erp/factory/tests/testutil"
)

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context) ([]shipping.Shipment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]shipping.Shipment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setup(t *testing.T) (*ShipmentService, *MockShipmentRepository, *testutil.MockOrderRepository, *trade.Order) {
	t.Helper()
	repo := new(MockShipmentRepository)
	orders := new(testutil.MockOrderRepository)
	order, err := trade.NewOrder("ORD-0007", nil)
	require.NoError(t, err)
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil).Maybe()
	orders.On("FindByIDs", mock.Anything, mock.Anything).Return([]trade.Order{*order}, nil).Maybe()
	return NewShipmentService(repo, orders, testutil.NewSequenceNumbers()), repo, orders, order
}

func TestShipmentService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, order := setup(t)
	repo.On("Save", ctx, mock.AnythingOfType("*shipping.Shipment")).Return(nil)

	resp, err := svc.Create(ctx, CreateShipmentRequest{
		OrderID: order.ID,
		Carrier: "DHL",
		Weight:  decimal.NewFromFloat(12.5),
		Items: []ShipmentItemInput{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(2), SerialNumbers: []string{"A-1", "A-2"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SHP-0001", resp.ShipmentNumber)
	assert.Equal(t, "ORD-0007", resp.OrderNumber)
	assert.Equal(t, "preparing", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, []string{"A-1", "A-2"}, resp.Items[0].SerialNumbers)
}

func TestShipmentService_Create_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, orders, _ := setup(t)
	missing := uuid.New()
	orders.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(ctx, CreateShipmentRequest{OrderID: missing})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_ORDER", de.Code)
}

func TestShipmentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, order := setup(t)
	sh, _ := shipping.NewShipment("SHP-1", order.ID)
	repo.On("FindByID", ctx, sh.ID).Return(sh, nil)
	repo.On("Save", ctx, sh).Return(nil)

	resp, err := svc.UpdateStatus(ctx, sh.ID, UpdateStatusRequest{Status: "in_transit"})
	require.NoError(t, err)
	assert.Equal(t, "in_transit", resp.Status)
	require.NotNil(t, resp.ShippedAt)
	shipped := *resp.ShippedAt

	resp, err = svc.UpdateStatus(ctx, sh.ID, UpdateStatusRequest{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, shipped, *resp.ShippedAt)
	assert.NotNil(t, resp.DeliveredAt)
}

func TestShipmentService_Update_Partial(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, order := setup(t)
	sh, _ := shipping.NewShipment("SHP-2", order.ID)
	sh.SetCarrier("UPS", "1Z")
	repo.On("FindByID", ctx, sh.ID).Return(sh, nil)
	repo.On("Save", ctx, sh).Return(nil)

	tracking := "1Z999"
	height := decimal.NewFromInt(40)
	resp, err := svc.Update(ctx, sh.ID, UpdateShipmentRequest{TrackingNumber: &tracking, Height: &height})
	require.NoError(t, err)
	assert.Equal(t, "UPS", resp.Carrier)
	assert.Equal(t, "1Z999", resp.TrackingNumber)
	assert.True(t, resp.Height.Equal(height))

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, sh.ID, UpdateShipmentRequest{Weight: &negative})
	assert.Error(t, err)
}

func TestShipmentService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, order := setup(t)
	a, _ := shipping.NewShipment("SHP-A", order.ID)
	b, _ := shipping.NewShipment("SHP-B", order.ID)
	require.NoError(t, b.SetStatus(shipping.StatusDelivered))
	repo.On("FindAll", ctx).Return([]shipping.Shipment{*a, *b}, nil)

	res, err := svc.List(ctx, datatable.Query{Filters: map[string]string{"status": "delivered"}, PageSize: datatable.ShowAll})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "SHP-B", res.Rows[0].ShipmentNumber)
	assert.Equal(t, "ORD-0007", res.Rows[0].OrderNumber)
}
