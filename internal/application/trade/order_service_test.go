package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/trade"
	"github.com/erp/factory/tests/testutil"
)

type orderFixture struct {
	orders   *testutil.MockOrderRepository
	clients  *testutil.MockClientRepository
	products *testutil.MockProductRepository
	svc      *OrderService
	client   *partner.Client
	chair    *catalog.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   new(testutil.MockOrderRepository),
		clients:  new(testutil.MockClientRepository),
		products: new(testutil.MockProductRepository),
	}
	f.svc = NewOrderService(f.orders, f.clients, f.products, testutil.NewSequenceNumbers())

	var err error
	f.client, err = partner.NewClient("Acme", partner.ClientTypeCustomer, shared.ManualRef())
	require.NoError(t, err)
	f.chair, err = catalog.NewProduct("CHAIR", "Chair", "pcs")
	require.NoError(t, err)

	f.clients.On("FindByID", mock.Anything, f.client.ID).Return(f.client, nil).Maybe()
	f.clients.On("FindByIDs", mock.Anything, mock.Anything).Return([]partner.Client{*f.client}, nil).Maybe()
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.chair.ID}).Return([]catalog.Product{*f.chair}, nil).Maybe()
	return f
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.orders.On("Save", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

	resp, err := f.svc.Create(ctx, CreateOrderRequest{
		ClientID: &f.client.ID,
		Items: []OrderItemInput{
			{ProductID: f.chair.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(49.5)},
			{ProductID: f.chair.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-0001", resp.OrderNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Acme", resp.ClientName)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(109)), resp.TotalAmount.String())
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "CHAIR", resp.Items[0].ProductSKU)
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	missing := uuid.New()
	f.products.On("FindByIDs", ctx, []uuid.UUID{missing}).Return([]catalog.Product{}, nil)

	_, err := f.svc.Create(ctx, CreateOrderRequest{Items: []OrderItemInput{{ProductID: missing, Quantity: decimal.NewFromInt(1)}}})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRODUCT", de.Code)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_Update_ReplacesItems(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	order, _ := trade.NewOrder("ORD-7", nil)
	_, _ = order.AddItem(f.chair.ID, decimal.NewFromInt(5), decimal.NewFromInt(10))
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("Save", ctx, order).Return(nil)

	notes := "rush"
	items := []OrderItemInput{{ProductID: f.chair.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(7)}}
	resp, err := f.svc.Update(ctx, order.ID, UpdateOrderRequest{Notes: &notes, Items: &items})
	require.NoError(t, err)
	assert.Equal(t, "rush", resp.Notes)
	assert.Len(t, resp.Items, 1)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(7)))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order, _ := trade.NewOrder("ORD-8", nil)
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("Save", ctx, order).Return(nil)

	resp, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "in_production"})
	require.NoError(t, err)
	assert.Equal(t, "in_production", resp.Status)
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	a, _ := trade.NewOrder("ORD-A", &f.client.ID)
	b, _ := trade.NewOrder("ORD-B", nil)
	_ = b.SetStatus(trade.OrderStatusCancelled)
	f.orders.On("FindAll", ctx).Return([]trade.Order{*a, *b}, nil)

	res, err := f.svc.List(ctx, datatable.Query{Search: "acme"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "ORD-A", res.Rows[0].OrderNumber)

	res, err = f.svc.List(ctx, datatable.Query{Filters: map[string]string{"status": "CANCELLED"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "ORD-B", res.Rows[0].OrderNumber)
}

func TestOrderService_OrderedProducts(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.orders.On("OrderedProducts", ctx).Return([]trade.ProductDemand{
		{ProductID: f.chair.ID, Quantity: decimal.NewFromInt(12), TotalAmount: decimal.NewFromInt(600), OrderCount: 3},
	}, nil)

	out, err := f.svc.OrderedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Chair", out[0].Name)
	assert.Equal(t, 3, out[0].OrderCount)
}
