package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/finance"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/trade"
	"github.com/erp/factory/tests/testutil"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context) ([]finance.Payment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *finance.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func paymentFixture(t *testing.T) (*PaymentService, *MockPaymentRepository, *trade.Order) {
	t.Helper()
	payments := new(MockPaymentRepository)
	orders := new(testutil.MockOrderRepository)
	order, err := trade.NewOrder("ORD-0042", nil)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil).Maybe()
	orders.On("FindByIDs", mock.Anything, mock.Anything).Return([]trade.Order{*order}, nil).Maybe()
	return NewPaymentService(payments, orders), payments, order
}

func TestPaymentService_Create(t *testing.T) {
	ctx := context.Background()
	svc, payments, order := paymentFixture(t)
	payments.On("Save", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)

	resp, err := svc.Create(ctx, CreatePaymentRequest{
		OrderID:       order.ID,
		Amount:        decimal.NewFromInt(300),
		Type:          "prepayment",
		Correspondent: "Acme",
		BIC:           "044525225",
		Account:       "40702810900000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-0042", resp.OrderNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "044525225", resp.BIC)
	assert.False(t, resp.PaymentDate.IsZero())

	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: order.ID, Amount: decimal.Zero, Type: "full"})
	assert.Error(t, err)
}

func TestPaymentService_ListByOrder(t *testing.T) {
	ctx := context.Background()
	svc, payments, order := paymentFixture(t)

	mk := func(amount int64, typ finance.PaymentType, status finance.PaymentStatus) finance.Payment {
		p, err := finance.NewPayment(order.ID, decimal.NewFromInt(amount), typ, time.Now())
		require.NoError(t, err)
		require.NoError(t, p.SetStatus(status))
		return *p
	}
	payments.On("FindByOrder", ctx, order.ID).Return([]finance.Payment{
		mk(400, finance.PaymentTypePrepayment, finance.PaymentStatusCompleted),
		mk(300, finance.PaymentTypePartial, finance.PaymentStatusPending),
		mk(50, finance.PaymentTypeRefund, finance.PaymentStatusCompleted),
	}, nil)

	resp, err := svc.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Payments, 3)
	assert.True(t, resp.OrderTotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.PaidTotal.Equal(decimal.NewFromInt(350)), resp.PaidTotal.String())
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(650)))
}

func TestPaymentService_List(t *testing.T) {
	ctx := context.Background()
	svc, payments, order := paymentFixture(t)
	early, _ := finance.NewPayment(order.ID, decimal.NewFromInt(10), finance.PaymentTypePartial, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	late, _ := finance.NewPayment(order.ID, decimal.NewFromInt(20), finance.PaymentTypeFull, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
	payments.On("FindAll", ctx).Return([]finance.Payment{*early, *late}, nil)

	res, err := svc.List(ctx, datatable.Query{Sort: datatable.Sort{Field: "paymentDate", Direction: datatable.SortDesc}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, late.ID, res.Rows[0].ID)

	res, err = svc.List(ctx, datatable.Query{Filters: map[string]string{"type": "partial"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, early.ID, res.Rows[0].ID)
}

func TestPaymentService_Update_InvalidBIC(t *testing.T) {
	ctx := context.Background()
	svc, payments, order := paymentFixture(t)
	p, _ := finance.NewPayment(order.ID, decimal.NewFromInt(10), finance.PaymentTypeFull, time.Time{})
	payments.On("FindByID", ctx, p.ID).Return(p, nil)

	bad := "12"
	_, err := svc.Update(ctx, p.ID, UpdatePaymentRequest{BIC: &bad})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_BIC", de.Code)
}
