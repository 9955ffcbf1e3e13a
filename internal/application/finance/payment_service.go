package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/finance"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/trade"
)

// PaymentsTableKey is the DataTable key of the payments list
const PaymentsTableKey = "payments"

// PaymentService handles order payments
type PaymentService struct {
	repo      finance.PaymentRepository
	orderRepo trade.OrderRepository
	table     *datatable.Table[*PaymentRow]
	fetch     datatable.Fetcher[*PaymentRow]
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo finance.PaymentRepository, orderRepo trade.OrderRepository) *PaymentService {
	s := &PaymentService{
		repo:      repo,
		orderRepo: orderRepo,
		table:     NewPaymentsTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewPaymentsTable defines the payments list columns. The same definition
// backs the list, its settings and its export.
func NewPaymentsTable() *datatable.Table[*PaymentRow] {
	return datatable.NewTable(PaymentsTableKey, []datatable.Column[*PaymentRow]{
		{Key: "paymentDate", Label: "Date", Type: datatable.ColumnDate, Sortable: true, Value: func(r *PaymentRow) any { return r.Payment.PaymentDate }},
		{Key: "orderNumber", Label: "Order #", Sortable: true, Filterable: true, Value: func(r *PaymentRow) any { return r.OrderNumber }},
		{Key: "amount", Label: "Amount", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *PaymentRow) any { return r.Payment.Amount }},
		{Key: "type", Label: "Type", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *PaymentRow) any { return string(r.Payment.Type) }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *PaymentRow) any { return string(r.Payment.Status) }},
		{Key: "correspondent", Label: "Correspondent", Sortable: true, Filterable: true, Value: func(r *PaymentRow) any { return r.Payment.Bank.Correspondent }},
		{Key: "bankName", Label: "Bank", Filterable: true, Value: func(r *PaymentRow) any { return r.Payment.Bank.BankName }},
		{Key: "purpose", Label: "Purpose", Filterable: true, Value: func(r *PaymentRow) any { return r.Payment.Purpose }},
		{Key: "reference", Label: "Reference", Filterable: true, Value: func(r *PaymentRow) any { return r.Payment.Reference }},
	},
		datatable.WithDefaultSort("paymentDate", datatable.SortDesc),
		datatable.WithHiddenColumns("bankName", "reference"),
	)
}

// Table returns the payments table definition
func (s *PaymentService) Table() *datatable.Table[*PaymentRow] {
	return s.table
}

func (s *PaymentService) loadRows(ctx context.Context) ([]*PaymentRow, error) {
	payments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, payments)
}

func (s *PaymentService) join(ctx context.Context, payments []finance.Payment) ([]*PaymentRow, error) {
	ids := make([]uuid.UUID, len(payments))
	for i, p := range payments {
		ids[i] = p.OrderID
	}
	numbers := map[uuid.UUID]string{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		orders, err := s.orderRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			numbers[o.ID] = o.OrderNumber
		}
	}
	rows := make([]*PaymentRow, len(payments))
	for i := range payments {
		rows[i] = &PaymentRow{Payment: &payments[i], OrderNumber: numbers[payments[i].OrderID]}
	}
	return rows, nil
}

func (s *PaymentService) response(ctx context.Context, p *finance.Payment) (*PaymentResponse, error) {
	rows, err := s.join(ctx, []finance.Payment{*p})
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(rows[0])
	return &resp, nil
}

// List runs a table query over all payments
func (s *PaymentService) List(ctx context.Context, q datatable.Query) (datatable.Result[PaymentResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[PaymentResponse]{}, err
	}
	return datatable.MapResult(res, ToPaymentResponse), nil
}

// Export returns every payment matching q
func (s *PaymentService) Export(ctx context.Context, q datatable.Query) ([]*PaymentRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a payment
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, p)
}

// Create registers a payment against an existing order
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, req.OrderID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order not found")
		}
		return nil, err
	}
	var date time.Time
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}
	p, err := finance.NewPayment(req.OrderID, req.Amount, finance.PaymentType(req.Type), date)
	if err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := p.SetStatus(finance.PaymentStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := p.SetBankDetails(finance.BankDetails{
		Correspondent: req.Correspondent,
		BankName:      req.BankName,
		BIC:           req.BIC,
		Account:       req.Account,
	}); err != nil {
		return nil, err
	}
	p.SetPurpose(req.Purpose, req.Reference)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.response(ctx, p)
}

// Update applies the supplied fields to a payment
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if err := p.SetAmount(*req.Amount); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if err := p.SetType(finance.PaymentType(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := p.SetStatus(finance.PaymentStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.PaymentDate != nil {
		p.SetDate(*req.PaymentDate)
	}
	if req.Correspondent != nil || req.BankName != nil || req.BIC != nil || req.Account != nil {
		if err := p.SetBankDetails(finance.BankDetails{
			Correspondent: valueOr(req.Correspondent, p.Bank.Correspondent),
			BankName:      valueOr(req.BankName, p.Bank.BankName),
			BIC:           valueOr(req.BIC, p.Bank.BIC),
			Account:       valueOr(req.Account, p.Bank.Account),
		}); err != nil {
			return nil, err
		}
	}
	if req.Purpose != nil || req.Reference != nil {
		p.SetPurpose(valueOr(req.Purpose, p.Purpose), valueOr(req.Reference, p.Reference))
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.response(ctx, p)
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListByOrder returns the payments of an order with the paid total and the
// remaining balance.
func (s *PaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) (*OrderPaymentsResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	paid := finance.PaidTotal(payments)
	out := &OrderPaymentsResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderTotal:  order.TotalAmount,
		PaidTotal:   paid,
		Balance:     order.TotalAmount.Sub(paid),
		Payments:    make([]PaymentResponse, len(payments)),
	}
	for i := range payments {
		out.Payments[i] = ToPaymentResponse(&PaymentRow{Payment: &payments[i], OrderNumber: order.OrderNumber})
	}
	return out, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
