package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/trade"
)

// OrdersTableKey is the DataTable key of the orders list
const OrdersTableKey = "orders"

// OrderNumberPrefix prefixes generated order numbers
const OrderNumberPrefix = "ORD"

// OrderService handles sales orders
type OrderService struct {
	repo        trade.OrderRepository
	clientRepo  partner.ClientRepository
	productRepo catalog.ProductRepository
	numbers     shared.NumberGenerator
	table       *datatable.Table[*OrderRow]
	fetch       datatable.Fetcher[*OrderRow]
}

// NewOrderService creates a new OrderService
func NewOrderService(
	repo trade.OrderRepository,
	clientRepo partner.ClientRepository,
	productRepo catalog.ProductRepository,
	numbers shared.NumberGenerator,
) *OrderService {
	s := &OrderService{
		repo:        repo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		numbers:     numbers,
		table:       NewOrdersTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewOrdersTable defines the orders list columns
func NewOrdersTable() *datatable.Table[*OrderRow] {
	return datatable.NewTable(OrdersTableKey, []datatable.Column[*OrderRow]{
		{Key: "orderNumber", Label: "Order #", Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return r.Order.OrderNumber }},
		{Key: "client", Label: "Client", Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return r.ClientName }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return string(r.Order.Status) }},
		{Key: "totalAmount", Label: "Total", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *OrderRow) any { return r.Order.TotalAmount }},
		{Key: "dueDate", Label: "Due date", Type: datatable.ColumnDate, Sortable: true, Value: func(r *OrderRow) any { return datatable.Deref(r.Order.DueDate) }},
		{Key: "itemCount", Label: "Items", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *OrderRow) any { return len(r.Order.Items) }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(r *OrderRow) any { return r.Order.CreatedAt }},
	},
		datatable.WithDefaultSort("createdAt", datatable.SortDesc),
	)
}

// Table returns the orders table definition
func (s *OrderService) Table() *datatable.Table[*OrderRow] {
	return s.table
}

func (s *OrderService) loadRows(ctx context.Context) ([]*OrderRow, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		if o.ClientID != nil {
			ids = append(ids, *o.ClientID)
		}
	}
	names, err := s.clientNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	rows := make([]*OrderRow, len(orders))
	for i := range orders {
		rows[i] = &OrderRow{Order: &orders[i]}
		if orders[i].ClientID != nil {
			rows[i].ClientName = names[*orders[i].ClientID]
		}
	}
	return rows, nil
}

func (s *OrderService) clientNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	ids = shared.UniqueIDs(ids)
	if len(ids) == 0 {
		return names, nil
	}
	clients, err := s.clientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return names, nil
}

// List runs a table query over all orders
func (s *OrderService) List(ctx context.Context, q datatable.Query) (datatable.Result[OrderResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[OrderResponse]{}, err
	}
	return datatable.MapResult(res, ToOrderResponse), nil
}

// Export returns every order matching q
func (s *OrderService) Export(ctx context.Context, q datatable.Query) ([]*OrderRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves an order with its items
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

func (s *OrderService) detail(ctx context.Context, order *trade.Order) (*OrderResponse, error) {
	row := &OrderRow{Order: order}
	if order.ClientID != nil {
		names, err := s.clientNames(ctx, []uuid.UUID{*order.ClientID})
		if err != nil {
			return nil, err
		}
		row.ClientName = names[*order.ClientID]
	}
	resp := ToOrderResponse(row)

	ids := make([]uuid.UUID, len(order.Items))
	for i, it := range order.Items {
		ids[i] = it.ProductID
	}
	products := map[uuid.UUID]catalog.Product{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}
	resp.Items = make([]OrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		p := products[it.ProductID]
		resp.Items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductSKU:  p.SKU,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}
	return &resp, nil
}

// Create creates a pending order with a generated number
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if err := s.checkClient(ctx, req.ClientID); err != nil {
		return nil, err
	}
	order, err := trade.NewOrder(s.numbers.Next(OrderNumberPrefix), req.ClientID)
	if err != nil {
		return nil, err
	}
	order.SetDetails(req.DueDate, req.Notes)
	if err := s.setItems(ctx, order, req.Items); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// Update applies the supplied fields to an order
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		if err := s.checkClient(ctx, req.ClientID); err != nil {
			return nil, err
		}
		order.SetClient(req.ClientID)
	}
	if req.DueDate != nil || req.Notes != nil {
		due := order.DueDate
		if req.DueDate != nil {
			due = req.DueDate
		}
		notes := order.Notes
		if req.Notes != nil {
			notes = *req.Notes
		}
		order.SetDetails(due, notes)
	}
	if req.Status != nil {
		if err := order.SetStatus(trade.OrderStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		if err := s.setItems(ctx, order, *req.Items); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// UpdateStatus writes the order status
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.SetStatus(trade.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// Delete removes an order and its items
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// OrderedProducts reports quantities per product across orders that are not cancelled
func (s *OrderService) OrderedProducts(ctx context.Context) ([]ProductDemandResponse, error) {
	demand, err := s.repo.OrderedProducts(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(demand))
	for i, d := range demand {
		ids[i] = d.ProductID
	}
	products := map[uuid.UUID]catalog.Product{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}
	out := make([]ProductDemandResponse, len(demand))
	for i, d := range demand {
		p := products[d.ProductID]
		out[i] = ProductDemandResponse{
			ProductID:   d.ProductID,
			SKU:         p.SKU,
			Name:        p.Name,
			Quantity:    d.Quantity,
			TotalAmount: d.TotalAmount,
			OrderCount:  d.OrderCount,
		}
	}
	return out, nil
}

func (s *OrderService) checkClient(ctx context.Context, clientID *uuid.UUID) error {
	if clientID == nil {
		return nil
	}
	if _, err := s.clientRepo.FindByID(ctx, *clientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CLIENT", "Client not found")
		}
		return err
	}
	return nil
}

func (s *OrderService) setItems(ctx context.Context, order *trade.Order, items []OrderItemInput) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	ids = shared.UniqueIDs(ids)
	if len(ids) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return shared.NewDomainError("INVALID_PRODUCT", "One or more products were not found")
		}
	}
	order.ClearItems()
	for _, it := range items {
		if _, err := order.AddItem(it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}
