package manufacturing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/manufacturing"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/workforce"
)

// OrdersTableKey is the DataTable key of the manufacturing orders list
const OrdersTableKey = "manufacturing-orders"

// OrderNumberPrefix prefixes generated manufacturing order numbers
const OrderNumberPrefix = "MO"

// StockReceiver puts finished goods into a warehouse
type StockReceiver interface {
	AddStock(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal) error
}

// OrderService handles manufacturing orders
type OrderService struct {
	repo        manufacturing.OrderRepository
	productRepo catalog.ProductRepository
	bomRepo     catalog.BOMRepository
	workerRepo  workforce.WorkerRepository
	stock       StockReceiver
	numbers     shared.NumberGenerator
	tx          shared.TxManager
	logger      *zap.Logger
	table       *datatable.Table[*OrderRow]
	fetch       datatable.Fetcher[*OrderRow]
}

// Deps groups the collaborators of OrderService
type Deps struct {
	Orders   manufacturing.OrderRepository
	Products catalog.ProductRepository
	BOM      catalog.BOMRepository
	Workers  workforce.WorkerRepository
	Stock    StockReceiver
	Numbers  shared.NumberGenerator
	Tx       shared.TxManager
	Logger   *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(d Deps) *OrderService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		repo:        d.Orders,
		productRepo: d.Products,
		bomRepo:     d.BOM,
		workerRepo:  d.Workers,
		stock:       d.Stock,
		numbers:     d.Numbers,
		tx:          d.Tx,
		logger:      logger,
		table:       NewOrdersTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewOrdersTable defines the manufacturing orders list columns
func NewOrdersTable() *datatable.Table[*OrderRow] {
	return datatable.NewTable(OrdersTableKey, []datatable.Column[*OrderRow]{
		{Key: "orderNumber", Label: "MO #", Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return r.Order.OrderNumber }},
		{Key: "product", Label: "Product", Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return r.ProductName }},
		{Key: "plannedQuantity", Label: "Planned", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *OrderRow) any { return r.Order.PlannedQuantity }},
		{Key: "producedQuantity", Label: "Produced", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *OrderRow) any { return r.Order.ProducedQuantity }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return string(r.Order.Status) }},
		{Key: "priority", Label: "Priority", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return string(r.Order.Priority) }},
		{Key: "worker", Label: "Worker", Sortable: true, Filterable: true, Value: func(r *OrderRow) any { return r.WorkerName }},
		{Key: "totalCost", Label: "Total cost", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *OrderRow) any { return r.Order.TotalCost() }},
		{Key: "plannedEnd", Label: "Due", Type: datatable.ColumnDate, Sortable: true, Value: func(r *OrderRow) any { return datatable.Deref(r.Order.PlannedEnd) }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(r *OrderRow) any { return r.Order.CreatedAt }},
	},
		datatable.WithDefaultSort("createdAt", datatable.SortDesc),
		datatable.WithHiddenColumns("totalCost"),
	)
}

// Table returns the manufacturing orders table definition
func (s *OrderService) Table() *datatable.Table[*OrderRow] {
	return s.table
}

func (s *OrderService) loadRows(ctx context.Context) ([]*OrderRow, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, orders)
}

func (s *OrderService) join(ctx context.Context, orders []manufacturing.Order) ([]*OrderRow, error) {
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ProductID
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
	workers := map[uuid.UUID]string{}
	for _, o := range orders {
		if o.AssignedWorkerID != nil {
			all, err := s.workerRepo.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			for _, w := range all {
				workers[w.ID] = w.FullName()
			}
			break
		}
	}

	rows := make([]*OrderRow, len(orders))
	for i := range orders {
		o := &orders[i]
		p := products[o.ProductID]
		rows[i] = &OrderRow{Order: o, ProductSKU: p.SKU, ProductName: p.Name}
		if o.AssignedWorkerID != nil {
			rows[i].WorkerName = workers[*o.AssignedWorkerID]
		}
	}
	return rows, nil
}

func (s *OrderService) response(ctx context.Context, o *manufacturing.Order) (*OrderResponse, error) {
	rows, err := s.join(ctx, []manufacturing.Order{*o})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(rows[0])
	return &resp, nil
}

// List runs a table query over all manufacturing orders
func (s *OrderService) List(ctx context.Context, q datatable.Query) (datatable.Result[OrderResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[OrderResponse]{}, err
	}
	return datatable.MapResult(res, ToOrderResponse), nil
}

// Export returns every manufacturing order matching q
func (s *OrderService) Export(ctx context.Context, q datatable.Query) ([]*OrderRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a manufacturing order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, o)
}

// Create creates a pending manufacturing order. Without an explicit material
// cost, the bill of materials cost times the planned quantity is used.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}
	if err := s.checkWorker(ctx, req.AssignedWorkerID); err != nil {
		return nil, err
	}

	o, err := manufacturing.NewOrder(s.numbers.Next(OrderNumberPrefix), req.ProductID, req.PlannedQuantity)
	if err != nil {
		return nil, err
	}
	if req.Priority != "" {
		if err := o.SetPriority(manufacturing.Priority(req.Priority)); err != nil {
			return nil, err
		}
	}

	material := decimal.Zero
	if req.MaterialCost != nil {
		material = *req.MaterialCost
	} else {
		lines, err := s.bomRepo.FindComponents(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		material = catalog.MaterialCost(lines).Mul(decimal.NewFromInt(int64(req.PlannedQuantity)))
	}
	if err := o.SetCosts(material, valueOr(req.LaborCost, decimal.Zero), valueOr(req.OverheadCost, decimal.Zero)); err != nil {
		return nil, err
	}
	if err := o.SetSchedule(req.PlannedStart, req.PlannedEnd); err != nil {
		return nil, err
	}
	o.Assign(req.AssignedWorkerID, req.WarehouseID, req.SourceOrderID)
	o.SetNotes(req.Notes)

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return s.response(ctx, o)
}

// Update applies the supplied fields to a manufacturing order
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PlannedQuantity != nil {
		if err := o.SetPlannedQuantity(*req.PlannedQuantity); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := o.SetPriority(manufacturing.Priority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.MaterialCost != nil || req.LaborCost != nil || req.OverheadCost != nil {
		if err := o.SetCosts(
			valueOr(req.MaterialCost, o.MaterialCost),
			valueOr(req.LaborCost, o.LaborCost),
			valueOr(req.OverheadCost, o.OverheadCost),
		); err != nil {
			return nil, err
		}
	}
	if req.PlannedStart != nil || req.PlannedEnd != nil {
		start, end := o.PlannedStart, o.PlannedEnd
		if req.PlannedStart != nil {
			start = req.PlannedStart
		}
		if req.PlannedEnd != nil {
			end = req.PlannedEnd
		}
		if err := o.SetSchedule(start, end); err != nil {
			return nil, err
		}
	}
	if req.AssignedWorkerID != nil || req.WarehouseID != nil || req.SourceOrderID != nil {
		if err := s.checkWorker(ctx, req.AssignedWorkerID); err != nil {
			return nil, err
		}
		worker, warehouse, source := o.AssignedWorkerID, o.WarehouseID, o.SourceOrderID
		if req.AssignedWorkerID != nil {
			worker = req.AssignedWorkerID
		}
		if req.WarehouseID != nil {
			warehouse = req.WarehouseID
		}
		if req.SourceOrderID != nil {
			source = req.SourceOrderID
		}
		o.Assign(worker, warehouse, source)
	}
	if req.Notes != nil {
		o.SetNotes(*req.Notes)
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return s.response(ctx, o)
}

// Delete removes a manufacturing order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Start moves the order to in_progress
func (s *OrderService) Start(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, (*manufacturing.Order).Start)
}

// Pause moves the order to paused
func (s *OrderService) Pause(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, (*manufacturing.Order).Pause)
}

// Resume moves the order back to in_progress
func (s *OrderService) Resume(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, (*manufacturing.Order).Resume)
}

// Stop cancels the order
func (s *OrderService) Stop(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, (*manufacturing.Order).Stop)
}

func (s *OrderService) transition(ctx context.Context, id uuid.UUID, apply func(*manufacturing.Order)) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	apply(o)
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Manufacturing order status changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)
	return s.response(ctx, o)
}

// Complete records the produced quantity and marks the order completed.
// Output goes to the order's warehouse when one is set; completing again
// only stocks units that were not stocked before.
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID, req CompleteRequest) (*OrderResponse, error) {
	var completed *manufacturing.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Complete(manufacturing.Completion{
			ProducedQuantity: req.ProducedQuantity,
			QualityRating:    req.QualityRating,
			Override:         req.Override,
		}); err != nil {
			return err
		}
		if pending := o.PendingStock(); o.WarehouseID != nil && pending > 0 {
			if err := s.stock.AddStock(ctx, o.ProductID, *o.WarehouseID, decimal.NewFromInt(int64(pending))); err != nil {
				return err
			}
			o.MarkStocked(pending)
		}
		// serials generated up front may already cover the produced quantity
		if req.GenerateSerialNumbers && len(o.SerialNumbers) < o.SerialTarget() {
			if err := s.addSerials(ctx, o, 0); err != nil {
				return err
			}
		}
		if err := s.repo.Save(ctx, o); err != nil {
			return err
		}
		completed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.Override && completed.ProducedQuantity > completed.PlannedQuantity {
		s.logger.Warn("Manufacturing order completed above plan",
			zap.String("order_number", completed.OrderNumber),
			zap.Int("planned", completed.PlannedQuantity),
			zap.Int("produced", completed.ProducedQuantity),
		)
	}
	return s.response(ctx, completed)
}

// GenerateSerialNumbers appends serial numbers to the order
func (s *OrderService) GenerateSerialNumbers(ctx context.Context, id uuid.UUID, req SerialNumbersRequest) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.addSerials(ctx, o, req.Count); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return s.response(ctx, o)
}

// addSerials generates count serial numbers prefixed with the product SKU.
// A zero count fills up to the order's serial target.
func (s *OrderService) addSerials(ctx context.Context, o *manufacturing.Order, count int) error {
	if count == 0 {
		count = o.SerialTarget() - len(o.SerialNumbers)
	}
	if count <= 0 {
		return shared.NewDomainError("SERIALS_COMPLETE", "Order already carries all serial numbers")
	}
	product, err := s.productRepo.FindByID(ctx, o.ProductID)
	if err != nil {
		return err
	}
	serials := make([]string, count)
	for i := range serials {
		serials[i] = s.numbers.Next(product.SKU)
	}
	o.AddSerialNumbers(serials)
	return nil
}

func (s *OrderService) checkWorker(ctx context.Context, workerID *uuid.UUID) error {
	if workerID == nil {
		return nil
	}
	if _, err := s.workerRepo.FindByID(ctx, *workerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_WORKER", "Worker not found")
		}
		return err
	}
	return nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
