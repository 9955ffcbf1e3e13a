package procurement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/inventory"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/procurement"
	"github.com/erp/factory/internal/domain/shared"
)

// ReceiptsTableKey is the DataTable key of the supplier receipts list
const ReceiptsTableKey = "supplier-receipts"

// ReceiptNumberPrefix prefixes generated receipt numbers
const ReceiptNumberPrefix = "RCV"

// StockReceiver puts received goods into a warehouse
type StockReceiver interface {
	AddStock(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal) error
}

// ReceiptService handles supplier receipts
type ReceiptService struct {
	repo       procurement.ReceiptRepository
	clients    partner.ClientRepository
	warehouses inventory.WarehouseRepository
	products   catalog.ProductRepository
	stock      StockReceiver
	numbers    shared.NumberGenerator
	tx         shared.TxManager
	logger     *zap.Logger
	table      *datatable.Table[*ReceiptRow]
	fetch      datatable.Fetcher[*ReceiptRow]
}

// Deps groups the collaborators of ReceiptService
type Deps struct {
	Receipts   procurement.ReceiptRepository
	Clients    partner.ClientRepository
	Warehouses inventory.WarehouseRepository
	Products   catalog.ProductRepository
	Stock      StockReceiver
	Numbers    shared.NumberGenerator
	Tx         shared.TxManager
	Logger     *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(d Deps) *ReceiptService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReceiptService{
		repo:       d.Receipts,
		clients:    d.Clients,
		warehouses: d.Warehouses,
		products:   d.Products,
		stock:      d.Stock,
		numbers:    d.Numbers,
		tx:         d.Tx,
		logger:     logger,
		table:      NewReceiptsTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewReceiptsTable defines the supplier receipts list columns
func NewReceiptsTable() *datatable.Table[*ReceiptRow] {
	return datatable.NewTable(ReceiptsTableKey, []datatable.Column[*ReceiptRow]{
		{Key: "receiptNumber", Label: "Receipt #", Sortable: true, Filterable: true, Value: func(r *ReceiptRow) any { return r.Receipt.ReceiptNumber }},
		{Key: "supplier", Label: "Supplier", Sortable: true, Filterable: true, Value: func(r *ReceiptRow) any { return r.SupplierName }},
		{Key: "warehouse", Label: "Warehouse", Sortable: true, Filterable: true, Value: func(r *ReceiptRow) any { return r.WarehouseName }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *ReceiptRow) any { return string(r.Receipt.Status) }},
		{Key: "totalAmount", Label: "Total", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *ReceiptRow) any { return r.Receipt.TotalAmount }},
		{Key: "documentDate", Label: "Document date", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ReceiptRow) any { return datatable.Deref(r.Receipt.DocumentDate) }},
		{Key: "receivedAt", Label: "Received", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ReceiptRow) any { return datatable.Deref(r.Receipt.ReceivedAt) }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ReceiptRow) any { return r.Receipt.CreatedAt }},
	},
		datatable.WithDefaultSort("createdAt", datatable.SortDesc),
	)
}

// Table returns the receipts table definition
func (s *ReceiptService) Table() *datatable.Table[*ReceiptRow] {
	return s.table
}

func (s *ReceiptService) loadRows(ctx context.Context) ([]*ReceiptRow, error) {
	receipts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, receipts)
}

func (s *ReceiptService) join(ctx context.Context, receipts []procurement.SupplierReceipt) ([]*ReceiptRow, error) {
	ids := make([]uuid.UUID, len(receipts))
	for i, r := range receipts {
		ids[i] = r.SupplierID
	}
	suppliers := map[uuid.UUID]string{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		found, err := s.clients.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			suppliers[c.ID] = c.Name
		}
	}
	warehouses := map[uuid.UUID]string{}
	if len(receipts) > 0 {
		all, err := s.warehouses.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, w := range all {
			warehouses[w.ID] = w.Name
		}
	}
	rows := make([]*ReceiptRow, len(receipts))
	for i := range receipts {
		r := &receipts[i]
		rows[i] = &ReceiptRow{Receipt: r, SupplierName: suppliers[r.SupplierID], WarehouseName: warehouses[r.WarehouseID]}
	}
	return rows, nil
}

func (s *ReceiptService) detail(ctx context.Context, r *procurement.SupplierReceipt) (*ReceiptResponse, error) {
	rows, err := s.join(ctx, []procurement.SupplierReceipt{*r})
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(rows[0])

	ids := make([]uuid.UUID, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ComponentID
	}
	products := map[uuid.UUID]catalog.Product{}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		found, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}
	resp.Items = make([]ReceiptItemResponse, len(r.Items))
	for i, it := range r.Items {
		p := products[it.ComponentID]
		resp.Items[i] = ReceiptItemResponse{
			ID:            it.ID,
			ComponentID:   it.ComponentID,
			ComponentSKU:  p.SKU,
			ComponentName: p.Name,
			Quantity:      it.Quantity,
			UnitCost:      it.UnitCost,
			Total:         it.Total(),
		}
	}
	return &resp, nil
}

// List runs a table query over all receipts
func (s *ReceiptService) List(ctx context.Context, q datatable.Query) (datatable.Result[ReceiptResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[ReceiptResponse]{}, err
	}
	return datatable.MapResult(res, ToReceiptResponse), nil
}

// GetByID retrieves a receipt with its items
func (s *ReceiptService) GetByID(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, r)
}

// Create creates a draft receipt
func (s *ReceiptService) Create(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	if err := s.checkSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	if err := s.checkWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	r, err := procurement.NewSupplierReceipt(s.numbers.Next(ReceiptNumberPrefix), req.SupplierID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := r.SetHeader(uuid.Nil, uuid.Nil, req.DocumentDate, req.Notes); err != nil {
		return nil, err
	}
	if err := s.setItems(ctx, r, req.Items); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return s.detail(ctx, r)
}

// Update applies the supplied fields to a draft receipt
func (s *ReceiptService) Update(ctx context.Context, id uuid.UUID, req UpdateReceiptRequest) (*ReceiptResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft receipts can be changed")
	}
	supplier, warehouse := uuid.Nil, uuid.Nil
	if req.SupplierID != nil {
		if err := s.checkSupplier(ctx, *req.SupplierID); err != nil {
			return nil, err
		}
		supplier = *req.SupplierID
	}
	if req.WarehouseID != nil {
		if err := s.checkWarehouse(ctx, *req.WarehouseID); err != nil {
			return nil, err
		}
		warehouse = *req.WarehouseID
	}
	docDate, notes := r.DocumentDate, r.Notes
	if req.DocumentDate != nil {
		docDate = req.DocumentDate
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := r.SetHeader(supplier, warehouse, docDate, notes); err != nil {
		return nil, err
	}
	if req.Items != nil {
		if err := s.setItems(ctx, r, *req.Items); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return s.detail(ctx, r)
}

// Delete removes a draft receipt
func (s *ReceiptService) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft receipts can be deleted")
	}
	return s.repo.Delete(ctx, id)
}

// Receive posts the receipt and adds every line to the warehouse stock in
// one transaction.
func (s *ReceiptService) Receive(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var received *procurement.SupplierReceipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Receive(); err != nil {
			return err
		}
		for _, it := range r.Items {
			if err := s.stock.AddStock(ctx, it.ComponentID, r.WarehouseID, it.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.Save(ctx, r); err != nil {
			return err
		}
		received = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Supplier receipt received",
		zap.String("receipt_number", received.ReceiptNumber),
		zap.Int("items", len(received.Items)),
		zap.String("total", received.TotalAmount.String()),
	)
	return s.detail(ctx, received)
}

// Cancel cancels a draft receipt
func (s *ReceiptService) Cancel(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return s.detail(ctx, r)
}

func (s *ReceiptService) checkSupplier(ctx context.Context, id uuid.UUID) error {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_SUPPLIER", "Supplier not found")
		}
		return err
	}
	if !c.IsSupplier() {
		return shared.NewDomainError("INVALID_SUPPLIER", "Client is not a supplier")
	}
	return nil
}

func (s *ReceiptService) checkWarehouse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.warehouses.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse not found")
		}
		return err
	}
	return nil
}

func (s *ReceiptService) setItems(ctx context.Context, r *procurement.SupplierReceipt, items []ReceiptItemInput) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ComponentID
	}
	if ids = shared.UniqueIDs(ids); len(ids) > 0 {
		found, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return shared.NewDomainError("INVALID_PRODUCT", "One or more components were not found")
		}
	}
	if err := r.ClearItems(); err != nil {
		return err
	}
	for _, it := range items {
		if err := r.AddItem(it.ComponentID, it.Quantity, it.UnitCost); err != nil {
			return err
		}
	}
	return nil
}
