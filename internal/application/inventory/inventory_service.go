package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/inventory"
	"github.com/erp/factory/internal/domain/shared"
)

// InventoryTableKey is the DataTable key of the inventory list
const InventoryTableKey = "inventory"

// InventoryService handles stock rows
type InventoryService struct {
	repo          inventory.InventoryRepository
	warehouseRepo inventory.WarehouseRepository
	productRepo   catalog.ProductRepository
	table         *datatable.Table[*StockRow]
	fetch         datatable.Fetcher[*StockRow]
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	repo inventory.InventoryRepository,
	warehouseRepo inventory.WarehouseRepository,
	productRepo catalog.ProductRepository,
) *InventoryService {
	s := &InventoryService{
		repo:          repo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		table:         NewInventoryTable(),
	}
	s.fetch = datatable.Local(s.table, func(ctx context.Context) ([]*StockRow, error) {
		items, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return s.join(ctx, items)
	})
	return s
}

// NewInventoryTable defines the inventory list columns
func NewInventoryTable() *datatable.Table[*StockRow] {
	return datatable.NewTable(InventoryTableKey, []datatable.Column[*StockRow]{
		{Key: "productSku", Label: "SKU", Sortable: true, Filterable: true, Value: func(r *StockRow) any { return r.ProductSKU }},
		{Key: "productName", Label: "Product", Sortable: true, Filterable: true, Value: func(r *StockRow) any { return r.ProductName }},
		{Key: "warehouse", Label: "Warehouse", Sortable: true, Filterable: true, Value: func(r *StockRow) any { return r.WarehouseName }},
		{Key: "quantity", Label: "Quantity", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *StockRow) any { return r.Item.Quantity }},
		{Key: "minStock", Label: "Min stock", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *StockRow) any { return r.Item.MinStock }},
		{Key: "maxStock", Label: "Max stock", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *StockRow) any { return r.Item.MaxStock }},
		{Key: "lowStock", Label: "Low stock", Type: datatable.ColumnBoolean, Filterable: true, Value: func(r *StockRow) any { return r.Item.IsLowStock() }},
		{Key: "updatedAt", Label: "Updated", Type: datatable.ColumnDate, Sortable: true, Value: func(r *StockRow) any { return r.Item.UpdatedAt }},
	},
		datatable.WithDefaultSort("productName", datatable.SortAsc),
	)
}

// Table returns the inventory table definition
func (s *InventoryService) Table() *datatable.Table[*StockRow] {
	return s.table
}

// join attaches product and warehouse labels to stock rows
func (s *InventoryService) join(ctx context.Context, items []inventory.InventoryItem) ([]*StockRow, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	products := map[uuid.UUID]catalog.Product{}
	if len(ids) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}
	warehouses := map[uuid.UUID]inventory.Warehouse{}
	if len(items) > 0 {
		all, err := s.warehouseRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, w := range all {
			warehouses[w.ID] = w
		}
	}

	rows := make([]*StockRow, len(items))
	for i := range items {
		row := &StockRow{Item: &items[i]}
		if p, ok := products[items[i].ProductID]; ok {
			row.ProductSKU = p.SKU
			row.ProductName = p.Name
		}
		if w, ok := warehouses[items[i].WarehouseID]; ok {
			row.WarehouseCode = w.Code
			row.WarehouseName = w.Name
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *InventoryService) response(ctx context.Context, item *inventory.InventoryItem) (*StockResponse, error) {
	rows, err := s.join(ctx, []inventory.InventoryItem{*item})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(rows[0])
	return &resp, nil
}

// List runs a table query over all stock rows
func (s *InventoryService) List(ctx context.Context, q datatable.Query) (datatable.Result[StockResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[StockResponse]{}, err
	}
	return datatable.MapResult(res, ToStockResponse), nil
}

// Export returns every stock row matching q
func (s *InventoryService) Export(ctx context.Context, q datatable.Query) ([]*StockRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a stock row
func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*StockResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, item)
}

// LowStock lists rows at or below their minimum stock
func (s *InventoryService) LowStock(ctx context.Context) ([]StockResponse, error) {
	items, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.join(ctx, items)
	if err != nil {
		return nil, err
	}
	out := make([]StockResponse, len(rows))
	for i, r := range rows {
		out[i] = ToStockResponse(r)
	}
	return out, nil
}

// Set creates the stock row of a product in a warehouse, or overwrites it
// when one exists.
func (s *InventoryService) Set(ctx context.Context, req SetStockRequest) (*StockResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.warehouseRepo.FindByID(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	item, err := s.findOrNew(ctx, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := item.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if req.MinStock != nil || req.MaxStock != nil {
		if err := item.SetThresholds(valueOr(req.MinStock, item.MinStock), valueOr(req.MaxStock, item.MaxStock)); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return s.response(ctx, item)
}

// Update changes quantity or thresholds of a stock row
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*StockResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if err := item.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil || req.MaxStock != nil {
		if err := item.SetThresholds(valueOr(req.MinStock, item.MinStock), valueOr(req.MaxStock, item.MaxStock)); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return s.response(ctx, item)
}

// Adjust adds a signed delta; results below zero are rejected
func (s *InventoryService) Adjust(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*StockResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Adjust(req.Delta); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return s.response(ctx, item)
}

// Delete removes a stock row
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddStock increases the stock of a product in a warehouse, creating the
// row when needed. Used by supplier receipts and production output.
func (s *InventoryService) AddStock(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if _, err := s.warehouseRepo.FindByID(ctx, warehouseID); err != nil {
		return err
	}
	item, err := s.findOrNew(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	if err := item.Adjust(quantity); err != nil {
		return err
	}
	return s.repo.Save(ctx, item)
}

func (s *InventoryService) findOrNew(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	item, err := s.repo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return inventory.NewInventoryItem(productID, warehouseID)
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
