package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/shipping"
	"github.com/erp/factory/internal/domain/trade"
)

// ShipmentsTableKey is the DataTable key of the shipments list
const ShipmentsTableKey = "shipments"

// ShipmentNumberPrefix prefixes generated shipment numbers
const ShipmentNumberPrefix = "SHP"

// ShipmentService handles shipments
type ShipmentService struct {
	repo      shipping.ShipmentRepository
	orderRepo trade.OrderRepository
	numbers   shared.NumberGenerator
	table     *datatable.Table[*ShipmentRow]
	fetch     datatable.Fetcher[*ShipmentRow]
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(repo shipping.ShipmentRepository, orderRepo trade.OrderRepository, numbers shared.NumberGenerator) *ShipmentService {
	s := &ShipmentService{
		repo:      repo,
		orderRepo: orderRepo,
		numbers:   numbers,
		table:     NewShipmentsTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewShipmentsTable defines the shipments list columns
func NewShipmentsTable() *datatable.Table[*ShipmentRow] {
	return datatable.NewTable(ShipmentsTableKey, []datatable.Column[*ShipmentRow]{
		{Key: "shipmentNumber", Label: "Shipment #", Sortable: true, Filterable: true, Value: func(r *ShipmentRow) any { return r.Shipment.ShipmentNumber }},
		{Key: "orderNumber", Label: "Order #", Sortable: true, Filterable: true, Value: func(r *ShipmentRow) any { return r.OrderNumber }},
		{Key: "carrier", Label: "Carrier", Sortable: true, Filterable: true, Value: func(r *ShipmentRow) any { return r.Shipment.Carrier }},
		{Key: "trackingNumber", Label: "Tracking #", Filterable: true, Value: func(r *ShipmentRow) any { return r.Shipment.TrackingNumber }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(r *ShipmentRow) any { return string(r.Shipment.Status) }},
		{Key: "weight", Label: "Weight, kg", Type: datatable.ColumnNumber, Sortable: true, Value: func(r *ShipmentRow) any { return r.Shipment.Weight }},
		{Key: "shippedAt", Label: "Shipped", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ShipmentRow) any { return datatable.Deref(r.Shipment.ShippedAt) }},
		{Key: "deliveredAt", Label: "Delivered", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ShipmentRow) any { return datatable.Deref(r.Shipment.DeliveredAt) }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(r *ShipmentRow) any { return r.Shipment.CreatedAt }},
	},
		datatable.WithDefaultSort("createdAt", datatable.SortDesc),
		datatable.WithHiddenColumns("weight"),
	)
}

// Table returns the shipments table definition
func (s *ShipmentService) Table() *datatable.Table[*ShipmentRow] {
	return s.table
}

func (s *ShipmentService) loadRows(ctx context.Context) ([]*ShipmentRow, error) {
	shipments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, shipments)
}

func (s *ShipmentService) join(ctx context.Context, shipments []shipping.Shipment) ([]*ShipmentRow, error) {
	ids := make([]uuid.UUID, len(shipments))
	for i, sh := range shipments {
		ids[i] = sh.OrderID
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
	rows := make([]*ShipmentRow, len(shipments))
	for i := range shipments {
		rows[i] = &ShipmentRow{Shipment: &shipments[i], OrderNumber: numbers[shipments[i].OrderID]}
	}
	return rows, nil
}

func (s *ShipmentService) response(ctx context.Context, sh *shipping.Shipment) (*ShipmentResponse, error) {
	rows, err := s.join(ctx, []shipping.Shipment{*sh})
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(rows[0])
	return &resp, nil
}

// List runs a table query over all shipments
func (s *ShipmentService) List(ctx context.Context, q datatable.Query) (datatable.Result[ShipmentResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[ShipmentResponse]{}, err
	}
	return datatable.MapResult(res, ToShipmentResponse), nil
}

// Export returns every shipment matching q
func (s *ShipmentService) Export(ctx context.Context, q datatable.Query) ([]*ShipmentRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a shipment with its items
func (s *ShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, sh)
}

// Create creates a shipment in preparation for an existing order
func (s *ShipmentService) Create(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, req.OrderID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order not found")
		}
		return nil, err
	}
	sh, err := shipping.NewShipment(s.numbers.Next(ShipmentNumberPrefix), req.OrderID)
	if err != nil {
		return nil, err
	}
	sh.SetCarrier(req.Carrier, req.TrackingNumber)
	dims := shipping.Dimensions{Length: req.Length, Width: req.Width, Height: req.Height}
	if err := sh.SetPackage(req.Weight, dims); err != nil {
		return nil, err
	}
	sh.SetNotes(req.Notes)
	if err := setItems(sh, req.Items); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sh); err != nil {
		return nil, err
	}
	return s.response(ctx, sh)
}

// Update applies the supplied fields to a shipment
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, req UpdateShipmentRequest) (*ShipmentResponse, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Carrier != nil || req.TrackingNumber != nil {
		sh.SetCarrier(valueOr(req.Carrier, sh.Carrier), valueOr(req.TrackingNumber, sh.TrackingNumber))
	}
	if req.Weight != nil || req.Length != nil || req.Width != nil || req.Height != nil {
		dims := shipping.Dimensions{
			Length: valueOr(req.Length, sh.Dimensions.Length),
			Width:  valueOr(req.Width, sh.Dimensions.Width),
			Height: valueOr(req.Height, sh.Dimensions.Height),
		}
		if err := sh.SetPackage(valueOr(req.Weight, sh.Weight), dims); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		sh.SetNotes(*req.Notes)
	}
	if req.Status != nil {
		if err := sh.SetStatus(shipping.Status(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		if err := setItems(sh, *req.Items); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, sh); err != nil {
		return nil, err
	}
	return s.response(ctx, sh)
}

// UpdateStatus writes the shipment status
func (s *ShipmentService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*ShipmentResponse, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sh.SetStatus(shipping.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sh); err != nil {
		return nil, err
	}
	return s.response(ctx, sh)
}

// Delete removes a shipment
func (s *ShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func setItems(sh *shipping.Shipment, items []ShipmentItemInput) error {
	sh.ClearItems()
	for _, it := range items {
		if err := sh.AddItem(it.ProductID, it.Quantity, it.SerialNumbers); err != nil {
			return err
		}
	}
	return nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
