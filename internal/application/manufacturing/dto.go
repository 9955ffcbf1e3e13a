package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/manufacturing"
)

// CreateOrderRequest represents a request to create a manufacturing order
type CreateOrderRequest struct {
	ProductID        uuid.UUID        `json:"productId" binding:"required"`
	PlannedQuantity  int              `json:"plannedQuantity" binding:"required,min=1"`
	Priority         string           `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	MaterialCost     *decimal.Decimal `json:"materialCost"`
	LaborCost        *decimal.Decimal `json:"laborCost"`
	OverheadCost     *decimal.Decimal `json:"overheadCost"`
	SourceOrderID    *uuid.UUID       `json:"sourceOrderId"`
	AssignedWorkerID *uuid.UUID       `json:"assignedWorkerId"`
	WarehouseID      *uuid.UUID       `json:"warehouseId"`
	PlannedStart     *time.Time       `json:"plannedStart"`
	PlannedEnd       *time.Time       `json:"plannedEnd"`
	Notes            string           `json:"notes" binding:"max=2000"`
}

// UpdateOrderRequest represents a partial manufacturing order update
type UpdateOrderRequest struct {
	PlannedQuantity  *int             `json:"plannedQuantity" binding:"omitempty,min=1"`
	Priority         *string          `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	MaterialCost     *decimal.Decimal `json:"materialCost"`
	LaborCost        *decimal.Decimal `json:"laborCost"`
	OverheadCost     *decimal.Decimal `json:"overheadCost"`
	SourceOrderID    *uuid.UUID       `json:"sourceOrderId"`
	AssignedWorkerID *uuid.UUID       `json:"assignedWorkerId"`
	WarehouseID      *uuid.UUID       `json:"warehouseId"`
	PlannedStart     *time.Time       `json:"plannedStart"`
	PlannedEnd       *time.Time       `json:"plannedEnd"`
	Notes            *string          `json:"notes" binding:"omitempty,max=2000"`
}

// CompleteRequest is the payload of the complete action
type CompleteRequest struct {
	ProducedQuantity      int  `json:"producedQuantity" binding:"min=0"`
	QualityRating         *int `json:"qualityRating" binding:"omitempty,min=1,max=5"`
	Override              bool `json:"override"`
	GenerateSerialNumbers bool `json:"generateSerialNumbers"`
}

// SerialNumbersRequest asks for Count new serial numbers; zero fills up to
// the produced (or planned) quantity.
type SerialNumbersRequest struct {
	Count int `json:"count" binding:"min=0,max=10000"`
}

// OrderRow is a manufacturing order joined with display names
type OrderRow struct {
	Order       *manufacturing.Order
	ProductSKU  string
	ProductName string
	WorkerName  string
}

// OrderResponse represents a manufacturing order in API responses
type OrderResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	ProductID        uuid.UUID       `json:"productId"`
	ProductSKU       string          `json:"productSku,omitempty"`
	ProductName      string          `json:"productName,omitempty"`
	PlannedQuantity  int             `json:"plannedQuantity"`
	ProducedQuantity int             `json:"producedQuantity"`
	Status           string          `json:"status"`
	Priority         string          `json:"priority"`
	MaterialCost     decimal.Decimal `json:"materialCost"`
	LaborCost        decimal.Decimal `json:"laborCost"`
	OverheadCost     decimal.Decimal `json:"overheadCost"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	SourceOrderID    *uuid.UUID      `json:"sourceOrderId"`
	AssignedWorkerID *uuid.UUID      `json:"assignedWorkerId"`
	WorkerName       string          `json:"workerName,omitempty"`
	WarehouseID      *uuid.UUID      `json:"warehouseId"`
	QualityRating    *int            `json:"qualityRating"`
	SerialNumbers    []string        `json:"serialNumbers"`
	PlannedStart     *time.Time      `json:"plannedStart"`
	PlannedEnd       *time.Time      `json:"plannedEnd"`
	StartedAt        *time.Time      `json:"startedAt"`
	PausedAt         *time.Time      `json:"pausedAt"`
	CompletedAt      *time.Time      `json:"completedAt"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Version          int             `json:"version"`
}

// ToOrderResponse converts a joined manufacturing order row
func ToOrderResponse(r *OrderRow) OrderResponse {
	o := r.Order
	serials := o.SerialNumbers
	if serials == nil {
		serials = []string{}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		ProductID:        o.ProductID,
		ProductSKU:       r.ProductSKU,
		ProductName:      r.ProductName,
		PlannedQuantity:  o.PlannedQuantity,
		ProducedQuantity: o.ProducedQuantity,
		Status:           string(o.Status),
		Priority:         string(o.Priority),
		MaterialCost:     o.MaterialCost,
		LaborCost:        o.LaborCost,
		OverheadCost:     o.OverheadCost,
		TotalCost:        o.TotalCost(),
		UnitCost:         o.UnitCost(),
		SourceOrderID:    o.SourceOrderID,
		AssignedWorkerID: o.AssignedWorkerID,
		WorkerName:       r.WorkerName,
		WarehouseID:      o.WarehouseID,
		QualityRating:    o.QualityRating,
		SerialNumbers:    serials,
		PlannedStart:     o.PlannedStart,
		PlannedEnd:       o.PlannedEnd,
		StartedAt:        o.StartedAt,
		PausedAt:         o.PausedAt,
		CompletedAt:      o.CompletedAt,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}
