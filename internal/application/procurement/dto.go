package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/procurement"
)

// ReceiptItemInput is one received line of a request
type ReceiptItemInput struct {
	ComponentID uuid.UUID       `json:"componentId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

// CreateReceiptRequest represents a request to create a draft receipt
type CreateReceiptRequest struct {
	SupplierID   uuid.UUID          `json:"supplierId" binding:"required"`
	WarehouseID  uuid.UUID          `json:"warehouseId" binding:"required"`
	DocumentDate *time.Time         `json:"documentDate"`
	Notes        string             `json:"notes" binding:"max=2000"`
	Items        []ReceiptItemInput `json:"items" binding:"dive"`
}

// UpdateReceiptRequest is a partial draft update; Items replaces every line
// when present.
type UpdateReceiptRequest struct {
	SupplierID   *uuid.UUID          `json:"supplierId"`
	WarehouseID  *uuid.UUID          `json:"warehouseId"`
	DocumentDate *time.Time          `json:"documentDate"`
	Notes        *string             `json:"notes" binding:"omitempty,max=2000"`
	Items        *[]ReceiptItemInput `json:"items"`
}

// ReceiptRow is a receipt joined with supplier and warehouse names
type ReceiptRow struct {
	Receipt       *procurement.SupplierReceipt
	SupplierName  string
	WarehouseName string
}

// ReceiptItemResponse represents a received line
type ReceiptItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ComponentID   uuid.UUID       `json:"componentId"`
	ComponentSKU  string          `json:"componentSku,omitempty"`
	ComponentName string          `json:"componentName,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	Total         decimal.Decimal `json:"total"`
}

// ReceiptResponse represents a supplier receipt in API responses
type ReceiptResponse struct {
	ID            uuid.UUID             `json:"id"`
	ReceiptNumber string                `json:"receiptNumber"`
	SupplierID    uuid.UUID             `json:"supplierId"`
	SupplierName  string                `json:"supplierName,omitempty"`
	WarehouseID   uuid.UUID             `json:"warehouseId"`
	WarehouseName string                `json:"warehouseName,omitempty"`
	Status        string                `json:"status"`
	DocumentDate  *time.Time            `json:"documentDate"`
	ReceivedAt    *time.Time            `json:"receivedAt"`
	Notes         string                `json:"notes"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	ItemCount     int                   `json:"itemCount"`
	Items         []ReceiptItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// ToReceiptResponse converts a joined receipt row without its items
func ToReceiptResponse(r *ReceiptRow) ReceiptResponse {
	rc := r.Receipt
	return ReceiptResponse{
		ID:            rc.ID,
		ReceiptNumber: rc.ReceiptNumber,
		SupplierID:    rc.SupplierID,
		SupplierName:  r.SupplierName,
		WarehouseID:   rc.WarehouseID,
		WarehouseName: r.WarehouseName,
		Status:        string(rc.Status),
		DocumentDate:  rc.DocumentDate,
		ReceivedAt:    rc.ReceivedAt,
		Notes:         rc.Notes,
		TotalAmount:   rc.TotalAmount,
		ItemCount:     len(rc.Items),
		CreatedAt:     rc.CreatedAt,
		UpdatedAt:     rc.UpdatedAt,
	}
}
