package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// ReceiptStatus represents the status of a supplier receipt
type ReceiptStatus string

const (
	ReceiptStatusDraft     ReceiptStatus = "draft"
	ReceiptStatusReceived  ReceiptStatus = "received"
	ReceiptStatusCancelled ReceiptStatus = "cancelled"
)

// ReceiptItem is a received component line
type ReceiptItem struct {
	ID          uuid.UUID
	ReceiptID   uuid.UUID
	ComponentID uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// Total returns quantity times unit cost
func (i ReceiptItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

// SupplierReceipt is a goods-received document against a supplier
type SupplierReceipt struct {
	shared.BaseAggregateRoot
	ReceiptNumber string
	SupplierID    uuid.UUID
	WarehouseID   uuid.UUID
	Status        ReceiptStatus
	DocumentDate  *time.Time
	ReceivedAt    *time.Time
	Notes         string
	TotalAmount   decimal.Decimal
	Items         []ReceiptItem
}

// NewSupplierReceipt creates a draft receipt
func NewSupplierReceipt(number string, supplierID, warehouseID uuid.UUID) (*SupplierReceipt, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &SupplierReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     number,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            ReceiptStatusDraft,
		TotalAmount:       decimal.Zero,
		Items:             make([]ReceiptItem, 0),
	}, nil
}

// IsDraft returns true while the receipt can be edited
func (r *SupplierReceipt) IsDraft() bool {
	return r.Status == ReceiptStatusDraft
}

func (r *SupplierReceipt) ensureDraft() error {
	if !r.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft receipts can be changed")
	}
	return nil
}

// AddItem appends a component line
func (r *SupplierReceipt) AddItem(componentID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if err := r.ensureDraft(); err != nil {
		return err
	}
	if componentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Component ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit cost cannot be negative")
	}
	r.Items = append(r.Items, ReceiptItem{
		ID:          uuid.New(),
		ReceiptID:   r.ID,
		ComponentID: componentID,
		Quantity:    quantity,
		UnitCost:    unitCost,
	})
	r.recalculate()
	r.Touch()
	return nil
}

// ClearItems removes every line of a draft
func (r *SupplierReceipt) ClearItems() error {
	if err := r.ensureDraft(); err != nil {
		return err
	}
	r.Items = make([]ReceiptItem, 0)
	r.recalculate()
	r.Touch()
	return nil
}

// SetHeader updates supplier, warehouse, document date and notes of a draft
func (r *SupplierReceipt) SetHeader(supplierID, warehouseID uuid.UUID, documentDate *time.Time, notes string) error {
	if err := r.ensureDraft(); err != nil {
		return err
	}
	if supplierID != uuid.Nil {
		r.SupplierID = supplierID
	}
	if warehouseID != uuid.Nil {
		r.WarehouseID = warehouseID
	}
	r.DocumentDate = documentDate
	r.Notes = notes
	r.Touch()
	return nil
}

// Receive posts the receipt. Stock is increased by the caller.
func (r *SupplierReceipt) Receive() error {
	if r.Status == ReceiptStatusReceived {
		return shared.NewDomainError("ALREADY_RECEIVED", "Receipt has already been received")
	}
	if err := r.ensureDraft(); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("EMPTY_RECEIPT", "Receipt has no items")
	}
	now := shared.Now()
	r.ReceivedAt = &now
	r.Status = ReceiptStatusReceived
	r.Touch()
	return nil
}

// Cancel cancels a draft
func (r *SupplierReceipt) Cancel() error {
	if err := r.ensureDraft(); err != nil {
		return err
	}
	r.Status = ReceiptStatusCancelled
	r.Touch()
	return nil
}

func (r *SupplierReceipt) recalculate() {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Total())
	}
	r.TotalAmount = total.Round(2)
}
