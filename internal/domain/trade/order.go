package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProduction, OrderStatusReady,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line of an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// NewOrderItem creates a line item; Total is quantity times unit price
func NewOrderItem(orderID, productID uuid.UUID, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     quantity.Mul(unitPrice).Round(2),
	}, nil
}

// Order is a customer order owning its line items
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string
	ClientID    *uuid.UUID
	Status      OrderStatus
	DueDate     *time.Time
	Notes       string
	TotalAmount decimal.Decimal
	Items       []OrderItem
}

// NewOrder creates a pending order
func NewOrder(orderNumber string, clientID *uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ClientID:          clientID,
		Status:            OrderStatusPending,
		TotalAmount:       decimal.Zero,
		Items:             make([]OrderItem, 0),
	}, nil
}

// AddItem appends a line item and recalculates the total
func (o *Order) AddItem(productID uuid.UUID, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	item, err := NewOrderItem(o.ID, productID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.recalculate()
	o.Touch()
	return item, nil
}

// ClearItems removes every line item
func (o *Order) ClearItems() {
	o.Items = make([]OrderItem, 0)
	o.recalculate()
	o.Touch()
}

// SetClient changes the ordering client
func (o *Order) SetClient(clientID *uuid.UUID) {
	o.ClientID = clientID
	o.Touch()
}

// SetDetails sets due date and notes
func (o *Order) SetDetails(dueDate *time.Time, notes string) {
	o.DueDate = dueDate
	o.Notes = notes
	o.Touch()
}

// SetStatus writes the order status
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}
	o.Status = status
	o.Touch()
	return nil
}

// IsCancelled returns true for cancelled orders
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total)
	}
	o.TotalAmount = total
}

// ProductDemand is the ordered quantity of one product over open orders.
type ProductDemand struct {
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	TotalAmount decimal.Decimal
	OrderCount  int
}
