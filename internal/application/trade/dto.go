package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/trade"
)

// OrderItemInput is one line of an order request
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClientID *uuid.UUID       `json:"clientId"`
	DueDate  *time.Time       `json:"dueDate"`
	Notes    string           `json:"notes" binding:"max=2000"`
	Items    []OrderItemInput `json:"items" binding:"dive"`
}

// UpdateOrderRequest represents a partial order update; Items replaces
// every line when present.
type UpdateOrderRequest struct {
	ClientID *uuid.UUID        `json:"clientId"`
	DueDate  *time.Time        `json:"dueDate"`
	Notes    *string           `json:"notes" binding:"omitempty,max=2000"`
	Status   *string           `json:"status" binding:"omitempty,oneof=pending confirmed in_production ready shipped delivered cancelled"`
	Items    *[]OrderItemInput `json:"items"`
}

// UpdateStatusRequest changes the order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed in_production ready shipped delivered cancelled"`
}

// OrderRow is an order joined with its client name
type OrderRow struct {
	Order      *trade.Order
	ClientName string
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductSKU  string          `json:"productSku,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	ClientID    *uuid.UUID          `json:"clientId"`
	ClientName  string              `json:"clientName,omitempty"`
	Status      string              `json:"status"`
	DueDate     *time.Time          `json:"dueDate"`
	Notes       string              `json:"notes"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	ItemCount   int                 `json:"itemCount"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Version     int                 `json:"version"`
}

// ToOrderResponse converts a joined order row without its items
func ToOrderResponse(r *OrderRow) OrderResponse {
	o := r.Order
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		ClientID:    o.ClientID,
		ClientName:  r.ClientName,
		Status:      string(o.Status),
		DueDate:     o.DueDate,
		Notes:       o.Notes,
		TotalAmount: o.TotalAmount,
		ItemCount:   len(o.Items),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
	}
}

// ProductDemandResponse is one row of the ordered-products report
type ProductDemandResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderCount  int             `json:"orderCount"`
}
