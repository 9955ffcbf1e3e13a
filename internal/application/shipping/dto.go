package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shipping"
)

// ShipmentItemInput is one shipped line of a request
type ShipmentItemInput struct {
	ProductID     uuid.UUID       `json:"productId" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	SerialNumbers []string        `json:"serialNumbers"`
}

// CreateShipmentRequest represents a request to create a shipment
type CreateShipmentRequest struct {
	OrderID        uuid.UUID           `json:"orderId" binding:"required"`
	Carrier        string              `json:"carrier" binding:"max=100"`
	TrackingNumber string              `json:"trackingNumber" binding:"max=100"`
	Weight         decimal.Decimal     `json:"weight"`
	Length         decimal.Decimal     `json:"length"`
	Width          decimal.Decimal     `json:"width"`
	Height         decimal.Decimal     `json:"height"`
	Notes          string              `json:"notes" binding:"max=2000"`
	Items          []ShipmentItemInput `json:"items" binding:"dive"`
}

// UpdateShipmentRequest is a partial shipment update; Items replaces every
// line when present.
type UpdateShipmentRequest struct {
	Carrier        *string              `json:"carrier" binding:"omitempty,max=100"`
	TrackingNumber *string              `json:"trackingNumber" binding:"omitempty,max=100"`
	Weight         *decimal.Decimal     `json:"weight"`
	Length         *decimal.Decimal     `json:"length"`
	Width          *decimal.Decimal     `json:"width"`
	Height         *decimal.Decimal     `json:"height"`
	Notes          *string              `json:"notes" binding:"omitempty,max=2000"`
	Status         *string              `json:"status" binding:"omitempty,oneof=preparing shipped in_transit delivered"`
	Items          *[]ShipmentItemInput `json:"items"`
}

// UpdateStatusRequest changes the shipment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=preparing shipped in_transit delivered"`
}

// ShipmentRow is a shipment joined with its order number
type ShipmentRow struct {
	Shipment    *shipping.Shipment
	OrderNumber string
}

// ShipmentItemResponse represents a shipped line
type ShipmentItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"productId"`
	Quantity      decimal.Decimal `json:"quantity"`
	SerialNumbers []string        `json:"serialNumbers"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID             uuid.UUID              `json:"id"`
	ShipmentNumber string                 `json:"shipmentNumber"`
	OrderID        uuid.UUID              `json:"orderId"`
	OrderNumber    string                 `json:"orderNumber,omitempty"`
	Carrier        string                 `json:"carrier"`
	TrackingNumber string                 `json:"trackingNumber"`
	Weight         decimal.Decimal        `json:"weight"`
	Length         decimal.Decimal        `json:"length"`
	Width          decimal.Decimal        `json:"width"`
	Height         decimal.Decimal        `json:"height"`
	Status         string                 `json:"status"`
	ShippedAt      *time.Time             `json:"shippedAt"`
	DeliveredAt    *time.Time             `json:"deliveredAt"`
	Notes          string                 `json:"notes"`
	Items          []ShipmentItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// ToShipmentResponse converts a joined shipment row
func ToShipmentResponse(r *ShipmentRow) ShipmentResponse {
	s := r.Shipment
	items := make([]ShipmentItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = ShipmentItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			SerialNumbers: it.SerialNumbers,
		}
	}
	return ShipmentResponse{
		ID:             s.ID,
		ShipmentNumber: s.ShipmentNumber,
		OrderID:        s.OrderID,
		OrderNumber:    r.OrderNumber,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		Weight:         s.Weight,
		Length:         s.Dimensions.Length,
		Width:          s.Dimensions.Width,
		Height:         s.Dimensions.Height,
		Status:         string(s.Status),
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		Notes:          s.Notes,
		Items:          items,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
