package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// Status represents the delivery status of a shipment
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusShipped   Status = "shipped"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPreparing, StatusShipped, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Dimensions of a package in centimetres
type Dimensions struct {
	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal
}

// Volume returns length x width x height
func (d Dimensions) Volume() decimal.Decimal {
	return d.Length.Mul(d.Width).Mul(d.Height)
}

// ShipmentItem is a shipped product line with its serial numbers
type ShipmentItem struct {
	ID            uuid.UUID
	ShipmentID    uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	SerialNumbers []string
}

// Shipment is a delivery of (part of) an order
type Shipment struct {
	shared.BaseAggregateRoot
	ShipmentNumber string
	OrderID        uuid.UUID
	Carrier        string
	TrackingNumber string
	Weight         decimal.Decimal
	Dimensions     Dimensions
	Status         Status
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Notes          string
	Items          []ShipmentItem
}

// NewShipment creates a shipment in preparation
func NewShipment(number string, orderID uuid.UUID) (*Shipment, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_NUMBER", "Shipment number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	return &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShipmentNumber:    number,
		OrderID:           orderID,
		Status:            StatusPreparing,
		Weight:            decimal.Zero,
		Items:             make([]ShipmentItem, 0),
	}, nil
}

// SetCarrier sets carrier and tracking number
func (s *Shipment) SetCarrier(carrier, trackingNumber string) {
	s.Carrier = carrier
	s.TrackingNumber = trackingNumber
	s.Touch()
}

// SetPackage sets weight and dimensions
func (s *Shipment) SetPackage(weight decimal.Decimal, dims Dimensions) error {
	if weight.IsNegative() || dims.Length.IsNegative() || dims.Width.IsNegative() || dims.Height.IsNegative() {
		return shared.NewDomainError("INVALID_PACKAGE", "Weight and dimensions cannot be negative")
	}
	s.Weight = weight
	s.Dimensions = dims
	s.Touch()
	return nil
}

// SetNotes sets free-form notes
func (s *Shipment) SetNotes(notes string) {
	s.Notes = notes
	s.Touch()
}

// AddItem appends a shipped line
func (s *Shipment) AddItem(productID uuid.UUID, quantity decimal.Decimal, serials []string) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if serials == nil {
		serials = []string{}
	}
	s.Items = append(s.Items, ShipmentItem{
		ID:            uuid.New(),
		ShipmentID:    s.ID,
		ProductID:     productID,
		Quantity:      quantity,
		SerialNumbers: serials,
	})
	s.Touch()
	return nil
}

// ClearItems removes every line
func (s *Shipment) ClearItems() {
	s.Items = make([]ShipmentItem, 0)
	s.Touch()
}

// SetStatus writes the status and stamps shipped/delivered times the first
// time those states are reached.
func (s *Shipment) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid shipment status")
	}
	now := shared.Now()
	switch status {
	case StatusShipped, StatusInTransit:
		if s.ShippedAt == nil {
			s.ShippedAt = &now
		}
	case StatusDelivered:
		if s.ShippedAt == nil {
			s.ShippedAt = &now
		}
		if s.DeliveredAt == nil {
			s.DeliveredAt = &now
		}
	}
	s.Status = status
	s.Touch()
	return nil
}
