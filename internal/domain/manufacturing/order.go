package manufacturing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// Status represents the production status of a manufacturing order
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority of a manufacturing order
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Order is a manufacturing (production) order.
//
// Status transitions are plain writes: any action is accepted as long as the
// order exists. The only guarded value is the produced quantity, which may
// exceed the planned quantity only with an explicit override.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	ProductID        uuid.UUID
	PlannedQuantity  int
	ProducedQuantity int
	// StockedQuantity is how much of the output has already been put into
	// inventory. Completing an order again only stocks the difference.
	StockedQuantity  int
	Status           Status
	Priority         Priority
	MaterialCost     decimal.Decimal
	LaborCost        decimal.Decimal
	OverheadCost     decimal.Decimal
	SourceOrderID    *uuid.UUID
	AssignedWorkerID *uuid.UUID
	WarehouseID      *uuid.UUID
	QualityRating    *int
	SerialNumbers    []string
	PlannedStart     *time.Time
	PlannedEnd       *time.Time
	StartedAt        *time.Time
	PausedAt         *time.Time
	CompletedAt      *time.Time
	Notes            string
}

// NewOrder creates a pending manufacturing order
func NewOrder(orderNumber string, productID uuid.UUID, plannedQuantity int) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if plannedQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Planned quantity must be positive")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ProductID:         productID,
		PlannedQuantity:   plannedQuantity,
		Status:            StatusPending,
		Priority:          PriorityNormal,
		MaterialCost:      decimal.Zero,
		LaborCost:         decimal.Zero,
		OverheadCost:      decimal.Zero,
		SerialNumbers:     []string{},
	}, nil
}

// TotalCost is the sum of material, labor and overhead costs
func (o *Order) TotalCost() decimal.Decimal {
	return o.MaterialCost.Add(o.LaborCost).Add(o.OverheadCost)
}

// UnitCost is the total cost spread over produced units, or planned units
// while nothing has been produced.
func (o *Order) UnitCost() decimal.Decimal {
	qty := o.ProducedQuantity
	if qty == 0 {
		qty = o.PlannedQuantity
	}
	return o.TotalCost().Div(decimal.NewFromInt(int64(qty))).Round(4)
}

// SetPlannedQuantity changes the planned quantity
func (o *Order) SetPlannedQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Planned quantity must be positive")
	}
	o.PlannedQuantity = quantity
	o.Touch()
	return nil
}

// SetCosts sets the cost breakdown
func (o *Order) SetCosts(material, labor, overhead decimal.Decimal) error {
	if material.IsNegative() || labor.IsNegative() || overhead.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Costs cannot be negative")
	}
	o.MaterialCost = material
	o.LaborCost = labor
	o.OverheadCost = overhead
	o.Touch()
	return nil
}

// SetPriority changes the priority
func (o *Order) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	o.Priority = p
	o.Touch()
	return nil
}

// SetSchedule sets the planned start and end
func (o *Order) SetSchedule(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Planned end cannot be before planned start")
	}
	o.PlannedStart = start
	o.PlannedEnd = end
	o.Touch()
	return nil
}

// Assign links the order to a worker, warehouse and source sales order
func (o *Order) Assign(workerID, warehouseID, sourceOrderID *uuid.UUID) {
	o.AssignedWorkerID = workerID
	o.WarehouseID = warehouseID
	o.SourceOrderID = sourceOrderID
	o.Touch()
}

// SetNotes sets free-form notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.Touch()
}

// Start moves the order to in_progress and stamps the first start time.
func (o *Order) Start() {
	now := shared.Now()
	if o.StartedAt == nil {
		o.StartedAt = &now
	}
	o.PausedAt = nil
	o.Status = StatusInProgress
	o.Touch()
}

// Pause moves the order to paused
func (o *Order) Pause() {
	now := shared.Now()
	o.PausedAt = &now
	o.Status = StatusPaused
	o.Touch()
}

// Resume moves the order back to in_progress
func (o *Order) Resume() {
	o.PausedAt = nil
	o.Status = StatusInProgress
	o.Touch()
}

// Stop halts production and cancels the order
func (o *Order) Stop() {
	o.PausedAt = nil
	o.Status = StatusCancelled
	o.Touch()
}

// Completion is the payload of a completion action
type Completion struct {
	ProducedQuantity int
	QualityRating    *int
	// Override allows a produced quantity above the planned quantity.
	Override bool
}

// Complete records the produced quantity verbatim and marks the order completed.
func (o *Order) Complete(c Completion) error {
	if c.ProducedQuantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Produced quantity cannot be negative")
	}
	if c.ProducedQuantity > o.PlannedQuantity && !c.Override {
		return shared.NewDomainError("OVERPRODUCTION",
			fmt.Sprintf("Produced quantity %d exceeds planned quantity %d; set override to accept it",
				c.ProducedQuantity, o.PlannedQuantity))
	}
	if c.QualityRating != nil && (*c.QualityRating < 1 || *c.QualityRating > 5) {
		return shared.NewDomainError("INVALID_QUALITY_RATING", "Quality rating must be between 1 and 5")
	}

	now := shared.Now()
	o.ProducedQuantity = c.ProducedQuantity
	o.QualityRating = c.QualityRating
	o.CompletedAt = &now
	o.PausedAt = nil
	o.Status = StatusCompleted
	o.Touch()
	return nil
}

// AddSerialNumbers appends generated serial numbers
func (o *Order) AddSerialNumbers(serials []string) {
	o.SerialNumbers = append(o.SerialNumbers, serials...)
	o.Touch()
}

// PendingStock is the produced quantity not yet put into inventory
func (o *Order) PendingStock() int {
	if n := o.ProducedQuantity - o.StockedQuantity; n > 0 {
		return n
	}
	return 0
}

// MarkStocked records that quantity units went into inventory
func (o *Order) MarkStocked(quantity int) {
	o.StockedQuantity += quantity
	o.Touch()
}

// SerialTarget is how many serial numbers the order should carry: produced
// units once completed, planned units before.
func (o *Order) SerialTarget() int {
	if o.Status == StatusCompleted {
		return o.ProducedQuantity
	}
	return o.PlannedQuantity
}
