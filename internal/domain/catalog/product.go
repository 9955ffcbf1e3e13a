package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// IsValid checks if the status is known
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product represents a product/SKU in the catalog. Components are products
// too; a product's bill of materials links it to its component products.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string
	Name        string
	Description string
	Category    string
	Unit        string
	CostPrice   decimal.Decimal
	RetailPrice decimal.Decimal
	Barcode     string
	PhotoURL    string
	IsComponent bool
	Status      ProductStatus
}

// NewProduct creates a new product
func NewProduct(sku, name, unit string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "pcs"
	}
	if len(unit) > 20 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		Name:              strings.TrimSpace(name),
		Unit:              unit,
		CostPrice:         decimal.Zero,
		RetailPrice:       decimal.Zero,
		Status:            ProductStatusActive,
	}, nil
}

// Rename updates name and description
func (p *Product) Rename(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Touch()
	return nil
}

// ChangeSKU updates the stock keeping unit code
func (p *Product) ChangeSKU(sku string) error {
	if err := validateSKU(sku); err != nil {
		return err
	}
	p.SKU = strings.ToUpper(strings.TrimSpace(sku))
	p.Touch()
	return nil
}

// SetPrices sets cost and retail prices
func (p *Product) SetPrices(cost, retail decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if retail.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Retail price cannot be negative")
	}
	p.CostPrice = cost
	p.RetailPrice = retail
	p.Touch()
	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	p.Barcode = barcode
	p.Touch()
	return nil
}

// SetCategory sets the free-form category label
func (p *Product) SetCategory(category string) {
	p.Category = strings.TrimSpace(category)
	p.Touch()
}

// SetUnit sets the unit of measure
func (p *Product) SetUnit(unit string) error {
	if unit == "" || len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit must be 1-20 characters")
	}
	p.Unit = unit
	p.Touch()
	return nil
}

// SetPhoto records the public URL of the product photo
func (p *Product) SetPhoto(url string) {
	p.PhotoURL = url
	p.Touch()
}

// MarkComponent flags the product as usable in bills of materials
func (p *Product) MarkComponent(component bool) {
	p.IsComponent = component
	p.Touch()
}

// SetStatus changes the product status
func (p *Product) SetStatus(status ProductStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid product status")
	}
	p.Status = status
	p.Touch()
	return nil
}

// IsActive returns true if the product can be sold or produced
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// ProductComponent is one line of a bill of materials: Quantity units of the
// component are consumed per unit of the parent.
type ProductComponent struct {
	shared.BaseEntity
	ParentID    uuid.UUID
	ComponentID uuid.UUID
	Quantity    decimal.Decimal
	Component   *Product
}

// NewProductComponent creates a BOM line
func NewProductComponent(parentID, componentID uuid.UUID, quantity decimal.Decimal) (*ProductComponent, error) {
	if parentID == componentID {
		return nil, shared.NewDomainError("INVALID_BOM", "A product cannot be a component of itself")
	}
	if err := validateComponentQuantity(quantity); err != nil {
		return nil, err
	}
	return &ProductComponent{
		BaseEntity:  shared.NewBaseEntity(),
		ParentID:    parentID,
		ComponentID: componentID,
		Quantity:    quantity,
	}, nil
}

// SetQuantity changes the consumed quantity
func (c *ProductComponent) SetQuantity(quantity decimal.Decimal) error {
	if err := validateComponentQuantity(quantity); err != nil {
		return err
	}
	c.Quantity = quantity
	c.UpdatedAt = shared.Now()
	return nil
}

func validateComponentQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Component quantity must be positive")
	}
	return nil
}

// MaterialCost sums component cost price times quantity over a bill of materials.
// Lines without a loaded component are skipped.
func MaterialCost(lines []ProductComponent) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Component == nil {
			continue
		}
		total = total.Add(line.Component.CostPrice.Mul(line.Quantity))
	}
	return total
}

// BOMGraph maps a product to the components it directly consumes.
type BOMGraph map[uuid.UUID][]uuid.UUID

// WouldCycle reports whether adding parent -> component closes a cycle, i.e.
// parent is already reachable from component.
func (g BOMGraph) WouldCycle(parent, component uuid.UUID) bool {
	if parent == component {
		return true
	}
	seen := map[uuid.UUID]bool{}
	stack := []uuid.UUID{component}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == parent {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g[n]...)
	}
	return false
}
