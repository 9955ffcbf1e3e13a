package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	SKU         string                `gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	Name        string                `gorm:"type:varchar(255);not null"`
	Description string                `gorm:"type:text"`
	Category    string                `gorm:"type:varchar(100);index"`
	Unit        string                `gorm:"type:varchar(20);not null"`
	CostPrice   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Barcode     string                `gorm:"type:varchar(50);index"`
	PhotoURL    string                `gorm:"type:varchar(500)"`
	IsComponent bool                  `gorm:"not null;default:false"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Unit:              m.Unit,
		CostPrice:         m.CostPrice,
		RetailPrice:       m.RetailPrice,
		Barcode:           m.Barcode,
		PhotoURL:          m.PhotoURL,
		IsComponent:       m.IsComponent,
		Status:            m.Status,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Unit:        p.Unit,
		CostPrice:   p.CostPrice,
		RetailPrice: p.RetailPrice,
		Barcode:     p.Barcode,
		PhotoURL:    p.PhotoURL,
		IsComponent: p.IsComponent,
		Status:      p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// ProductComponentModel is one bill-of-materials line.
type ProductComponentModel struct {
	BaseModel
	ParentID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_components_pair,priority:1"`
	ComponentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_components_pair,priority:2;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Component   *ProductModel   `gorm:"foreignKey:ComponentID"`
}

// TableName returns the table name for GORM
func (ProductComponentModel) TableName() string {
	return "product_components"
}

// ToDomain converts the model to a domain ProductComponent; Component is set when preloaded.
func (m *ProductComponentModel) ToDomain() *catalog.ProductComponent {
	line := &catalog.ProductComponent{
		BaseEntity:  m.BaseModel.ToDomain(),
		ParentID:    m.ParentID,
		ComponentID: m.ComponentID,
		Quantity:    m.Quantity,
	}
	if m.Component != nil {
		line.Component = m.Component.ToDomain()
	}
	return line
}

// ProductComponentModelFromDomain creates a persistence model from a BOM line.
func ProductComponentModelFromDomain(l *catalog.ProductComponent) *ProductComponentModel {
	m := &ProductComponentModel{ParentID: l.ParentID, ComponentID: l.ComponentID, Quantity: l.Quantity}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
