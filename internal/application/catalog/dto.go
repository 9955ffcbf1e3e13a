package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU         string           `json:"sku" binding:"required,min=1,max=50"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Category    string           `json:"category" binding:"max=100"`
	Unit        string           `json:"unit" binding:"max=20"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	RetailPrice *decimal.Decimal `json:"retailPrice"`
	Barcode     string           `json:"barcode" binding:"max=50"`
	IsComponent bool             `json:"isComponent"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" binding:"omitempty,min=1,max=50"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	RetailPrice *decimal.Decimal `json:"retailPrice"`
	Barcode     *string          `json:"barcode" binding:"omitempty,max=50"`
	IsComponent *bool            `json:"isComponent"`
	Status      *string          `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Barcode     string          `json:"barcode"`
	PhotoURL    string          `json:"photoUrl,omitempty"`
	IsComponent bool            `json:"isComponent"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
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
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ComponentRequest adds a component to a bill of materials or changes its quantity
type ComponentRequest struct {
	ComponentID uuid.UUID       `json:"componentId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ComponentResponse is one bill-of-materials line
type ComponentResponse struct {
	ID          uuid.UUID       `json:"id"`
	ParentID    uuid.UUID       `json:"parentId"`
	ComponentID uuid.UUID       `json:"componentId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	LineCost    decimal.Decimal `json:"lineCost"`
}

// ToComponentResponse converts a BOM line
func ToComponentResponse(line *catalog.ProductComponent) ComponentResponse {
	resp := ComponentResponse{
		ID:          line.ID,
		ParentID:    line.ParentID,
		ComponentID: line.ComponentID,
		Quantity:    line.Quantity,
	}
	if line.Component != nil {
		resp.SKU = line.Component.SKU
		resp.Name = line.Component.Name
		resp.Unit = line.Component.Unit
		resp.UnitCost = line.Component.CostPrice
		resp.LineCost = line.Component.CostPrice.Mul(line.Quantity)
	}
	return resp
}

// CostResponse is the material cost breakdown of a product
type CostResponse struct {
	ProductID    uuid.UUID           `json:"productId"`
	MaterialCost decimal.Decimal     `json:"materialCost"`
	Components   []ComponentResponse `json:"components"`
}

// PhotoResponse carries a temporary download link for a product photo
type PhotoResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
