package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
)

// ProductsTableKey is the DataTable key of the products list
const ProductsTableKey = "products"

// MaxPhotoSize is the largest accepted product photo in bytes
const MaxPhotoSize = 5 << 20

// PhotoURLExpiry is how long a photo download link stays valid
const PhotoURLExpiry = 15 * time.Minute

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoStorage is the object storage used for product photos.
// Implemented by the infrastructure layer (S3 or any S3-compatible store).
type PhotoStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// ProductService handles product and bill-of-materials operations
type ProductService struct {
	productRepo catalog.ProductRepository
	bomRepo     catalog.BOMRepository
	storage     PhotoStorage
	table       *datatable.Table[*catalog.Product]
	fetch       datatable.Fetcher[*catalog.Product]
}

// NewProductService creates a new ProductService. storage may be nil when
// object storage is not configured.
func NewProductService(
	productRepo catalog.ProductRepository,
	bomRepo catalog.BOMRepository,
	storage PhotoStorage,
) *ProductService {
	s := &ProductService{
		productRepo: productRepo,
		bomRepo:     bomRepo,
		storage:     storage,
		table:       NewProductsTable(),
	}
	s.fetch = datatable.Delegate(s.table, s.query)
	return s
}

// NewProductsTable defines the products list columns
func NewProductsTable() *datatable.Table[*catalog.Product] {
	return datatable.NewTable(ProductsTableKey, []datatable.Column[*catalog.Product]{
		{Key: "sku", Label: "SKU", Sortable: true, Filterable: true, Value: func(p *catalog.Product) any { return p.SKU }},
		{Key: "name", Label: "Name", Sortable: true, Filterable: true, Value: func(p *catalog.Product) any { return p.Name }},
		{Key: "category", Label: "Category", Sortable: true, Filterable: true, Value: func(p *catalog.Product) any { return p.Category }},
		{Key: "unit", Label: "Unit", Value: func(p *catalog.Product) any { return p.Unit }},
		{Key: "costPrice", Label: "Cost price", Type: datatable.ColumnCurrency, Sortable: true, Value: func(p *catalog.Product) any { return p.CostPrice }},
		{Key: "retailPrice", Label: "Retail price", Type: datatable.ColumnCurrency, Sortable: true, Value: func(p *catalog.Product) any { return p.RetailPrice }},
		{Key: "barcode", Label: "Barcode", Filterable: true, Value: func(p *catalog.Product) any { return p.Barcode }},
		{Key: "isComponent", Label: "Component", Type: datatable.ColumnBoolean, Filterable: true, Value: func(p *catalog.Product) any { return p.IsComponent }},
		{Key: "status", Label: "Status", Type: datatable.ColumnStatus, Sortable: true, Filterable: true, Value: func(p *catalog.Product) any { return string(p.Status) }},
		{Key: "createdAt", Label: "Created", Type: datatable.ColumnDate, Sortable: true, Value: func(p *catalog.Product) any { return p.CreatedAt }},
	},
		datatable.WithDefaultSort("name", datatable.SortAsc),
		datatable.WithHiddenColumns("barcode", "createdAt"),
	)
}

// Table returns the products table definition
func (s *ProductService) Table() *datatable.Table[*catalog.Product] {
	return s.table
}

func (s *ProductService) query(ctx context.Context, q datatable.Query) ([]*catalog.Product, int64, error) {
	filter := q.ToFilter()
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]*catalog.Product, len(products))
	for i := range products {
		rows[i] = &products[i]
	}
	return rows, total, nil
}

// List runs a table query in the database
func (s *ProductService) List(ctx context.Context, q datatable.Query) (datatable.Result[ProductResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[ProductResponse]{}, err
	}
	return datatable.MapResult(res, ToProductResponse), nil
}

// Export returns every product matching q
func (s *ProductService) Export(ctx context.Context, q datatable.Query) ([]*catalog.Product, error) {
	return s.fetch.All(ctx, q)
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, strings.ToUpper(strings.TrimSpace(req.SKU)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Rename(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	product.SetCategory(req.Category)
	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil || req.RetailPrice != nil {
		if err := product.SetPrices(valueOr(req.CostPrice, decimal.Zero), valueOr(req.RetailPrice, decimal.Zero)); err != nil {
			return nil, err
		}
	}
	product.MarkComponent(req.IsComponent)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies the supplied fields to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && !strings.EqualFold(strings.TrimSpace(*req.SKU), product.SKU) {
		exists, err := s.productRepo.ExistsBySKU(ctx, strings.ToUpper(strings.TrimSpace(*req.SKU)))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
		}
		if err := product.ChangeSKU(*req.SKU); err != nil {
			return nil, err
		}
	}
	if req.Name != nil || req.Description != nil {
		if err := product.Rename(valueOr(req.Name, product.Name), valueOr(req.Description, product.Description)); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		product.SetCategory(*req.Category)
	}
	if req.Unit != nil {
		if err := product.SetUnit(*req.Unit); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil || req.RetailPrice != nil {
		if err := product.SetPrices(valueOr(req.CostPrice, product.CostPrice), valueOr(req.RetailPrice, product.RetailPrice)); err != nil {
			return nil, err
		}
	}
	if req.Barcode != nil {
		if err := product.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.IsComponent != nil {
		product.MarkComponent(*req.IsComponent)
	}
	if req.Status != nil {
		if err := product.SetStatus(catalog.ProductStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product that no bill of materials consumes
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.bomRepo.IsUsedAsComponent(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("PRODUCT_IN_USE", "Product is a component of another product")
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if product.PhotoURL != "" && s.storage != nil {
		// best effort; the row is already gone
		_ = s.storage.DeleteObject(ctx, product.PhotoURL)
	}
	return nil
}

// ListComponents returns the bill of materials of a product
func (s *ProductService) ListComponents(ctx context.Context, parentID uuid.UUID) ([]ComponentResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, parentID); err != nil {
		return nil, err
	}
	lines, err := s.bomRepo.FindComponents(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]ComponentResponse, len(lines))
	for i := range lines {
		out[i] = ToComponentResponse(&lines[i])
	}
	return out, nil
}

// SetComponent adds a component to a bill of materials, or changes the
// quantity when the component is already listed. Cycles are rejected.
func (s *ProductService) SetComponent(ctx context.Context, parentID uuid.UUID, req ComponentRequest) (*ComponentResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, parentID); err != nil {
		return nil, err
	}
	component, err := s.productRepo.FindByID(ctx, req.ComponentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_COMPONENT", "Component product not found")
		}
		return nil, err
	}

	line, err := s.bomRepo.FindLine(ctx, parentID, req.ComponentID)
	switch {
	case err == nil:
		if err := line.SetQuantity(req.Quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		graph, err := s.bomRepo.Graph(ctx)
		if err != nil {
			return nil, err
		}
		if graph.WouldCycle(parentID, req.ComponentID) {
			return nil, shared.NewDomainError("BOM_CYCLE", "Component would create a cycle in the bill of materials")
		}
		line, err = catalog.NewProductComponent(parentID, req.ComponentID, req.Quantity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.bomRepo.Save(ctx, line); err != nil {
		return nil, err
	}
	if !component.IsComponent {
		component.MarkComponent(true)
		if err := s.productRepo.Save(ctx, component); err != nil {
			return nil, err
		}
	}
	line.Component = component
	resp := ToComponentResponse(line)
	return &resp, nil
}

// RemoveComponent removes a component from a bill of materials
func (s *ProductService) RemoveComponent(ctx context.Context, parentID, componentID uuid.UUID) error {
	if _, err := s.bomRepo.FindLine(ctx, parentID, componentID); err != nil {
		return err
	}
	return s.bomRepo.Delete(ctx, parentID, componentID)
}

// Cost computes the material cost of one unit of a product
func (s *ProductService) Cost(ctx context.Context, productID uuid.UUID) (*CostResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	lines, err := s.bomRepo.FindComponents(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := &CostResponse{
		ProductID:    productID,
		MaterialCost: catalog.MaterialCost(lines),
		Components:   make([]ComponentResponse, len(lines)),
	}
	for i := range lines {
		resp.Components[i] = ToComponentResponse(&lines[i])
	}
	return resp, nil
}

// UploadPhoto stores a product photo and records its storage key
func (s *ProductService) UploadPhoto(ctx context.Context, productID uuid.UUID, contentType string, data []byte) (*ProductResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("SERVICE_UNAVAILABLE", "Photo storage is not configured")
	}
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Photo must be a JPEG, PNG or WebP image")
	}
	if len(data) == 0 || len(data) > MaxPhotoSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", fmt.Sprintf("Photo must be between 1 byte and %d bytes", MaxPhotoSize))
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := path.Join("products", productID.String(), uuid.NewString()+ext)
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	previous := product.PhotoURL
	product.SetPhoto(key)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if previous != "" {
		_ = s.storage.DeleteObject(ctx, previous)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// PhotoURL returns a temporary download link for the product photo
func (s *ProductService) PhotoURL(ctx context.Context, productID uuid.UUID) (*PhotoResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("SERVICE_UNAVAILABLE", "Photo storage is not configured")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.PhotoURL == "" {
		return nil, shared.NotFoundError("Photo of product", productID.String())
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, product.PhotoURL, PhotoURLExpiry)
	if err != nil {
		return nil, err
	}
	return &PhotoResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
