package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

var productColumns = columnSet{
	columns: map[string]column{
		"sku":         {"sku", kindText},
		"name":        {"name", kindText},
		"category":    {"category", kindText},
		"barcode":     {"barcode", kindText},
		"costPrice":   {"cost_price", kindValue},
		"retailPrice": {"retail_price", kindValue},
		"isComponent": {"is_component", kindBool},
		"status":      {"status", kindExact},
		"createdAt":   {"created_at", kindValue},
	},
	search:      []string{"sku", "name", "category", "barcode", "status"},
	defaultSort: "name",
	defaultDir:  "asc",
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var m models.ProductModel
	if err := conn(ctx, r.db).First(&m, "sku = ?", sku).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads the products with the given IDs; missing IDs are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindAll finds the page of products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	q := productColumns.where(conn(ctx, r.db).Model(&models.ProductModel{}), filter)
	if err := productColumns.page(q, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := productColumns.where(conn(ctx, r.db).Model(&models.ProductModel{}), filter).Count(&n).Error
	return n, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translate(conn(ctx, r.db).Save(models.ProductModelFromDomain(product)).Error)
}

// Delete deletes a product together with its own bill of materials
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return atomic(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProductComponentModel{}, "parent_id = ?", id).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.ProductModel{}, "id = ?", id))
	})
}

// ExistsBySKU checks if a product with the given SKU exists
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.ProductModel{}).Where("sku = ?", sku).Count(&n).Error
	return n > 0, err
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormBOMRepository implements catalog.BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindComponents returns the BOM lines of parentID with their component products
func (r *GormBOMRepository) FindComponents(ctx context.Context, parentID uuid.UUID) ([]catalog.ProductComponent, error) {
	var rows []models.ProductComponentModel
	if err := conn(ctx, r.db).Preload("Component").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.ProductComponent, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindLine returns one BOM line
func (r *GormBOMRepository) FindLine(ctx context.Context, parentID, componentID uuid.UUID) (*catalog.ProductComponent, error) {
	var m models.ProductComponentModel
	if err := conn(ctx, r.db).Preload("Component").
		First(&m, "parent_id = ? AND component_id = ?", parentID, componentID).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Graph returns every parent -> component edge
func (r *GormBOMRepository) Graph(ctx context.Context) (catalog.BOMGraph, error) {
	var edges []struct {
		ParentID    uuid.UUID
		ComponentID uuid.UUID
	}
	if err := conn(ctx, r.db).Model(&models.ProductComponentModel{}).
		Select("parent_id, component_id").
		Scan(&edges).Error; err != nil {
		return nil, err
	}
	g := catalog.BOMGraph{}
	for _, e := range edges {
		g[e.ParentID] = append(g[e.ParentID], e.ComponentID)
	}
	return g, nil
}

// Save creates or updates a BOM line
func (r *GormBOMRepository) Save(ctx context.Context, line *catalog.ProductComponent) error {
	m := models.ProductComponentModelFromDomain(line)
	return translate(conn(ctx, r.db).Omit("Component").Save(m).Error)
}

// Delete removes one BOM line
func (r *GormBOMRepository) Delete(ctx context.Context, parentID, componentID uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.ProductComponentModel{}, "parent_id = ? AND component_id = ?", parentID, componentID))
}

// IsUsedAsComponent reports whether any BOM consumes productID
func (r *GormBOMRepository) IsUsedAsComponent(ctx context.Context, productID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.ProductComponentModel{}).Where("component_id = ?", productID).Count(&n).Error
	return n > 0, err
}
