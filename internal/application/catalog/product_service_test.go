package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

// MockBOMRepository is a mock implementation of BOMRepository
type MockBOMRepository struct {
	mock.Mock
}

func (m *MockBOMRepository) FindComponents(ctx context.Context, parentID uuid.UUID) ([]catalog.ProductComponent, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]catalog.ProductComponent), args.Error(1)
}

func (m *MockBOMRepository) FindLine(ctx context.Context, parentID, componentID uuid.UUID) (*catalog.ProductComponent, error) {
	args := m.Called(ctx, parentID, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductComponent), args.Error(1)
}

func (m *MockBOMRepository) Graph(ctx context.Context) (catalog.BOMGraph, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.BOMGraph), args.Error(1)
}

func (m *MockBOMRepository) Save(ctx context.Context, line *catalog.ProductComponent) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockBOMRepository) Delete(ctx context.Context, parentID, componentID uuid.UUID) error {
	args := m.Called(ctx, parentID, componentID)
	return args.Error(0)
}

func (m *MockBOMRepository) IsUsedAsComponent(ctx context.Context, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

// MockPhotoStorage is a mock implementation of PhotoStorage
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockPhotoStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockPhotoStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestProduct(t *testing.T, sku string, cost float64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, "pcs")
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(decimal.NewFromFloat(cost), decimal.NewFromFloat(cost*2)))
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, new(MockBOMRepository), nil)

		cost := decimal.NewFromInt(10)
		repo.On("ExistsBySKU", ctx, "CHAIR-01").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{SKU: "chair-01", Name: "Chair", CostPrice: &cost, Category: "Furniture"})
		require.NoError(t, err)
		assert.Equal(t, "CHAIR-01", resp.SKU)
		assert.Equal(t, "Furniture", resp.Category)
		assert.True(t, resp.CostPrice.Equal(cost))
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate SKU", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, new(MockBOMRepository), nil)
		repo.On("ExistsBySKU", ctx, "CHAIR-01").Return(true, nil)

		_, err := svc.Create(ctx, CreateProductRequest{SKU: "CHAIR-01", Name: "Chair"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, new(MockBOMRepository), nil)

	p := newTestProduct(t, "TBL", 5)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("Save", ctx, p).Return(nil)

	name := "Table"
	status := "inactive"
	resp, err := svc.Update(ctx, p.ID, UpdateProductRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Table", resp.Name)
	assert.Equal(t, "inactive", resp.Status)
	assert.True(t, resp.CostPrice.Equal(decimal.NewFromInt(5)), "untouched fields keep their value")
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, new(MockBOMRepository), nil)

	a := newTestProduct(t, "A", 1)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "chair" && f.OrderBy == "costPrice" && f.PageSize == 10 && f.Filters["status"] == "active"
	})).Return([]catalog.Product{*a}, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(11), nil)

	res, err := svc.List(ctx, datatable.Query{
		Search:   " chair ",
		Filters:  map[string]string{"status": "active", "unit": "pcs"},
		Sort:     datatable.Sort{Field: "costPrice", Direction: datatable.SortDesc},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "A", res.Rows[0].SKU)
}

func TestProductService_SetComponent(t *testing.T) {
	ctx := context.Background()

	t.Run("adds new line and marks component", func(t *testing.T) {
		repo := new(MockProductRepository)
		bom := new(MockBOMRepository)
		svc := NewProductService(repo, bom, nil)

		parent := newTestProduct(t, "CHAIR", 0)
		leg := newTestProduct(t, "LEG", 2.5)
		repo.On("FindByID", ctx, parent.ID).Return(parent, nil)
		repo.On("FindByID", ctx, leg.ID).Return(leg, nil)
		bom.On("FindLine", ctx, parent.ID, leg.ID).Return(nil, shared.ErrNotFound)
		bom.On("Graph", ctx).Return(catalog.BOMGraph{}, nil)
		bom.On("Save", ctx, mock.AnythingOfType("*catalog.ProductComponent")).Return(nil)
		repo.On("Save", ctx, leg).Return(nil)

		resp, err := svc.SetComponent(ctx, parent.ID, ComponentRequest{ComponentID: leg.ID, Quantity: decimal.NewFromInt(4)})
		require.NoError(t, err)
		assert.True(t, resp.LineCost.Equal(decimal.NewFromInt(10)))
		assert.True(t, leg.IsComponent)
	})

	t.Run("rejects cycle", func(t *testing.T) {
		repo := new(MockProductRepository)
		bom := new(MockBOMRepository)
		svc := NewProductService(repo, bom, nil)

		a := newTestProduct(t, "A", 0)
		b := newTestProduct(t, "B", 0)
		repo.On("FindByID", ctx, a.ID).Return(a, nil)
		repo.On("FindByID", ctx, b.ID).Return(b, nil)
		bom.On("FindLine", ctx, a.ID, b.ID).Return(nil, shared.ErrNotFound)
		bom.On("Graph", ctx).Return(catalog.BOMGraph{b.ID: {a.ID}}, nil)

		_, err := svc.SetComponent(ctx, a.ID, ComponentRequest{ComponentID: b.ID, Quantity: decimal.NewFromInt(1)})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "BOM_CYCLE", de.Code)
		bom.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("updates quantity of existing line", func(t *testing.T) {
		repo := new(MockProductRepository)
		bom := new(MockBOMRepository)
		svc := NewProductService(repo, bom, nil)

		parent := newTestProduct(t, "P", 0)
		part := newTestProduct(t, "C", 1)
		part.MarkComponent(true)
		line, err := catalog.NewProductComponent(parent.ID, part.ID, decimal.NewFromInt(1))
		require.NoError(t, err)

		repo.On("FindByID", ctx, parent.ID).Return(parent, nil)
		repo.On("FindByID", ctx, part.ID).Return(part, nil)
		bom.On("FindLine", ctx, parent.ID, part.ID).Return(line, nil)
		bom.On("Save", ctx, line).Return(nil)

		resp, err := svc.SetComponent(ctx, parent.ID, ComponentRequest{ComponentID: part.ID, Quantity: decimal.NewFromInt(3)})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(3)))
		bom.AssertNotCalled(t, "Graph", mock.Anything)
	})
}

func TestProductService_Cost(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bom := new(MockBOMRepository)
	svc := NewProductService(repo, bom, nil)

	parent := newTestProduct(t, "P", 0)
	seat := newTestProduct(t, "SEAT", 12)
	leg := newTestProduct(t, "LEG", 2.5)
	repo.On("FindByID", ctx, parent.ID).Return(parent, nil)
	bom.On("FindComponents", ctx, parent.ID).Return([]catalog.ProductComponent{
		{ParentID: parent.ID, ComponentID: seat.ID, Quantity: decimal.NewFromInt(1), Component: seat},
		{ParentID: parent.ID, ComponentID: leg.ID, Quantity: decimal.NewFromInt(4), Component: leg},
	}, nil)

	resp, err := svc.Cost(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, resp.MaterialCost.Equal(decimal.NewFromInt(22)), resp.MaterialCost.String())
	assert.Len(t, resp.Components, 2)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bom := new(MockBOMRepository)
	svc := NewProductService(repo, bom, nil)

	p := newTestProduct(t, "LEG", 1)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	bom.On("IsUsedAsComponent", ctx, p.ID).Return(true, nil)

	err := svc.Delete(ctx, p.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PRODUCT_IN_USE", de.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_Photo(t *testing.T) {
	ctx := context.Background()

	t.Run("storage not configured", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockBOMRepository), nil)
		_, err := svc.UploadPhoto(ctx, uuid.New(), "image/png", []byte{1})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("uploads and links", func(t *testing.T) {
		repo := new(MockProductRepository)
		store := new(MockPhotoStorage)
		svc := NewProductService(repo, new(MockBOMRepository), store)

		p := newTestProduct(t, "CHAIR", 1)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("Save", ctx, p).Return(nil)
		store.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return len(key) > 0 && key[len(key)-4:] == ".png"
		}), []byte{1, 2}, "image/png").Return(nil)

		resp, err := svc.UploadPhoto(ctx, p.ID, "image/png", []byte{1, 2})
		require.NoError(t, err)
		assert.Contains(t, resp.PhotoURL, p.ID.String())

		expires := time.Now().Add(PhotoURLExpiry)
		store.On("GenerateDownloadURL", ctx, p.PhotoURL, PhotoURLExpiry).Return("https://s3/photo", expires, nil)
		link, err := svc.PhotoURL(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3/photo", link.URL)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockBOMRepository), new(MockPhotoStorage))
		_, err := svc.UploadPhoto(ctx, uuid.New(), "application/pdf", []byte{1})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_FILE_TYPE", de.Code)
	})
}
