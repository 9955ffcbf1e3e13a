package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/inventory"
	"github.com/erp/factory/internal/domain/shared"
)

// WarehouseService handles warehouse operations
type WarehouseService struct {
	repo inventory.WarehouseRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(repo inventory.WarehouseRepository) *WarehouseService {
	return &WarehouseService{repo: repo}
}

// List returns all warehouses
func (s *WarehouseService) List(ctx context.Context) ([]WarehouseResponse, error) {
	warehouses, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		out[i] = ToWarehouseResponse(&warehouses[i])
	}
	return out, nil
}

// GetByID retrieves a warehouse
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// Create creates a warehouse with a unique code
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	w, err := inventory.NewWarehouse(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByCode(ctx, w.Code); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	w.Address = req.Address
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// Update applies the supplied fields to a warehouse
func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := w.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		w.SetAddress(*req.Address)
	}
	if req.IsActive != nil {
		w.SetActive(*req.IsActive)
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// Delete removes a warehouse that holds no stock
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	hasStock, err := s.repo.HasStock(ctx, id)
	if err != nil {
		return err
	}
	if hasStock {
		return shared.NewDomainError("WAREHOUSE_IN_USE", "Warehouse still holds stock")
	}
	return s.repo.Delete(ctx, id)
}
