package inventory

import (
	"strings"

	"github.com/erp/factory/internal/domain/shared"
)

// Warehouse is a stock location
type Warehouse struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Address  string
	IsActive bool
}

// NewWarehouse creates a new warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	w := &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IsActive:          true,
	}
	if err := w.setCode(code); err != nil {
		return nil, err
	}
	if err := validateWarehouseName(name); err != nil {
		return nil, err
	}
	w.Name = strings.TrimSpace(name)
	return w, nil
}

func (w *Warehouse) setCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Warehouse code must be 1-50 characters")
	}
	w.Code = code
	return nil
}

// Rename sets the warehouse name
func (w *Warehouse) Rename(name string) error {
	if err := validateWarehouseName(name); err != nil {
		return err
	}
	w.Name = strings.TrimSpace(name)
	w.Touch()
	return nil
}

func validateWarehouseName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name must be 1-200 characters")
	}
	return nil
}

// SetAddress sets the warehouse address
func (w *Warehouse) SetAddress(address string) {
	w.Address = address
	w.Touch()
}

// SetActive enables or disables the warehouse
func (w *Warehouse) SetActive(active bool) {
	w.IsActive = active
	w.Touch()
}
