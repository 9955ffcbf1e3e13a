package workforce

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/workforce"
)

// PositionService handles job positions
type PositionService struct {
	repo workforce.PositionRepository
}

// NewPositionService creates a new PositionService
func NewPositionService(repo workforce.PositionRepository) *PositionService {
	return &PositionService{repo: repo}
}

// List returns all positions
func (s *PositionService) List(ctx context.Context) ([]RefResponse, error) {
	positions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RefResponse, len(positions))
	for i, p := range positions {
		out[i] = positionResponse(&p)
	}
	return out, nil
}

// GetByID retrieves a position
func (s *PositionService) GetByID(ctx context.Context, id uuid.UUID) (*RefResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := positionResponse(p)
	return &resp, nil
}

// Create creates a position
func (s *PositionService) Create(ctx context.Context, req RefRequest) (*RefResponse, error) {
	p, err := workforce.NewPosition(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := positionResponse(p)
	return &resp, nil
}

// Update renames a position
func (s *PositionService) Update(ctx context.Context, id uuid.UUID, req RefRequest) (*RefResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := positionResponse(p)
	return &resp, nil
}

// Delete removes a position
func (s *PositionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func positionResponse(p *workforce.Position) RefResponse {
	return RefResponse{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// DepartmentService handles departments
type DepartmentService struct {
	repo workforce.DepartmentRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(repo workforce.DepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// List returns all departments
func (s *DepartmentService) List(ctx context.Context) ([]RefResponse, error) {
	departments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RefResponse, len(departments))
	for i, d := range departments {
		out[i] = departmentResponse(&d)
	}
	return out, nil
}

// GetByID retrieves a department
func (s *DepartmentService) GetByID(ctx context.Context, id uuid.UUID) (*RefResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := departmentResponse(d)
	return &resp, nil
}

// Create creates a department
func (s *DepartmentService) Create(ctx context.Context, req RefRequest) (*RefResponse, error) {
	d, err := workforce.NewDepartment(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := departmentResponse(d)
	return &resp, nil
}

// Update renames a department
func (s *DepartmentService) Update(ctx context.Context, id uuid.UUID, req RefRequest) (*RefResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := departmentResponse(d)
	return &resp, nil
}

// Delete removes a department
func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func departmentResponse(d *workforce.Department) RefResponse {
	return RefResponse{ID: d.ID, Name: d.Name, Description: d.Description, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}
