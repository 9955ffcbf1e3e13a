package workforce

import (
	"context"

	"github.com/google/uuid"
)

// WorkerRepository defines persistence for workers
type WorkerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Worker, error)
	FindAll(ctx context.Context) ([]Worker, error)
	ExistsByEmployeeNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, worker *Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PositionRepository defines persistence for positions
type PositionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Position, error)
	FindAll(ctx context.Context) ([]Position, error)
	Save(ctx context.Context, position *Position) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DepartmentRepository defines persistence for departments
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Department, error)
	FindAll(ctx context.Context) ([]Department, error)
	Save(ctx context.Context, department *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
}
