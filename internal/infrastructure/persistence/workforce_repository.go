package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/workforce"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormWorkerRepository implements workforce.WorkerRepository using GORM
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewGormWorkerRepository creates a new GormWorkerRepository
func NewGormWorkerRepository(db *gorm.DB) *GormWorkerRepository {
	return &GormWorkerRepository{db: db}
}

// FindByID finds a worker by ID
func (r *GormWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Worker, error) {
	var m models.WorkerModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns workers ordered by last and first name
func (r *GormWorkerRepository) FindAll(ctx context.Context) ([]workforce.Worker, error) {
	var rows []models.WorkerModel
	if err := conn(ctx, r.db).Order("last_name ASC, first_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]workforce.Worker, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByEmployeeNumber checks whether another worker holds the number
func (r *GormWorkerRepository) ExistsByEmployeeNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	q := conn(ctx, r.db).Model(&models.WorkerModel{}).Where("employee_number = ?", number)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

// Save creates or updates a worker
func (r *GormWorkerRepository) Save(ctx context.Context, worker *workforce.Worker) error {
	return translate(conn(ctx, r.db).Save(models.WorkerModelFromDomain(worker)).Error)
}

// Delete removes a worker
func (r *GormWorkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.WorkerModel{}, "id = ?", id))
}

// GormPositionRepository implements workforce.PositionRepository using GORM
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GormPositionRepository
func NewGormPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

func (r *GormPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Position, error) {
	var m models.PositionModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

func (r *GormPositionRepository) FindAll(ctx context.Context) ([]workforce.Position, error) {
	var rows []models.PositionModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]workforce.Position, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormPositionRepository) Save(ctx context.Context, position *workforce.Position) error {
	return translate(conn(ctx, r.db).Save(models.PositionModelFromDomain(position)).Error)
}

func (r *GormPositionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.PositionModel{}, "id = ?", id))
}

// GormDepartmentRepository implements workforce.DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Department, error) {
	var m models.DepartmentModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

func (r *GormDepartmentRepository) FindAll(ctx context.Context) ([]workforce.Department, error) {
	var rows []models.DepartmentModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]workforce.Department, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormDepartmentRepository) Save(ctx context.Context, department *workforce.Department) error {
	return translate(conn(ctx, r.db).Save(models.DepartmentModelFromDomain(department)).Error)
}

func (r *GormDepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(conn(ctx, r.db).Delete(&models.DepartmentModel{}, "id = ?", id))
}
