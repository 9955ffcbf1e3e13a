package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/infrastructure/persistence/models"
)

// GormTableSettingsRepository implements datatable.SettingsRepository using GORM
type GormTableSettingsRepository struct {
	db *gorm.DB
}

// NewGormTableSettingsRepository creates a new GormTableSettingsRepository
func NewGormTableSettingsRepository(db *gorm.DB) *GormTableSettingsRepository {
	return &GormTableSettingsRepository{db: db}
}

// Find returns the stored settings of one user and table
func (r *GormTableSettingsRepository) Find(ctx context.Context, userID uuid.UUID, tableKey string) (*datatable.StoredSettings, error) {
	var m models.TableSettingsModel
	if err := conn(ctx, r.db).First(&m, "user_id = ? AND table_key = ?", userID, tableKey).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save upserts the settings document
func (r *GormTableSettingsRepository) Save(ctx context.Context, settings *datatable.StoredSettings) error {
	m := models.TableSettingsModelFromDomain(settings)
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "table_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(m).Error
}

// Delete removes the settings; deleting absent settings is not an error
func (r *GormTableSettingsRepository) Delete(ctx context.Context, userID uuid.UUID, tableKey string) error {
	return conn(ctx, r.db).Delete(&models.TableSettingsModel{}, "user_id = ? AND table_key = ?", userID, tableKey).Error
}
