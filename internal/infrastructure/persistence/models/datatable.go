package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
)

// TableSettingsModel stores one user's settings document for one table.
type TableSettingsModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TableKey  string    `gorm:"type:varchar(100);primaryKey"`
	Settings  string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TableSettingsModel) TableName() string {
	return "table_settings"
}

// ToDomain converts the persistence model to the stored settings document.
func (m *TableSettingsModel) ToDomain() *datatable.StoredSettings {
	return &datatable.StoredSettings{UserID: m.UserID, TableKey: m.TableKey, Raw: []byte(m.Settings), UpdatedAt: m.UpdatedAt}
}

// TableSettingsModelFromDomain creates a persistence model from a stored settings document.
func TableSettingsModelFromDomain(s *datatable.StoredSettings) *TableSettingsModel {
	return &TableSettingsModel{UserID: s.UserID, TableKey: s.TableKey, Settings: string(s.Raw), UpdatedAt: s.UpdatedAt}
}
