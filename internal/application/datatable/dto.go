package datatable

import (
	"github.com/erp/factory/internal/domain/datatable"
)

// SettingsResponse is the effective settings of one table for the session user.
type SettingsResponse struct {
	Key      string                 `json:"key"`
	Settings datatable.Settings     `json:"settings"`
	Columns  []datatable.ColumnMeta `json:"columns"`
	// Restored is false when stored settings could not be read and defaults were used.
	Restored bool `json:"restored"`
}

// ToggleSortRequest is the body of a header click.
type ToggleSortRequest struct {
	Field string `json:"field" binding:"required,max=64"`
}

// MoveColumnRequest is the body of a header drag-and-drop.
type MoveColumnRequest struct {
	Column string `json:"column" binding:"required,max=64"`
	Index  *int   `json:"index" binding:"required,min=0"`
}
