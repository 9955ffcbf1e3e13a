package datatable

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoredSettings is the raw persisted settings document of one user and table.
// Raw is kept undecoded so that a corrupt document degrades to defaults
// instead of failing the request.
type StoredSettings struct {
	UserID    uuid.UUID
	TableKey  string
	Raw       []byte
	UpdatedAt time.Time
}

// SettingsRepository persists table settings per user.
type SettingsRepository interface {
	// Find returns shared.ErrNotFound when the user has no settings for the table.
	Find(ctx context.Context, userID uuid.UUID, tableKey string) (*StoredSettings, error)
	Save(ctx context.Context, settings *StoredSettings) error
	Delete(ctx context.Context, userID uuid.UUID, tableKey string) error
}
