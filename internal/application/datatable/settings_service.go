package datatable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
)

// SettingsService manages per-user table settings.
type SettingsService struct {
	repo     datatable.SettingsRepository
	registry *datatable.Registry
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo datatable.SettingsRepository, registry *datatable.Registry, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

// Definitions lists every registered table.
func (s *SettingsService) Definitions() []datatable.Definition {
	return s.registry.All()
}

// Get returns the effective settings: stored values merged over defaults.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID, key string) (*SettingsResponse, error) {
	def, err := s.definition(key)
	if err != nil {
		return nil, err
	}
	settings, restored, err := s.load(ctx, userID, def)
	if err != nil {
		return nil, err
	}
	return &SettingsResponse{Key: key, Settings: settings, Columns: def.Columns, Restored: restored}, nil
}

// Save replaces the stored settings after merging them over defaults.
func (s *SettingsService) Save(ctx context.Context, userID uuid.UUID, key string, settings datatable.Settings) (*SettingsResponse, error) {
	def, err := s.definition(key)
	if err != nil {
		return nil, err
	}
	merged := def.Merge(settings)
	if err := s.store(ctx, userID, key, merged); err != nil {
		return nil, err
	}
	return &SettingsResponse{Key: key, Settings: merged, Columns: def.Columns, Restored: true}, nil
}

// Reset deletes the stored settings and returns the defaults.
func (s *SettingsService) Reset(ctx context.Context, userID uuid.UUID, key string) (*SettingsResponse, error) {
	def, err := s.definition(key)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, key); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return &SettingsResponse{Key: key, Settings: def.Merge(datatable.Settings{}), Columns: def.Columns, Restored: true}, nil
}

// ToggleSort applies a header click to the stored sort.
func (s *SettingsService) ToggleSort(ctx context.Context, userID uuid.UUID, key, field string) (*SettingsResponse, error) {
	return s.mutate(ctx, userID, key, func(def datatable.Definition, settings *datatable.Settings) error {
		col, ok := def.Column(field)
		if !ok || !col.Sortable {
			return shared.NewDomainError("INVALID_SORT_FIELD", fmt.Sprintf("column %q is not sortable", field))
		}
		settings.Sort = datatable.ToggleSort(settings.Sort, field)
		return nil
	})
}

// MoveColumn applies a header drag-and-drop.
func (s *SettingsService) MoveColumn(ctx context.Context, userID uuid.UUID, key, column string, index int) (*SettingsResponse, error) {
	return s.mutate(ctx, userID, key, func(_ datatable.Definition, settings *datatable.Settings) error {
		return settings.MoveColumn(column, index)
	})
}

// ToggleColumn shows or hides a column.
func (s *SettingsService) ToggleColumn(ctx context.Context, userID uuid.UUID, key, column string) (*SettingsResponse, error) {
	return s.mutate(ctx, userID, key, func(_ datatable.Definition, settings *datatable.Settings) error {
		return settings.ToggleColumn(column)
	})
}

// ResolveQuery fills page size and sort from the user's stored settings when
// the request leaves them unset. Lookup failures fall back to the defaults.
func (s *SettingsService) ResolveQuery(ctx context.Context, userID uuid.UUID, key string, q datatable.Query) datatable.Query {
	def, ok := s.registry.Lookup(key)
	if !ok {
		return q
	}
	settings, _, err := s.load(ctx, userID, def)
	if err != nil {
		s.logger.Warn("Falling back to default table settings",
			zap.String("table", key),
			zap.Error(err),
		)
		settings = def.Defaults
	}
	return q.WithSettings(settings)
}

func (s *SettingsService) mutate(
	ctx context.Context,
	userID uuid.UUID,
	key string,
	apply func(datatable.Definition, *datatable.Settings) error,
) (*SettingsResponse, error) {
	def, err := s.definition(key)
	if err != nil {
		return nil, err
	}
	settings, _, err := s.load(ctx, userID, def)
	if err != nil {
		return nil, err
	}
	if err := apply(def, &settings); err != nil {
		return nil, err
	}
	if err := s.store(ctx, userID, key, settings); err != nil {
		return nil, err
	}
	return &SettingsResponse{Key: key, Settings: settings, Columns: def.Columns, Restored: true}, nil
}

func (s *SettingsService) definition(key string) (datatable.Definition, error) {
	if err := datatable.ValidateKey(key); err != nil {
		return datatable.Definition{}, err
	}
	def, ok := s.registry.Lookup(key)
	if !ok {
		return datatable.Definition{}, shared.NotFoundError("table", key)
	}
	return def, nil
}

func (s *SettingsService) load(ctx context.Context, userID uuid.UUID, def datatable.Definition) (datatable.Settings, bool, error) {
	stored, err := s.repo.Find(ctx, userID, def.Key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return def.Merge(datatable.Settings{}), true, nil
		}
		return datatable.Settings{}, false, err
	}
	settings, ok := def.ParseSettings(stored.Raw)
	if !ok {
		s.logger.Warn("Stored table settings are unreadable, using defaults",
			zap.String("table", def.Key),
			zap.String("user_id", userID.String()),
		)
	}
	return settings, ok, nil
}

func (s *SettingsService) store(ctx context.Context, userID uuid.UUID, key string, settings datatable.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode table settings: %w", err)
	}
	return s.repo.Save(ctx, &datatable.StoredSettings{
		UserID:    userID,
		TableKey:  key,
		Raw:       raw,
		UpdatedAt: shared.Now(),
	})
}
