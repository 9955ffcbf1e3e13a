package datatable

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"

	"github.com/erp/factory/internal/domain/shared"
)

// ViewMode selects how rows are rendered
type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewCards ViewMode = "cards"
)

// IsValid checks if the view mode is known
func (m ViewMode) IsValid() bool {
	return m == ViewTable || m == ViewCards
}

// CellStyle is a per-column or table-wide text style.
type CellStyle struct {
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontSize        int    `json:"fontSize,omitempty"`
	FontWeight      string `json:"fontWeight,omitempty"`
	FontStyle       string `json:"fontStyle,omitempty"`
}

// IsZero reports whether no style attribute is set.
func (s CellStyle) IsZero() bool {
	return s == CellStyle{}
}

// Settings is the persisted configuration of one table for one user.
type Settings struct {
	ColumnOrder   []string             `json:"columnOrder"`
	HiddenColumns []string             `json:"hiddenColumns"`
	ColumnWidths  map[string]int       `json:"columnWidths,omitempty"`
	ColumnStyles  map[string]CellStyle `json:"columnStyles,omitempty"`
	GlobalStyle   CellStyle            `json:"globalStyle"`
	PageSize      int                  `json:"pageSize"`
	Sort          Sort                 `json:"sort"`
	ViewMode      ViewMode             `json:"viewMode"`
}

// VisibleColumns returns the column keys in display order without hidden ones.
func (s Settings) VisibleColumns() []string {
	out := make([]string, 0, len(s.ColumnOrder))
	for _, key := range s.ColumnOrder {
		if !slices.Contains(s.HiddenColumns, key) {
			out = append(out, key)
		}
	}
	return out
}

// MoveColumn moves the column to position index, shifting the others.
func (s *Settings) MoveColumn(key string, index int) error {
	from := slices.Index(s.ColumnOrder, key)
	if from < 0 {
		return shared.NewDomainError("UNKNOWN_COLUMN", fmt.Sprintf("column %q is not part of this table", key))
	}
	if index < 0 || index >= len(s.ColumnOrder) {
		return shared.NewDomainError("INVALID_COLUMN_POSITION", fmt.Sprintf("position %d is out of range", index))
	}
	order := slices.Delete(slices.Clone(s.ColumnOrder), from, from+1)
	s.ColumnOrder = slices.Insert(order, index, key)
	return nil
}

// ToggleColumn hides a visible column or shows a hidden one.
func (s *Settings) ToggleColumn(key string) error {
	if !slices.Contains(s.ColumnOrder, key) {
		return shared.NewDomainError("UNKNOWN_COLUMN", fmt.Sprintf("column %q is not part of this table", key))
	}
	if i := slices.Index(s.HiddenColumns, key); i >= 0 {
		s.HiddenColumns = slices.Delete(slices.Clone(s.HiddenColumns), i, i+1)
		return nil
	}
	if len(s.VisibleColumns()) == 1 {
		return shared.NewDomainError("LAST_VISIBLE_COLUMN", "at least one column must stay visible")
	}
	s.HiddenColumns = append(slices.Clone(s.HiddenColumns), key)
	return nil
}

// Definition is the accessor-free description of a table: its columns and
// default settings.
type Definition struct {
	Key      string       `json:"key"`
	Columns  []ColumnMeta `json:"columns"`
	Defaults Settings     `json:"defaults"`
}

// Column returns the column metadata for key.
func (d Definition) Column(key string) (ColumnMeta, bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnMeta{}, false
}

// Merge lays persisted settings over the defaults. Unknown columns are
// dropped, columns missing from the persisted order are appended in default
// order and invalid values fall back to their defaults.
func (d Definition) Merge(persisted Settings) Settings {
	def := d.Defaults
	out := Settings{
		GlobalStyle: def.GlobalStyle,
		PageSize:    def.PageSize,
		Sort:        def.Sort,
		ViewMode:    def.ViewMode,
	}

	known := func(key string) bool {
		_, ok := d.Column(key)
		return ok
	}

	seen := make(map[string]bool, len(def.ColumnOrder))
	for _, key := range persisted.ColumnOrder {
		if known(key) && !seen[key] {
			out.ColumnOrder = append(out.ColumnOrder, key)
			seen[key] = true
		}
	}
	for _, key := range def.ColumnOrder {
		if !seen[key] {
			out.ColumnOrder = append(out.ColumnOrder, key)
		}
	}

	hidden := def.HiddenColumns
	if persisted.HiddenColumns != nil {
		hidden = persisted.HiddenColumns
	}
	out.HiddenColumns = []string{}
	for _, key := range hidden {
		if known(key) && !slices.Contains(out.HiddenColumns, key) {
			out.HiddenColumns = append(out.HiddenColumns, key)
		}
	}
	if len(out.HiddenColumns) >= len(out.ColumnOrder) {
		out.HiddenColumns = slices.Clone(def.HiddenColumns)
	}

	out.ColumnWidths = make(map[string]int, len(def.ColumnWidths)+len(persisted.ColumnWidths))
	for key, w := range def.ColumnWidths {
		out.ColumnWidths[key] = w
	}
	for key, w := range persisted.ColumnWidths {
		if known(key) && w > 0 {
			out.ColumnWidths[key] = w
		}
	}

	out.ColumnStyles = make(map[string]CellStyle, len(def.ColumnStyles)+len(persisted.ColumnStyles))
	for key, st := range def.ColumnStyles {
		out.ColumnStyles[key] = st
	}
	for key, st := range persisted.ColumnStyles {
		if known(key) {
			out.ColumnStyles[key] = st
		}
	}

	if !persisted.GlobalStyle.IsZero() {
		out.GlobalStyle = persisted.GlobalStyle
	}
	if persisted.PageSize == ShowAll || (persisted.PageSize > 0 && persisted.PageSize <= MaxPageSize) {
		out.PageSize = persisted.PageSize
	}
	if col, ok := d.Column(persisted.Sort.Field); ok && col.Sortable && persisted.Sort.Direction.IsValid() {
		out.Sort = persisted.Sort
	}
	if persisted.ViewMode.IsValid() {
		out.ViewMode = persisted.ViewMode
	}
	return out
}

// ParseSettings decodes persisted settings and merges them over the defaults.
// When raw cannot be decoded the defaults are returned and ok is false.
func (d Definition) ParseSettings(raw []byte) (settings Settings, ok bool) {
	if len(raw) == 0 {
		return d.Merge(Settings{}), true
	}
	var persisted Settings
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return d.Merge(Settings{}), false
	}
	return d.Merge(persisted), true
}

var tableKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateKey checks a caller-supplied table key.
func ValidateKey(key string) error {
	if !tableKeyPattern.MatchString(key) {
		return shared.NewDomainError("INVALID_TABLE_KEY", "table key must be 1-64 lowercase letters, digits, '-' or '_'")
	}
	return nil
}

// StorageKey derives the key under which a user's settings for a table are stored.
func StorageKey(key string) string {
	return "datatable-settings:" + key
}
