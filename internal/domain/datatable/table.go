package datatable

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Option configures a Table
type Option func(*tableConfig)

type tableConfig struct {
	sort     Sort
	pageSize int
	hidden   []string
	widths   map[string]int
	lang     language.Tag
}

// WithDefaultSort sets the sort applied when neither request nor settings name one.
func WithDefaultSort(field string, dir SortDirection) Option {
	return func(c *tableConfig) {
		c.sort = Sort{Field: field, Direction: dir}
	}
}

// WithPageSize sets the default page size.
func WithPageSize(size int) Option {
	return func(c *tableConfig) {
		c.pageSize = size
	}
}

// WithHiddenColumns hides columns by default.
func WithHiddenColumns(keys ...string) Option {
	return func(c *tableConfig) {
		c.hidden = append(c.hidden, keys...)
	}
}

// WithColumnWidth sets a default column width in pixels.
func WithColumnWidth(key string, width int) Option {
	return func(c *tableConfig) {
		if c.widths == nil {
			c.widths = make(map[string]int)
		}
		c.widths[key] = width
	}
}

// WithLanguage sets the collation language used for text sorting.
func WithLanguage(tag language.Tag) Option {
	return func(c *tableConfig) {
		c.lang = tag
	}
}

// Table is a typed table definition.
type Table[T any] struct {
	def     Definition
	columns []Column[T]
	index   map[string]int
	lang    language.Tag
}

// NewTable builds a table from its column descriptors. Columns without a
// Value accessor or with duplicate keys cause a panic; tables are declared
// at startup.
func NewTable[T any](key string, columns []Column[T], opts ...Option) *Table[T] {
	cfg := tableConfig{pageSize: DefaultPageSize, lang: language.Und}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table[T]{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		lang:    cfg.lang,
	}
	metas := make([]ColumnMeta, 0, len(columns))
	order := make([]string, 0, len(columns))
	for i, col := range columns {
		if col.Value == nil {
			panic("datatable: column " + col.Key + " has no accessor")
		}
		if _, dup := t.index[col.Key]; dup {
			panic("datatable: duplicate column " + col.Key)
		}
		t.index[col.Key] = i
		metas = append(metas, col.Meta())
		order = append(order, col.Key)
	}

	defaults := Settings{
		ColumnOrder:   order,
		HiddenColumns: append([]string{}, cfg.hidden...),
		ColumnWidths:  cfg.widths,
		PageSize:      cfg.pageSize,
		Sort:          cfg.sort,
		ViewMode:      ViewTable,
	}
	if defaults.Sort.Field != "" && !defaults.Sort.Direction.IsValid() {
		defaults.Sort.Direction = SortAsc
	}
	t.def = Definition{Key: key, Columns: metas, Defaults: defaults}
	return t
}

// Key returns the table key
func (t *Table[T]) Key() string {
	return t.def.Key
}

// Definition returns the accessor-free description of the table.
func (t *Table[T]) Definition() Definition {
	return t.def
}

// Columns returns the column descriptors in declaration order.
func (t *Table[T]) Columns() []Column[T] {
	return t.columns
}

// Column returns the column with the given key.
func (t *Table[T]) Column(key string) (Column[T], bool) {
	i, ok := t.index[key]
	if !ok {
		return Column[T]{}, false
	}
	return t.columns[i], true
}

// Ordered returns the visible columns in the order given by settings.
func (t *Table[T]) Ordered(s Settings) []Column[T] {
	visible := s.VisibleColumns()
	cols := make([]Column[T], 0, len(visible))
	for _, key := range visible {
		if col, ok := t.Column(key); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// Apply runs a query over rows in process: search, column filters, sort,
// then pagination. The input slice is not modified.
func (t *Table[T]) Apply(rows []T, q Query) Result[T] {
	q = q.Normalize(t.def)
	matched := t.Filter(rows, q)
	t.SortRows(matched, q.Sort)
	return Paginate(matched, q.Page, q.PageSize)
}

// Filter returns the rows matching the query search term and column filters.
func (t *Table[T]) Filter(rows []T, q Query) []T {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(q.Search))

	type colFilter struct {
		col   Column[T]
		value string
	}
	filters := make([]colFilter, 0, len(q.Filters))
	for key, value := range q.Filters {
		col, ok := t.Column(key)
		if !ok || value == "" {
			continue
		}
		filters = append(filters, colFilter{col: col, value: fold.String(value)})
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if term != "" && !t.matchesSearch(row, term, fold) {
			continue
		}
		keep := true
		for _, f := range filters {
			text := fold.String(f.col.Text(row))
			if f.col.Type.exactMatch() {
				keep = text == f.value
			} else {
				keep = strings.Contains(text, f.value)
			}
			if !keep {
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) matchesSearch(row T, term string, fold cases.Caser) bool {
	for _, col := range t.columns {
		if strings.Contains(fold.String(col.Text(row)), term) {
			return true
		}
	}
	return false
}

// SortRows sorts rows in place by the given sort. The sort is stable; rows
// with equal keys keep their relative order and nil values go last.
func (t *Table[T]) SortRows(rows []T, s Sort) {
	col, ok := t.Column(s.Field)
	if s.IsZero() || !ok || !col.Sortable {
		return
	}
	coll := collate.New(t.lang, collate.IgnoreCase, collate.Numeric)
	desc := s.Direction == SortDesc
	slices.SortStableFunc(rows, func(a, b T) int {
		c, ordered := compareValues(col.Value(a), col.Value(b), coll)
		if desc && ordered {
			return -c
		}
		return c
	})
}
