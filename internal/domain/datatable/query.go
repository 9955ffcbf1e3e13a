package datatable

import (
	"strings"

	"github.com/erp/factory/internal/domain/shared"
)

// ShowAll is the page size that returns every row on a single page.
const ShowAll = -1

// DefaultPageSize is used when neither the request nor the settings name one.
const DefaultPageSize = 20

// MaxPageSize bounds explicit page sizes.
const MaxPageSize = 500

// SortDirection is the direction of the active sort
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid checks if the direction is asc or desc
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// Sort is the single active sort of a table.
type Sort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// IsZero reports whether no sort is set.
func (s Sort) IsZero() bool {
	return s.Field == ""
}

// ToggleSort returns the sort that results from clicking the header of field.
// Clicking the active column flips its direction; clicking another column
// switches to it in ascending order.
func ToggleSort(current Sort, field string) Sort {
	if current.Field == field {
		if current.Direction == SortAsc {
			return Sort{Field: field, Direction: SortDesc}
		}
		return Sort{Field: field, Direction: SortAsc}
	}
	return Sort{Field: field, Direction: SortAsc}
}

// Query is one request against a table.
type Query struct {
	Search   string
	Filters  map[string]string
	Sort     Sort
	Page     int
	PageSize int
}

// WithSettings fills the parts of q the caller left unset from persisted settings.
func (q Query) WithSettings(s Settings) Query {
	if q.PageSize == 0 {
		q.PageSize = s.PageSize
	}
	if q.Sort.IsZero() {
		q.Sort = s.Sort
	}
	return q
}

// Normalize clamps paging values and drops sorts and filters the definition
// does not allow.
func (q Query) Normalize(def Definition) Query {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize == 0:
		q.PageSize = def.Defaults.PageSize
	case q.PageSize < ShowAll:
		q.PageSize = def.Defaults.PageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}

	q.Search = strings.TrimSpace(q.Search)

	if !q.Sort.IsZero() {
		col, ok := def.Column(q.Sort.Field)
		if !ok || !col.Sortable {
			q.Sort = def.Defaults.Sort
		} else if !q.Sort.Direction.IsValid() {
			q.Sort.Direction = SortAsc
		}
	}

	if len(q.Filters) > 0 {
		filters := make(map[string]string, len(q.Filters))
		for key, value := range q.Filters {
			col, ok := def.Column(key)
			value = strings.TrimSpace(value)
			if !ok || !col.Filterable || value == "" {
				continue
			}
			filters[key] = value
		}
		q.Filters = filters
	}
	return q
}

// Offset returns the index of the first row of the query page.
func (q Query) Offset() int {
	if q.PageSize <= 0 || q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Result is one page of rows.
type Result[T any] struct {
	Rows       []T `json:"rows"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate cuts one page out of rows. A page size of ShowAll (or any value
// below one) returns every row as page one.
func Paginate[T any](rows []T, page, pageSize int) Result[T] {
	total := len(rows)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return Result[T]{Rows: rows, Total: total, Page: 1, PageSize: ShowAll, TotalPages: 1}
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return Result[T]{Rows: []T{}, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
	}
	end := min(start+pageSize, total)
	return Result[T]{
		Rows:       rows[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// NewResult wraps rows fetched by a server-side source.
func NewResult[T any](rows []T, total int64, page, pageSize int) Result[T] {
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if rows == nil {
		rows = []T{}
	}
	return Result[T]{
		Rows:       rows,
		Total:      int(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ToFilter converts a normalized query into a repository filter. Sort and
// filter keys stay column keys; repositories map them to storage columns.
func (q Query) ToFilter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.Sort.Field,
		OrderDir: string(q.Sort.Direction),
		Search:   q.Search,
		Filters:  make(map[string]interface{}, len(q.Filters)),
	}
	if q.PageSize == ShowAll {
		f.PageSize = 0
	}
	for k, v := range q.Filters {
		f.Filters[k] = v
	}
	return f
}

// MapResult converts the rows of a page, keeping its paging data.
func MapResult[T, R any](res Result[T], fn func(T) R) Result[R] {
	rows := make([]R, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = fn(row)
	}
	return Result[R]{
		Rows:       rows,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
}
