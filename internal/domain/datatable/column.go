package datatable

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType hints how a column compares, filters and renders its values.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnCurrency ColumnType = "currency"
	ColumnDate     ColumnType = "date"
	ColumnStatus   ColumnType = "status"
	ColumnBoolean  ColumnType = "boolean"
)

// IsValid checks if the column type is known
func (t ColumnType) IsValid() bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnCurrency, ColumnDate, ColumnStatus, ColumnBoolean:
		return true
	}
	return false
}

// exactMatch reports whether filters on this column compare whole values.
func (t ColumnType) exactMatch() bool {
	return t == ColumnStatus || t == ColumnBoolean
}

// Column describes one column of a Table over rows of type T.
// Value returns nil when the row has no value for the column.
type Column[T any] struct {
	Key        string
	Label      string
	Type       ColumnType
	Sortable   bool
	Filterable bool
	Value      func(T) any
	// Format overrides the default string rendering used by search and export.
	Format func(T) string
}

// Text renders the column value of row as a string.
func (c Column[T]) Text(row T) string {
	if c.Format != nil {
		return c.Format(row)
	}
	return Stringify(c.Value(row))
}

// Meta returns the accessor-free description of the column.
func (c Column[T]) Meta() ColumnMeta {
	t := c.Type
	if t == "" {
		t = ColumnText
	}
	return ColumnMeta{
		Key:        c.Key,
		Label:      c.Label,
		Type:       t,
		Sortable:   c.Sortable,
		Filterable: c.Filterable,
	}
}

// ColumnMeta is the serializable part of a column descriptor.
type ColumnMeta struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Type       ColumnType `json:"type"`
	Sortable   bool       `json:"sortable"`
	Filterable bool       `json:"filterable"`
}

// Stringify renders a column value the way search and export see it.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Deref returns *p, or nil for a nil pointer, so optional fields sort last
// and render empty.
func Deref[V any](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}
