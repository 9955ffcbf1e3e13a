package syncapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// External systems send numbers and dates in whatever shape their export
// produced. The types below accept both JSON literals and strings.

var null = []byte("null")

func unquote(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		return "", false, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	return string(data), true, nil
}

// ID is an external identifier sent either as a string or a number
type ID string

// UnmarshalJSON accepts "42" and 42
func (id *ID) UnmarshalJSON(data []byte) error {
	s, ok, err := unquote(data)
	if err != nil {
		return err
	}
	if !ok {
		*id = ""
		return nil
	}
	if data[0] != '"' {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("invalid identifier %s", s)
		}
	}
	*id = ID(s)
	return nil
}

// String returns the identifier
func (id ID) String() string {
	return string(id)
}

// Number is an optional decimal
type Number struct {
	Value decimal.Decimal
	Valid bool
}

// NewNumber wraps a decimal
func NewNumber(d decimal.Decimal) Number {
	return Number{Value: d, Valid: true}
}

// UnmarshalJSON accepts 12.5, "12.50", "12,50" and "1 200,00"
func (n *Number) UnmarshalJSON(data []byte) error {
	s, ok, err := unquote(data)
	if err != nil {
		return err
	}
	if !ok {
		*n = Number{}
		return nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return err
	}
	*n = Number{Value: d, Valid: true}
	return nil
}

// MarshalJSON writes the number as a string, or null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return null, nil
	}
	return json.Marshal(n.Value.String())
}

// Or returns the value, or def when absent
func (n Number) Or(def decimal.Decimal) decimal.Decimal {
	if n.Valid {
		return n.Value
	}
	return def
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// Int is an optional integer
type Int struct {
	Value int
	Valid bool
}

// NewInt wraps an int
func NewInt(v int) Int {
	return Int{Value: v, Valid: true}
}

// UnmarshalJSON accepts 3 and "3"
func (n *Int) UnmarshalJSON(data []byte) error {
	s, ok, err := unquote(data)
	if err != nil {
		return err
	}
	if !ok {
		*n = Int{}
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*n = Int{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes the integer, or null
func (n Int) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return null, nil
	}
	return json.Marshal(n.Value)
}

// dateLayouts lists the accepted date formats, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
}

// Date is an optional date or timestamp
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate wraps a time
func NewDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// ParseDate parses any of the accepted layouts. Values without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// UnmarshalJSON accepts ISO dates, ISO timestamps and dd.mm.yyyy
func (d *Date) UnmarshalJSON(data []byte) error {
	s, ok, err := unquote(data)
	if err != nil {
		return err
	}
	if !ok {
		*d = Date{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	// 1C exports empty dates as 0001-01-01
	if t.IsZero() {
		*d = Date{}
		return nil
	}
	*d = Date{Time: t, Valid: true}
	return nil
}

// MarshalJSON writes the date in RFC 3339, or null
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return null, nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// Ptr returns the time or nil when absent
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
