package persistence

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "ASC" for anything other than desc.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

type columnKind int

const (
	// substring match, case-insensitive sort
	kindText columnKind = iota
	// whole-value match such as statuses and sources
	kindExact
	kindBool
	// sortable only
	kindValue
)

type column struct {
	name string
	kind columnKind
}

// columnSet whitelists the table columns a list query may search, filter and sort on.
// Keys are the column keys of the DataTable definitions.
type columnSet struct {
	columns     map[string]column
	search      []string
	defaultSort string
	defaultDir  string
}

// ValidateSortField returns the SQL column for a sort key, or the default sort column.
func (s columnSet) ValidateSortField(key string) column {
	if c, ok := s.columns[strings.TrimSpace(key)]; ok {
		return c
	}
	return s.columns[s.defaultSort]
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// where applies search and column filters. Unknown filter keys are ignored.
func (s columnSet) where(q *gorm.DB, f shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" && len(s.search) > 0 {
		parts := make([]string, len(s.search))
		args := make([]any, len(s.search))
		for i, col := range s.search {
			parts[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = likePattern(term)
		}
		q = q.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	for key, raw := range f.Filters {
		c, ok := s.columns[key]
		if !ok {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(raw))
		if v == "" {
			continue
		}
		switch c.kind {
		case kindText:
			q = q.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, c.name), likePattern(v))
		case kindExact:
			q = q.Where(fmt.Sprintf("LOWER(%s) = ?", c.name), strings.ToLower(v))
		case kindBool:
			if b, err := strconv.ParseBool(v); err == nil {
				q = q.Where(fmt.Sprintf("%s = ?", c.name), b)
			}
		}
	}
	return q
}

// page applies ordering and pagination. NULLs sort last in both directions
// and id breaks ties so that pages never overlap.
func (s columnSet) page(q *gorm.DB, f shared.Filter) *gorm.DB {
	c := s.ValidateSortField(f.OrderBy)
	dir := ValidateSortOrder(f.OrderDir)
	if f.OrderBy == "" {
		dir = ValidateSortOrder(s.defaultDir)
	}
	expr := c.name
	if c.kind == kindText || c.kind == kindExact {
		expr = "LOWER(" + c.name + ")"
	}
	q = q.Order(fmt.Sprintf("%s IS NULL, %s %s, id ASC", c.name, expr, dir))
	if !f.Unpaged() {
		q = q.Offset(f.Offset()).Limit(f.PageSize)
	}
	return q
}
