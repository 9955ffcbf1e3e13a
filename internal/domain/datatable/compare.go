package datatable

import (
	"cmp"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

// compareValues orders two column values. The second result is false when
// either value is nil; callers place nil values last regardless of direction.
func compareValues(a, b any, coll *collate.Collator) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, false
		case a == nil:
			return 1, false
		default:
			return -1, false
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return coll.CompareString(x, y), true
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y), true
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), true
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), true
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return coll.CompareString(Stringify(a), Stringify(b)), true
}
