package memory

import (
	"reflect"
	"strings"
	"time"

	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// matchFilter evaluates one filter against a decoded JSON document. Missing or null fields never match.
func matchFilter(fields map[string]any, f portsrepo.Filter) bool {
	fv, present := fields[f.Field]
	if !present || fv == nil {
		return false
	}

	switch f.Op {
	case portsrepo.OpIn:
		rv := reflect.ValueOf(f.Value)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if c, ok := compareField(fv, rv.Index(i).Interface()); ok && c == 0 {
				return true
			}
		}
		return false
	case portsrepo.OpArrayContains:
		arr, ok := fv.([]any)
		if !ok {
			return false
		}
		for _, el := range arr {
			if c, ok := compareField(el, f.Value); ok && c == 0 {
				return true
			}
		}
		return false
	}

	c, ok := compareField(fv, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case portsrepo.OpEqual:
		return c == 0
	case portsrepo.OpNotEqual:
		return c != 0
	case portsrepo.OpLess:
		return c < 0
	case portsrepo.OpLessEqual:
		return c <= 0
	case portsrepo.OpGreater:
		return c > 0
	case portsrepo.OpGreaterEqual:
		return c >= 0
	}
	return false
}

// compareField compares a decoded JSON value with a Go filter value, interpreting the JSON value
// with the filter value's type. ok is false when the two cannot be compared.
func compareField(fieldVal, filterVal any) (int, bool) {
	switch v := filterVal.(type) {
	case time.Time:
		s, ok := fieldVal.(string)
		if !ok {
			return 0, false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, false
		}
		return t.Compare(v), true
	case decimal.Decimal:
		var d decimal.Decimal
		switch fv := fieldVal.(type) {
		case string:
			parsed, err := decimal.NewFromString(fv)
			if err != nil {
				return 0, false
			}
			d = parsed
		case float64:
			d = decimal.NewFromFloat(fv)
		default:
			return 0, false
		}
		return d.Cmp(v), true
	}

	rv := reflect.ValueOf(filterVal)
	switch rv.Kind() {
	case reflect.String:
		s, ok := fieldVal.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(s, rv.String()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := fieldVal.(float64)
		if !ok {
			return 0, false
		}
		return compareFloat(f, float64(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := fieldVal.(float64)
		if !ok {
			return 0, false
		}
		return compareFloat(f, float64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		f, ok := fieldVal.(float64)
		if !ok {
			return 0, false
		}
		return compareFloat(f, rv.Float()), true
	case reflect.Bool:
		b, ok := fieldVal.(bool)
		if !ok {
			return 0, false
		}
		return compareBool(b, rv.Bool()), true
	}
	return 0, false
}

// compareValues orders two decoded JSON values: null < bool < number < string.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		return compareBool(av, b.(bool))
	case float64:
		return compareFloat(av, b.(float64))
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 4
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
