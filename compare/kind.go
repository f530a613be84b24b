package compare

import (
	"math"
	"strconv"
)

// Kind is the JSON type of a value.
type Kind int

// Kinds in cross-type sort order.
const (
	KindNull    Kind = iota // nil
	KindNumber              // Go numeric types and json.Number
	KindString              // string
	KindObject              // map[string]any
	KindArray               // []any
	KindBoolean             // bool
	KindUnknown             // anything else; compares equal to every value
)

var kindNames = [...]string{"null", "number", "string", "object", "array", "boolean", "unknown"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// typePriority is the fixed cross-type ordering. "integer" shares the
// number slot.
var typePriority = map[string]int{
	"null":    0,
	"number":  1,
	"integer": 1,
	"string":  2,
	"object":  3,
	"array":   4,
	"boolean": 5,
}

// TypePriority returns the rank of a JSON type name in the cross-type
// ordering.
func TypePriority(name string) (int, bool) {
	p, ok := typePriority[name]
	return p, ok
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	}
	if _, ok := toFloat(v); ok {
		return KindNumber
	}
	return KindUnknown
}

type float64er interface {
	Float64() (float64, error)
}

type int64er interface {
	Int64() (int64, error)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64er:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int64er:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// compareNumbers compares exactly when both sides are integers and falls back
// to float64 otherwise. NaN sorts below every other number.
func compareNumbers(a, b any) int {
	if ai, ok := toInt(a); ok {
		if bi, ok := toInt(b); ok {
			return cmpInt64(ai, bi)
		}
	}
	af, _ := toFloat(a)
	bf, _ := toFloat(b)
	switch an, bn := math.IsNaN(af), math.IsNaN(bf); {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int { return cmpInt64(int64(a), int64(b)) }

// formatNumber renders a number for error messages.
func formatNumber(v any) string {
	if i, ok := toInt(v); ok {
		return strconv.FormatInt(i, 10)
	}
	f, _ := toFloat(v)
	return strconv.FormatFloat(f, 'g', -1, 64)
}
