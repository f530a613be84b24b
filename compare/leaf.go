package compare

import (
	"sort"
	"strings"
)

// Func orders two values: negative when a sorts first, positive when b
// does, zero when they tie or are unordered.
type Func func(a, b any) int

// LeafCompare returns a comparator for single values. A negative direction
// reverses the result and, for arrays, selects each array's maximum element
// as its representative instead of its minimum.
func LeafCompare(direction int) Func {
	dir := normalizeDirection(direction)
	return func(a, b any) int {
		return dir * leafCompare(a, b, dir)
	}
}

func normalizeDirection(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}

// leafCompare is the ascending ordering; dir only picks array
// representatives.
func leafCompare(a, b any, dir int) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindUnknown || kb == KindUnknown {
		return 0
	}
	if ka != kb {
		return cmpInt(typePriority[ka.String()], typePriority[kb.String()])
	}
	switch ka {
	case KindNumber:
		return compareNumbers(a, b)
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindObject:
		return compareObjects(a.(map[string]any), b.(map[string]any), dir)
	case KindArray:
		return compareArrays(a.([]any), b.([]any), dir)
	}
	return 0
}

// compareObjects walks b's keys in sorted order. The first key missing from
// a, or whose values differ, decides; otherwise the smaller object sorts
// first.
func compareObjects(a, b map[string]any, dir int) int {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		av, ok := a[k]
		if !ok {
			return -1
		}
		if r := leafCompare(av, b[k], dir); r != 0 {
			return r
		}
	}
	return cmpInt(len(a), len(b))
}

// compareArrays orders arrays by a representative element: the minimum for
// ascending sorts, the maximum for descending ones. Empty arrays are lowest.
func compareArrays(a, b []any, dir int) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return 1
	}
	return leafCompare(representative(a, dir), representative(b, dir), dir)
}

func representative(arr []any, dir int) any {
	best := arr[0]
	for _, v := range arr[1:] {
		if r := leafCompare(v, best, dir); (dir < 0 && r > 0) || (dir > 0 && r < 0) {
			best = v
		}
	}
	return best
}
