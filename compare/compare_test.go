package compare_test

import (
	"errors"
	"testing"

	j "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skemaref/compare"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestLeafCompare_TypePrecedence(t *testing.T) {
	ordered := []any{nil, 5, "a", map[string]any{}, []any{1}, true}
	asc := compare.LeafCompare(1)
	desc := compare.LeafCompare(-1)
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i], ordered[i+1]
		if got := asc(a, b); got >= 0 {
			t.Errorf("asc(%v, %v) = %d, want negative", a, b, got)
		}
		if got := desc(a, b); got <= 0 {
			t.Errorf("desc(%v, %v) = %d, want positive", a, b, got)
		}
	}
}

func TestLeafCompare_NumberBelowString(t *testing.T) {
	if got := compare.LeafCompare(1)(5, "a"); got >= 0 {
		t.Fatalf("want negative, got %d", got)
	}
	if got := compare.LeafCompare(-1)(5, "a"); got <= 0 {
		t.Fatalf("want positive, got %d", got)
	}
}

func TestLeafCompare_SameType(t *testing.T) {
	asc := compare.LeafCompare(1)
	cases := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", 1, 2, -1},
		{"int vs float", 2, 1.5, 1},
		{"json number vs int", j.Number("3"), 3, 0},
		{"json number fractional", j.Number("2.5"), j.Number("2.25"), 1},
		{"strings", "apple", "banana", -1},
		{"equal strings", "x", "x", 0},
		{"booleans unordered", true, false, 0},
		{"nulls", nil, nil, 0},
		{"object value decides", map[string]any{"a": 1}, map[string]any{"a": 2}, -1},
		{"object missing key of b", map[string]any{"b": 1}, map[string]any{"a": 1}, -1},
		{"object key count", map[string]any{"a": 1, "b": 2}, map[string]any{"a": 1}, 1},
		{"empty array lowest", []any{}, []any{0}, -1},
		{"both empty", []any{}, []any{}, 0},
		{"array min element", []any{5, 1}, []any{2, 3}, -1},
		{"nested array types", []any{"a"}, []any{1}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sign(asc(tc.a, tc.b)); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLeafCompare_DescendingUsesMaxElement(t *testing.T) {
	// min(a)=1 < min(b)=2 but max(a)=9 > max(b)=3
	a, b := []any{1, 9}, []any{2, 3}
	if got := compare.LeafCompare(1)(a, b); got >= 0 {
		t.Fatalf("ascending: want negative, got %d", got)
	}
	// descending compares 9 vs 3 and reverses: a sorts first
	if got := compare.LeafCompare(-1)(a, b); got >= 0 {
		t.Fatalf("descending: want negative, got %d", got)
	}
}

func TestDocCompare_DottedPath(t *testing.T) {
	a := map[string]any{"a": map[string]any{"b": 1}}
	b := map[string]any{"a": map[string]any{"b": 2}}

	asc, err := compare.DocCompare(compare.SortSpec{{Path: "a.b", Direction: 1}})
	if err != nil {
		t.Fatalf("DocCompare: %v", err)
	}
	if got := asc(a, b); got >= 0 {
		t.Fatalf("ascending: want negative, got %d", got)
	}
	desc, err := compare.DocCompare(compare.SortSpec{{Path: "a.b", Direction: -1}})
	if err != nil {
		t.Fatalf("DocCompare: %v", err)
	}
	if got := desc(a, b); got <= 0 {
		t.Fatalf("descending: want positive, got %d", got)
	}
}

func TestDocCompare_MissingFields(t *testing.T) {
	has := map[string]any{"a": 1, "b": 5}
	lacks := map[string]any{"b": 1}

	asc, _ := compare.DocCompare(compare.SortSpec{{Path: "a", Direction: 1}})
	if got := asc(lacks, has); got >= 0 {
		t.Fatalf("missing field should sort first ascending, got %d", got)
	}
	desc, _ := compare.DocCompare(compare.SortSpec{{Path: "a", Direction: -1}})
	if got := desc(lacks, has); got <= 0 {
		t.Fatalf("missing field should sort last descending, got %d", got)
	}

	// both lack "z": evaluation moves on to "b"
	next, _ := compare.DocCompare(compare.SortSpec{{Path: "z", Direction: 1}, {Path: "b", Direction: 1}})
	if got := next(has, lacks); got <= 0 {
		t.Fatalf("want positive from second key, got %d", got)
	}

	tie, _ := compare.DocCompare(compare.SortSpec{{Path: "z", Direction: 1}})
	if got := tie(has, lacks); got != 0 {
		t.Fatalf("want tie, got %d", got)
	}
}

func TestDocCompare_TraversesNonObjectAsMissing(t *testing.T) {
	c, _ := compare.DocCompare(compare.SortSpec{{Path: "a.b", Direction: 1}})
	if got := c(map[string]any{"a": "str"}, map[string]any{"a": map[string]any{"b": nil}}); got >= 0 {
		t.Fatalf("want negative, got %d", got)
	}
	idx, _ := compare.DocCompare(compare.SortSpec{{Path: "tags.0", Direction: 1}})
	if got := idx(map[string]any{"tags": []any{"b"}}, map[string]any{"tags": []any{"a"}}); got <= 0 {
		t.Fatalf("want positive, got %d", got)
	}
}

func TestDocCompare_RejectsInvalidPaths(t *testing.T) {
	for _, spec := range []compare.SortSpec{
		{{Path: "a.$b", Direction: 1}},
		{{Path: "$natural", Direction: -1}},
		{{Path: "", Direction: 1}},
		{{Path: "a..b", Direction: 1}},
		{{Path: "a", Direction: 0}},
	} {
		_, err := compare.DocCompare(spec)
		var ce *compare.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("spec %v: want ConfigurationError, got %v", spec, err)
		}
	}
}

func TestSortDocuments(t *testing.T) {
	docs := []any{
		map[string]any{"n": "c", "v": 1},
		map[string]any{"n": "a", "v": 2},
		map[string]any{"n": "b", "v": 1},
		map[string]any{"n": "d"},
	}
	if err := compare.SortDocuments(docs, compare.SortSpec{{Path: "v", Direction: -1}, {Path: "n", Direction: 1}}); err != nil {
		t.Fatalf("sort: %v", err)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.(map[string]any)["n"].(string))
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSortSpec_KeepsOrder(t *testing.T) {
	spec, err := compare.ParseSortSpec([]byte(`{"z": 1, "a.b": -1, "m": 1}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := compare.SortSpec{{Path: "z", Direction: 1}, {Path: "a.b", Direction: -1}, {Path: "m", Direction: 1}}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSortSpec_Errors(t *testing.T) {
	for _, in := range []string{`[]`, `{"a": "up"}`, `{"a": 2}`, `{"a.$b": 1}`, `{"a": 1} x`} {
		if _, err := compare.ParseSortSpec([]byte(in)); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
	var ce *compare.ConfigurationError
	if _, err := compare.ParseSortSpec([]byte(`{"a.$b": 1}`)); !errors.As(err, &ce) {
		t.Errorf("want ConfigurationError, got %v", err)
	}
}

func TestTypePriority(t *testing.T) {
	n, _ := compare.TypePriority("number")
	i, _ := compare.TypePriority("integer")
	s, _ := compare.TypePriority("string")
	if n != i || n >= s {
		t.Fatalf("number=%d integer=%d string=%d", n, i, s)
	}
	if _, ok := compare.TypePriority("date"); ok {
		t.Fatalf("unexpected priority for unknown type")
	}
}

func TestKindOf(t *testing.T) {
	for _, tc := range []struct {
		v    any
		want compare.Kind
	}{
		{nil, compare.KindNull},
		{int8(3), compare.KindNumber},
		{2.5, compare.KindNumber},
		{j.Number("1e3"), compare.KindNumber},
		{"x", compare.KindString},
		{map[string]any{}, compare.KindObject},
		{[]any{}, compare.KindArray},
		{false, compare.KindBoolean},
		{struct{}{}, compare.KindUnknown},
	} {
		if got := compare.KindOf(tc.v); got != tc.want {
			t.Errorf("KindOf(%#v) = %v, want %v", tc.v, got, tc.want)
		}
	}
	if got := compare.LeafCompare(1)(struct{}{}, "x"); got != 0 {
		t.Fatalf("unknown kind compared %d, want 0", got)
	}
}
