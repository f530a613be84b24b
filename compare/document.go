package compare

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// SortKey is one entry of a sort specification: a dotted field path and a
// direction (1 ascending, -1 descending).
type SortKey struct {
	Path      string
	Direction int
}

// SortSpec is an ordered list of sort keys. Earlier keys take precedence.
type SortSpec []SortKey

type sortPath struct {
	segments []string
	dir      int
}

func compileSpec(spec SortSpec) ([]sortPath, error) {
	out := make([]sortPath, 0, len(spec))
	for _, k := range spec {
		switch {
		case k.Path == "":
			return nil, &ConfigurationError{Path: k.Path, Reason: "empty path"}
		case strings.Contains(k.Path, "$"):
			return nil, &ConfigurationError{Path: k.Path, Reason: "paths may not contain '$'"}
		case k.Direction == 0:
			return nil, &ConfigurationError{Path: k.Path, Reason: "direction must be 1 or -1"}
		}
		segs := strings.Split(k.Path, ".")
		if slices.Contains(segs, "") {
			return nil, &ConfigurationError{Path: k.Path, Reason: "empty path segment"}
		}
		out = append(out, sortPath{segments: segs, dir: normalizeDirection(k.Direction)})
	}
	return out, nil
}

// DocCompare returns a comparator that evaluates spec against two documents.
// For each key in order: a document lacking the field sorts first
// (ascending) or last (descending) against one that has it; when both lack
// it the key is skipped; otherwise the values are compared with LeafCompare
// and the first non-zero result wins.
func DocCompare(spec SortSpec) (Func, error) {
	paths, err := compileSpec(spec)
	if err != nil {
		return nil, err
	}
	return func(a, b any) int {
		for _, p := range paths {
			av, aok := lookup(a, p.segments)
			bv, bok := lookup(b, p.segments)
			switch {
			case !aok && !bok:
				continue
			case !aok:
				return -p.dir
			case !bok:
				return p.dir
			}
			if r := p.dir * leafCompare(av, bv, p.dir); r != 0 {
				return r
			}
		}
		return 0
	}, nil
}

// lookup walks a dotted path. Numeric segments index into arrays.
func lookup(doc any, segments []string) (any, bool) {
	cur := doc
	for _, seg := range segments {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SortDocuments stable-sorts docs in place according to spec.
func SortDocuments(docs []any, spec SortSpec) error {
	cmp, err := DocCompare(spec)
	if err != nil {
		return err
	}
	slices.SortStableFunc(docs, cmp)
	return nil
}

// ParseSortSpec reads a JSON object such as {"a.b": 1, "c": -1} into a
// SortSpec, keeping the object's key order.
func ParseSortSpec(data []byte) (SortSpec, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("compare: invalid sort spec: %w", err)
	}
	if tok != j.Delim('{') {
		return nil, fmt.Errorf("compare: sort spec must be a JSON object")
	}
	var spec SortSpec
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("compare: invalid sort spec: %w", err)
		}
		if tok == j.Delim('}') {
			break
		}
		path, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("compare: invalid sort spec key %v", tok)
		}
		path = strings.Clone(path)
		vt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("compare: invalid sort spec: %w", err)
		}
		if KindOf(vt) != KindNumber {
			return nil, &ConfigurationError{Path: path, Reason: fmt.Sprintf("direction must be a number, got %s", KindOf(vt))}
		}
		f, _ := toFloat(vt)
		if f != 1 && f != -1 {
			return nil, &ConfigurationError{Path: path, Reason: "direction must be 1 or -1, got " + formatNumber(vt)}
		}
		spec = append(spec, SortKey{Path: path, Direction: int(f)})
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("compare: trailing data after sort spec")
	}
	if _, err := compileSpec(spec); err != nil {
		return nil, err
	}
	return spec, nil
}
