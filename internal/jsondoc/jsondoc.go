package jsondoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// Limits bounds the size and shape of a decoded document. Zero fields disable
// the corresponding check.
type Limits struct {
	MaxBytes int64
	MaxDepth int
}

var (
	ErrTooLarge     = errors.New("jsondoc: document exceeds max bytes")
	ErrTooDeep      = errors.New("jsondoc: max depth exceeded")
	ErrDuplicateKey = errors.New("jsondoc: duplicate key")
	ErrTrailingData = errors.New("jsondoc: trailing data after document")
)

// PathError reports where in the document a structural limit was hit.
type PathError struct {
	Path string // JSON Pointer
	Err  error
}

func (e *PathError) Error() string { return fmt.Sprintf("%v at %s", e.Err, e.Path) }
func (e *PathError) Unwrap() error { return e.Err }

// Decode reads one JSON document from r into a JSON-like tree of
// map[string]any, []any, string, bool, nil and json.Number values.
func Decode(r io.Reader, lim Limits) (any, error) {
	if lim.MaxBytes > 0 {
		r = io.LimitReader(r, lim.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(b, lim)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(b []byte, lim Limits) (any, error) {
	if lim.MaxBytes > 0 && int64(len(b)) > lim.MaxBytes {
		return nil, ErrTooLarge
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	d := &decoder{dec: dec, lim: lim}
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, ErrTrailingData
		}
		return nil, err
	}
	return v, nil
}

type decoder struct {
	dec *j.Decoder
	lim Limits
}

func (d *decoder) value(tok j.Token, path string, depth int) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.object(path, depth+1)
		case '[':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.array(path, depth+1)
		}
		return nil, io.ErrUnexpectedEOF
	case string:
		return strings.Clone(v), nil
	case j.Number:
		return j.Number(strings.Clone(string(v))), nil
	case bool, nil:
		return v, nil
	case float64:
		return j.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return nil, fmt.Errorf("jsondoc: unexpected token %T", tok)
}

func (d *decoder) enter(path string, depth int) error {
	if d.lim.MaxDepth > 0 && depth+1 > d.lim.MaxDepth {
		return &PathError{Path: normalizePath(path), Err: ErrTooDeep}
	}
	return nil
}

func (d *decoder) object(path string, depth int) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, eof(err)
		}
		if tok == j.Delim('}') {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, io.ErrUnexpectedEOF
		}
		key = strings.Clone(key)
		kpath := JoinPointer(path, key)
		if _, dup := m[key]; dup {
			return nil, &PathError{Path: kpath, Err: ErrDuplicateKey}
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, eof(err)
		}
		v, err := d.value(vt, kpath, depth)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *decoder) array(path string, depth int) (any, error) {
	arr := []any{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, eof(err)
		}
		if tok == j.Delim(']') {
			return arr, nil
		}
		v, err := d.value(tok, JoinPointer(path, strconv.Itoa(len(arr))), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes '~' and '/' per RFC 6901.
func EscapePointerToken(s string) string { return pointerEscaper.Replace(s) }

// JoinPointer appends an escaped reference token to a JSON Pointer.
func JoinPointer(base, token string) string {
	return base + "/" + EscapePointerToken(token)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
