// Package compare orders and equates JSON-like values.
//
// Values are the trees produced by JSON decoding: nil, bool, numbers (any Go
// numeric kind or a json.Number), string, map[string]any and []any.
//
// LeafCompare ranks two values by type first (null < number < string <
// object < array < boolean) and then by value. DocCompare evaluates a
// MongoDB-style sort specification over dotted field paths. DeepEqual is
// structural equality with key order ignored.
package compare
