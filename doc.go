// Package skemaref resolves and compiles JSON Schema (draft-03/04) documents.
//
// A Resolver owns:
//
// - a namespace of documents registered with Submit, keyed by host, path and fragment
// - a universe cache of documents retrieved over the network, seeded with the bundled metaschemas
// - a coalescer that keeps at most one fetch in flight per document URL
//
// Resolve turns a reference into the schema node it names; Compile returns a
// schema with every non-recursive $ref replaced by its compiled target and
// recursive ones left as {"$ref": ...} markers.
//
// Design policy:
// - Keep only public APIs in the root package; put decoding helpers under internal/.
// - Ordering and equality over JSON-like values live in compare/; bundled metaschemas in metaschema/.
// - The CLI lives under cmd/skemaref.
//
// Typical usage:
//
//	r := skemaref.New(skemaref.Options{Logger: logger})
//	if err := r.Submit(ctx, "http://example.com/schema", doc); err != nil { ... }
//	node, err := r.Resolve(ctx, "http://example.com/schema#/definitions/foo")
//	compiled, err := r.Compile(ctx, "http://example.com/schema#")
package skemaref
