// Package metaschema bundles the draft-03 and draft-04 JSON Schema and
// Hyper-Schema metaschemas used to seed every resolver's universe cache.
//
// The documents are decoded once per process. Callers receive shared trees
// and must treat them as read-only.
package metaschema

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/reoring/skemaref/internal/jsondoc"
)

// Well-known metaschema URIs.
const (
	Draft03Schema      = "http://json-schema.org/draft-03/schema#"
	Draft03HyperSchema = "http://json-schema.org/draft-03/hyper-schema#"
	Draft04Schema      = "http://json-schema.org/draft-04/schema#"
	Draft04HyperSchema = "http://json-schema.org/draft-04/hyper-schema#"
	LatestSchema       = "http://json-schema.org/schema#"
	LatestHyperSchema  = "http://json-schema.org/hyper-schema#"

	// Default governs documents that do not declare $schema.
	Default = Draft04Schema
)

//go:embed data/*.json
var files embed.FS

// Seed is one bundled metaschema and the URI it is registered under.
type Seed struct {
	URI      string
	Document map[string]any
}

var seedFiles = []struct {
	uri  string
	file string
}{
	{Draft03Schema, "data/draft-03-schema.json"},
	{Draft03HyperSchema, "data/draft-03-hyper-schema.json"},
	{Draft04Schema, "data/draft-04-schema.json"},
	{Draft04HyperSchema, "data/draft-04-hyper-schema.json"},
	{LatestSchema, "data/draft-04-schema.json"},
	{LatestHyperSchema, "data/draft-04-hyper-schema.json"},
}

var loadSeeds = sync.OnceValues(func() ([]Seed, error) {
	parsed := make(map[string]map[string]any, 4)
	out := make([]Seed, 0, len(seedFiles))
	for _, sf := range seedFiles {
		doc, ok := parsed[sf.file]
		if !ok {
			b, err := files.ReadFile(sf.file)
			if err != nil {
				return nil, err
			}
			v, err := jsondoc.DecodeBytes(b, jsondoc.Limits{})
			if err != nil {
				return nil, fmt.Errorf("metaschema: %s: %w", sf.file, err)
			}
			if doc, ok = v.(map[string]any); !ok {
				return nil, fmt.Errorf("metaschema: %s: not an object", sf.file)
			}
			parsed[sf.file] = doc
		}
		out = append(out, Seed{URI: sf.uri, Document: doc})
	}
	return out, nil
})

// Seeds returns the six bundled metaschemas. The draft-04 documents appear
// twice: under their versioned URI and under the unversioned alias.
func Seeds() []Seed {
	s, err := loadSeeds()
	if err != nil {
		// embedded data is fixed at build time
		panic(err)
	}
	return s
}

// Reserved returns the structural keywords a metaschema declares: the names
// of its top-level "properties". A non-object metaschema reserves nothing.
func Reserved(meta any) map[string]struct{} {
	m, _ := meta.(map[string]any)
	props, _ := m["properties"].(map[string]any)
	out := make(map[string]struct{}, len(props))
	for k := range props {
		out[k] = struct{}{}
	}
	return out
}

// Keywords is Reserved as a sorted slice.
func Keywords(meta any) []string {
	r := Reserved(meta)
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
