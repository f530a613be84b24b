package skemaref

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/reoring/skemaref/internal/jsondoc"
	"github.com/reoring/skemaref/metaschema"
)

const (
	storeNamespace = "namespace"
	storeUniverse  = "universe"
)

// Resolver is a resolution context: a namespace of submitted schema
// documents, a universe cache of retrieved ones seeded with the standard
// metaschemas, and a coalescer for in-flight fetches.
//
// A Resolver is safe for concurrent use. Nodes returned by Resolve and
// Compile share structure with the caches and must not be mutated.
type Resolver struct {
	opts      Options
	log       *zap.Logger
	namespace *store
	universe  *store
	flights   coalescer
	metrics   *metrics
}

// New returns a Resolver whose universe cache holds the bundled
// metaschemas.
func New(opts Options) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{
		opts:      opts,
		log:       opts.Logger.Named("skemaref"),
		namespace: newStore(),
		universe:  seededStore(seedUniverse()),
		metrics:   newMetrics(opts.Registerer),
	}
}

// Documents lists the canonical URL (host+path) of every registered
// document, submitted or retrieved. Local documents submitted without an
// id appear as the empty string.
func (r *Resolver) Documents() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range append(r.namespace.keys(), r.universe.keys()...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) limits() jsondoc.Limits {
	return jsondoc.Limits{MaxBytes: r.opts.MaxDocumentBytes, MaxDepth: r.opts.MaxDocumentDepth}
}

// seedUniverse registers each bundled metaschema under its URI, using the
// keywords of the metaschema it declares. Built once per process; the
// fragment maps are shared read-only by every Resolver.
var seedUniverse = sync.OnceValue(func() map[docKey]fragments {
	seeds := metaschema.Seeds()
	docs := make(map[docKey]map[string]any, len(seeds))
	roots := make([]reference, len(seeds))
	for i, s := range seeds {
		ref, err := parseReference(s.URI, nil)
		if err != nil {
			panic(err)
		}
		roots[i] = ref
		docs[ref.key()] = s.Document
	}
	out := make(map[docKey]fragments, len(seeds))
	for i, s := range seeds {
		reserved := metaschema.Reserved(s.Document)
		if uri, ok := s.Document["$schema"].(string); ok {
			if meta, err := parseReference(uri, nil); err == nil && docs[meta.key()] != nil {
				reserved = metaschema.Reserved(docs[meta.key()])
			}
		}
		for k, f := range collect(s.Document, roots[i], reserved) {
			out[k] = f
		}
	}
	return out
})
