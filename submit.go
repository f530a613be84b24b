package skemaref

import (
	"context"

	"go.uber.org/zap"

	"github.com/reoring/skemaref/internal/jsondoc"
	"github.com/reoring/skemaref/metaschema"
)

// Submit registers doc in the local namespace under id, or under the
// document's own "id" when id is empty, or as the anonymous local document
// when neither is set.
//
// Every node reachable through property names that are not keywords of the
// document's metaschema ($schema, default draft-04) is registered at its
// JSON Pointer fragment, so "#/definitions/foo" resolves after submission.
// A subtree whose "id" names another document is additionally registered,
// with its descendants, under that id. An "id" within the same document
// ("#foo") only adds that fragment as an alias and never replaces a fragment
// already registered, the root included. Resubmitting an id replaces the earlier
// document. doc is deep-copied; later changes by the caller are not seen.
func (r *Resolver) Submit(ctx context.Context, id string, doc any) error {
	return r.submit(ctx, id, jsondoc.Clone(doc), nil, r.namespace, storeNamespace)
}

func (r *Resolver) submit(ctx context.Context, id string, doc any, chain []string, dst *store, storeName string) error {
	if id == "" {
		if m, ok := doc.(map[string]any); ok {
			id, _ = m["id"].(string)
		}
	}
	root, err := parseReference(id, nil)
	if err != nil {
		return newResolutionError(CodeInvalidReference, reference{raw: id}, chain, err)
	}
	reserved, err := r.reservedFor(ctx, doc, root, chain)
	if err != nil {
		return err
	}
	batch := collect(doc, root, reserved)
	dst.commit(batch)

	r.metrics.submitted.WithLabelValues(storeName).Inc()
	if ce := r.log.Check(zap.DebugLevel, "submitted schema"); ce != nil {
		n := 0
		for _, f := range batch {
			n += len(f)
		}
		ce.Write(
			zap.String("id", root.canonical()),
			zap.String("store", storeName),
			zap.Int("documents", len(batch)),
			zap.Int("fragments", n),
		)
	}
	return nil
}

// reservedFor resolves the metaschema doc declares and returns its
// keywords. A document that names itself as its metaschema supplies its own.
func (r *Resolver) reservedFor(ctx context.Context, doc any, root reference, chain []string) (map[string]struct{}, error) {
	uri := metaschema.Default
	if m, ok := doc.(map[string]any); ok {
		if s, ok := m["$schema"].(string); ok && s != "" {
			uri = s
		}
	}
	meta, err := parseReference(uri, root.base)
	if err != nil {
		return nil, newResolutionError(CodeInvalidReference, reference{raw: uri}, chain, err)
	}
	if !root.isLocal() && meta.key() == root.key() {
		return metaschema.Reserved(doc), nil
	}
	node, err := r.resolveRef(ctx, meta, chain)
	if err != nil {
		return nil, err
	}
	return metaschema.Reserved(node), nil
}

// walker gathers the fragments of one submission.
type walker struct {
	reserved map[string]struct{}
	batch    map[docKey]fragments
}

func collect(doc any, root reference, reserved map[string]struct{}) map[docKey]fragments {
	w := &walker{reserved: reserved, batch: make(map[docKey]fragments)}
	w.visit(doc, root, true)
	return w.batch
}

func (w *walker) register(loc reference, node any) {
	f, ok := w.batch[loc.key()]
	if !ok {
		f = make(fragments)
		w.batch[loc.key()] = f
	}
	f[loc.fragment] = node
}

// alias registers node at loc unless something already sits there.
func (w *walker) alias(loc reference, node any) {
	if _, taken := w.batch[loc.key()][loc.fragment]; taken {
		return
	}
	w.register(loc, node)
}

// visit registers node at loc and walks its non-reserved children. The
// submission root's location is fixed by the caller. A nested id opens a new
// namespace only when it names a different document, the same rule compile
// uses for its base.
func (w *walker) visit(node any, loc reference, isRoot bool) {
	m, isObject := node.(map[string]any)
	if isObject && !isRoot {
		if id, ok := m["id"].(string); ok && id != "" {
			if scoped, err := parseReference(id, loc.base); err == nil {
				switch {
				case scoped.key() != loc.key():
					w.register(loc, node)
					loc = scoped
				case scoped.fragment != "#":
					w.alias(scoped, node)
				}
			}
		}
	}
	w.register(loc, node)
	if !isObject {
		return
	}
	for k, v := range m {
		switch {
		case k == "definitions":
			w.visitDefinitions(v, loc.at(k))
		case w.isReserved(k):
		default:
			w.visit(v, loc.at(k), false)
		}
	}
}

// visitDefinitions walks a definitions map. Its keys are names, not
// keywords, so none of them is skipped.
func (w *walker) visitDefinitions(node any, loc reference) {
	w.register(loc, node)
	defs, ok := node.(map[string]any)
	if !ok {
		return
	}
	for name, sub := range defs {
		w.visit(sub, loc.at(name), false)
	}
}

func (w *walker) isReserved(k string) bool {
	_, ok := w.reserved[k]
	return ok
}
