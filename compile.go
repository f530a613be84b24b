package skemaref

import (
	"context"
	"slices"
	"strconv"
)

// Compile resolves ref and returns a copy of its schema with every $ref
// replaced by the compiled schema it points to.
//
// A $ref that points at a structural ancestor of the referencing node, or
// at a schema already being expanded on the current path, is recursive: it
// is emitted as {"$ref": <original>} and not expanded further. Objects under
// "properties" are compiled as a map of named sub-schemas. Any resolution
// failure aborts the whole compilation with a *CompilationError.
func (r *Resolver) Compile(ctx context.Context, ref string) (any, error) {
	target, err := parseReference(ref, nil)
	if err != nil {
		return nil, newResolutionError(CodeInvalidReference, reference{raw: ref}, nil, err)
	}
	node, err := r.resolveRef(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	c := &compiler{r: r, expanding: []string{target.String()}}
	return c.expand(ctx, node, scope{at: target, chain: remoteChain(nil, target)})
}

// scope locates the node being expanded: its document and fragment path,
// plus the remote documents entered to reach it.
type scope struct {
	at    reference
	chain []string
}

func (s scope) child(token string) scope {
	return scope{at: s.at.at(token), chain: s.chain}
}

type compiler struct {
	r         *Resolver
	expanding []string // absolute references currently being expanded
}

func (c *compiler) expand(ctx context.Context, node any, sc scope) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if id, ok := n["id"].(string); ok && id != "" {
			if scoped, err := parseReference(id, sc.at.base); err == nil && scoped.key() != sc.at.key() {
				sc.at = scoped
			}
		}
		if raw, ok := n["$ref"].(string); ok {
			return c.expandRef(ctx, raw, sc)
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			var (
				ev  any
				err error
			)
			if props, ok := v.(map[string]any); ok && k == "properties" {
				ev, err = c.expandProperties(ctx, props, sc.child(k))
			} else {
				ev, err = c.expand(ctx, v, sc.child(k))
			}
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			ev, err := c.expand(ctx, v, sc.child(strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return node, nil
	}
}

// expandProperties compiles each named sub-schema; the names themselves are
// never read as keywords.
func (c *compiler) expandProperties(ctx context.Context, props map[string]any, sc scope) (map[string]any, error) {
	out := make(map[string]any, len(props))
	for name, sub := range props {
		ev, err := c.expand(ctx, sub, sc.child(name))
		if err != nil {
			return nil, err
		}
		out[name] = ev
	}
	return out, nil
}

func (c *compiler) expandRef(ctx context.Context, raw string, sc scope) (any, error) {
	target, err := parseReference(raw, sc.at.base)
	if err != nil {
		return nil, &CompilationError{Ref: raw, Path: sc.at.fragment,
			Err: newResolutionError(CodeInvalidReference, reference{raw: raw}, sc.chain, err)}
	}
	if target.key() == sc.at.key() && isAncestorRef(sc.at.fragment, target.fragment) {
		return recursiveMarker(raw), nil
	}
	abs := target.String()
	if slices.Contains(c.expanding, abs) {
		return recursiveMarker(raw), nil
	}
	node, err := c.r.resolveRef(ctx, target, sc.chain)
	if err != nil {
		re, ok := AsResolutionError(err)
		if !ok {
			re = newResolutionError(CodeTransportFailure, target, sc.chain, err)
		}
		return nil, &CompilationError{Ref: raw, Path: sc.at.fragment, Err: re}
	}
	c.expanding = append(c.expanding, abs)
	defer func() { c.expanding = c.expanding[:len(c.expanding)-1] }()
	return c.expand(ctx, node, scope{at: target, chain: remoteChain(sc.chain, target)})
}

func recursiveMarker(raw string) map[string]any {
	return map[string]any{"$ref": raw}
}

// remoteChain extends chain with ref's document when it is remote and not
// already on it.
func remoteChain(chain []string, ref reference) []string {
	if ref.isLocal() || slices.Contains(chain, ref.canonical()) {
		return chain
	}
	return append(slices.Clip(chain), ref.canonical())
}
