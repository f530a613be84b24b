package skemaref

import (
	"net/url"
	"strings"

	"github.com/reoring/skemaref/internal/jsondoc"
)

// reference is a schema reference split into namespace coordinates.
// host is empty for the local namespace; fragment always starts with '#'.
type reference struct {
	raw      string
	host     string
	path     string // includes "?query" when present
	fragment string
	base     *url.URL // the document URL, fragment stripped; nil for local refs without a path
}

// parseReference resolves raw against base (which may be nil) and splits it.
func parseReference(raw string, base *url.URL) (reference, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return reference{}, err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	ref := reference{raw: raw, fragment: normalizeFragment(u.Fragment)}
	if u.Opaque != "" {
		// urn:... and similar: addressable only in the local namespace
		ref.path = u.Scheme + ":" + u.Opaque
	} else {
		ref.host = u.Host
		ref.path = u.Path
		if ref.host == "" {
			// resolution against a host-less base roots the path; local ids never are
			ref.path = strings.TrimPrefix(ref.path, "/")
		}
		if u.RawQuery != "" {
			ref.path += "?" + u.RawQuery
		}
	}
	if ref.host != "" || ref.path != "" {
		doc := *u
		doc.Fragment, doc.RawFragment = "", ""
		ref.base = &doc
	}
	return ref, nil
}

func normalizeFragment(f string) string {
	f = strings.TrimSuffix(f, "/")
	return "#" + f
}

func (r reference) isLocal() bool { return r.host == "" }

// canonical is the fetch and deduplication key: host+path, no fragment.
func (r reference) canonical() string { return r.host + r.path }

func (r reference) key() docKey { return docKey{host: r.host, path: r.path} }

// String is the absolute form used to detect re-entry during compilation.
func (r reference) String() string { return r.canonical() + r.fragment }

// fetchURL is the https URL a remote document is retrieved from.
func (r reference) fetchURL() string {
	u := url.URL{Scheme: "https", Host: r.host}
	path, query, _ := strings.Cut(r.path, "?")
	u.Path = path
	u.RawQuery = query
	return u.String()
}

// at returns the reference to a child of r's fragment.
func (r reference) at(token string) reference {
	c := r
	c.raw = ""
	c.fragment = jsondoc.JoinPointer(strings.TrimSuffix(r.fragment, "/"), token)
	return c
}

// isAncestorRef reports whether ref names a strict structural ancestor of
// current. Both are fragments ("#", "#/a/b"); comparison is by whole
// pointer segments.
func isAncestorRef(current, ref string) bool {
	if ref == current {
		return false
	}
	if ref == "#" {
		return strings.HasPrefix(current, "#/")
	}
	return strings.HasPrefix(current, ref+"/")
}
