package skemaref

import (
	"sort"
	"sync"
)

// docKey addresses one document in a namespace tree.
type docKey struct {
	host string
	path string
}

func (k docKey) String() string { return k.host + k.path }

// fragments maps a fragment ("#", "#/definitions/foo") to its schema node.
type fragments map[string]any

// store is a namespace tree: host -> path -> fragment -> node, flattened on
// (host, path). Fragment maps are never mutated after commit; resubmitting
// a document swaps its whole map.
type store struct {
	mu   sync.RWMutex
	docs map[docKey]fragments
}

func newStore() *store {
	return &store{docs: make(map[docKey]fragments)}
}

// seededStore shares the given fragment maps; they are read-only.
func seededStore(seed map[docKey]fragments) *store {
	s := newStore()
	for k, v := range seed {
		s.docs[k] = v
	}
	return s
}

// lookup returns the node registered for ref and whether its document is
// known at all.
func (s *store) lookup(ref reference) (node any, found, docKnown bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frags, ok := s.docs[ref.key()]
	if !ok {
		return nil, false, false
	}
	node, found = frags[ref.fragment]
	return node, found, true
}

func (s *store) hasDocument(k docKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[k]
	return ok
}

// commit publishes a batch of documents atomically.
func (s *store) commit(batch map[docKey]fragments) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range batch {
		s.docs[k] = v
	}
}

func (s *store) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for k := range s.docs {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}
