package skemaref_test

import (
	"context"
	"fmt"
	"sync"

	skemaref "github.com/reoring/skemaref"
)

// memFetcher serves fixed bodies by URL and counts fetches.
type memFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	ctype string
	calls map[string]int
}

func newMemFetcher(docs map[string]string) *memFetcher {
	return &memFetcher{docs: docs, ctype: skemaref.SchemaContentType, calls: map[string]int{}}
}

func (f *memFetcher) Fetch(ctx context.Context, url string) (*skemaref.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	body, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: 404 Not Found", url)
	}
	return &skemaref.Response{ContentType: f.ctype, Body: []byte(body)}, nil
}

func (f *memFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *memFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func obj(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}
