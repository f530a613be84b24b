package skemaref

import (
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

var errWaitCycle = errors.New("skemaref: in-flight fetches wait on each other")

// coalescer keeps at most one fetch in flight per canonical URL. Callers
// arriving while it runs attach to the same call; singleflight delivers the
// outcome to each of them in enrollment order, exactly once, and forgets the
// key when the call finishes.
//
// A flight may itself wait on another URL while submitting (its metaschema).
// waitsOn records those edges so a flight never joins a call that is, directly
// or through other flights, waiting on it.
type coalescer struct {
	group singleflight.Group

	mu      sync.Mutex
	waitsOn map[string]string // running flight -> URL it is blocked on
}

type flightKey struct{}

// withFlight marks ctx as belonging to the flight fetching url.
func withFlight(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, flightKey{}, url)
}

func flightOf(ctx context.Context) string {
	url, _ := ctx.Value(flightKey{}).(string)
	return url
}

// do runs fn for key unless a call for key is already running, in which
// case it waits for that call's result. fn runs detached from ctx: a caller
// that gives up (ctx done) stops waiting but does not cancel the fetch for
// the others. leader reports whether this caller's fn was the one executed.
//
// chain holds the URLs the caller is resolving through. If key's flight is
// blocked, transitively, on one of them, do returns errWaitCycle instead of
// waiting.
func (c *coalescer) do(ctx context.Context, key string, chain []string, fn func() error) (leader bool, err error) {
	owner := flightOf(ctx)
	if err := c.enter(owner, key, chain); err != nil {
		return false, err
	}
	defer c.leave(owner, key)

	ran := false
	ch := c.group.DoChan(key, func() (any, error) {
		ran = true
		return nil, fn()
	})
	select {
	case res := <-ch:
		// ran was written before fn returned, which precedes the send
		return ran, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// enter walks the wait-for edges starting at key and, when none leads back
// into chain, records that owner's flight now waits on key.
func (c *coalescer) enter(owner, key string, chain []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.waitsOn[key]
	for steps := 0; ok && steps <= len(c.waitsOn); steps++ {
		if slices.Contains(chain, w) {
			return errWaitCycle
		}
		w, ok = c.waitsOn[w]
	}
	if owner == "" {
		return nil
	}
	if c.waitsOn == nil {
		c.waitsOn = make(map[string]string)
	}
	c.waitsOn[owner] = key
	return nil
}

func (c *coalescer) leave(owner, key string) {
	if owner == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waitsOn[owner] == key {
		delete(c.waitsOn, owner)
	}
}
