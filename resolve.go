package skemaref

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reoring/skemaref/internal/jsondoc"
)

// Resolve returns the schema node ref points to.
//
// Local references (no host) are answered from the namespace only. Remote
// references are answered from the namespace or the universe cache; on a
// miss the document is fetched from https://<host><path>, submitted to the
// universe cache, and the fragment looked up again. Concurrent misses for
// the same document share one fetch.
func (r *Resolver) Resolve(ctx context.Context, ref string) (any, error) {
	target, err := parseReference(ref, nil)
	if err != nil {
		return nil, newResolutionError(CodeInvalidReference, reference{raw: ref}, nil, err)
	}
	return r.resolveRef(ctx, target, nil)
}

// lookup consults the namespace, then the universe cache. docKnown reports
// whether either store holds ref's document.
func (r *Resolver) lookup(ref reference) (node any, found, docKnown bool) {
	node, found, docKnown = r.namespace.lookup(ref)
	if found {
		return node, true, true
	}
	n, f, known := r.universe.lookup(ref)
	return n, f, docKnown || known
}

// resolveRef resolves ref within one resolution tree. chain holds the
// canonical URLs fetched so far in that tree.
func (r *Resolver) resolveRef(ctx context.Context, ref reference, chain []string) (any, error) {
	node, found, docKnown := r.lookup(ref)
	switch {
	case found:
		return node, nil
	case ref.isLocal():
		return nil, newResolutionError(CodeLocalUnresolvable, ref, chain, nil)
	case docKnown:
		return nil, newResolutionError(CodeRemoteUnresolvable, ref, chain, nil)
	}

	url := ref.canonical()
	if slices.Contains(chain, url) {
		return nil, newResolutionError(CodeCycleDetected, ref, chain, nil)
	}
	if len(chain) >= r.opts.MaxDepth {
		return nil, newResolutionError(CodeDepthExceeded, ref, chain, fmt.Errorf("max depth %d", r.opts.MaxDepth))
	}
	chain = append(slices.Clip(chain), url)

	if err := r.fetch(ctx, ref, chain); err != nil {
		return nil, err
	}
	if node, found, _ := r.lookup(ref); found {
		return node, nil
	}
	return nil, newResolutionError(CodeRemoteUnresolvable, ref, chain, nil)
}

// fetch retrieves and submits ref's document, or waits for the fetch
// already in flight for it.
func (r *Resolver) fetch(ctx context.Context, ref reference, chain []string) error {
	url := ref.canonical()
	leader, err := r.flights.do(ctx, url, chain, func() error {
		return r.fetchAndSubmit(ctx, ref, chain)
	})
	if err == errWaitCycle {
		r.log.Debug("in-flight fetch waits on this chain", zap.String("url", url), zap.Strings("chain", chain))
		return newResolutionError(CodeCycleDetected, ref, chain, nil)
	}
	if !leader {
		if ctx.Err() != nil && err == ctx.Err() {
			return newResolutionError(CodeTransportFailure, ref, chain, err)
		}
		r.metrics.coalesced.Inc()
		r.log.Debug("joined in-flight fetch", zap.String("url", url), zap.Error(err))
	}
	return err
}

func (r *Resolver) fetchAndSubmit(ctx context.Context, ref reference, chain []string) error {
	// a previous flight may have landed between our lookup and joining
	if r.universe.hasDocument(ref.key()) || r.namespace.hasDocument(ref.key()) {
		return nil
	}
	log := r.log.With(zap.String("url", ref.canonical()))
	log.Debug("fetching schema", zap.Strings("chain", chain))

	// The fetch outlives the first caller's ctx: other callers may be waiting.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.opts.Fetcher.Fetch(fctx, ref.fetchURL())
	took := time.Since(start)
	r.metrics.fetchDuration.Observe(took.Seconds())
	if err != nil {
		return r.fetchFailed(log, newResolutionError(CodeTransportFailure, ref, chain, err))
	}
	if !strings.HasPrefix(strings.ToLower(resp.ContentType), SchemaContentType) {
		return r.fetchFailed(log, newResolutionError(CodeBadContentType, ref, chain,
			fmt.Errorf("content type %q", resp.ContentType)))
	}
	doc, err := jsondoc.DecodeBytes(resp.Body, r.limits())
	if err != nil {
		return r.fetchFailed(log, newResolutionError(CodeInvalidDocument, ref, chain, err))
	}

	// Submitting may resolve a metaschema, which may fetch in turn.
	sctx, scancel := context.WithTimeout(withFlight(context.WithoutCancel(ctx), ref.canonical()), r.opts.Timeout)
	defer scancel()
	if err := r.submit(sctx, ref.fetchURL(), doc, chain, r.universe, storeUniverse); err != nil {
		return r.fetchFailed(log, err)
	}

	r.metrics.fetches.WithLabelValues("ok").Inc()
	log.Debug("fetched schema", zap.Duration("took", took), zap.Int("bytes", len(resp.Body)))
	return nil
}

func (r *Resolver) fetchFailed(log *zap.Logger, err error) error {
	outcome := "error"
	if re, ok := AsResolutionError(err); ok {
		outcome = re.Code
	}
	r.metrics.fetches.WithLabelValues(outcome).Inc()
	log.Warn("schema fetch failed", zap.Error(err))
	return err
}
