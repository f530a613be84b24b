package skemaref

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option defaults (exported consts for CLI flags and callers that tune
// relative to them).
const (
	DefaultTimeout          = 3 * time.Second // per network fetch
	DefaultMaxDepth         = 10              // remote documents per resolution chain
	DefaultMaxDocumentBytes = 8 << 20         // fetched body size
	DefaultMaxDocumentDepth = 256             // nesting of a fetched document
)

// Options configures a Resolver. Zero values take the defaults above.
type Options struct {
	// Timeout bounds each network fetch. Expiry fails every caller waiting
	// on that fetch.
	Timeout time.Duration
	// MaxDepth bounds the number of distinct remote documents one
	// resolution may traverse.
	MaxDepth int
	// Fetcher retrieves remote documents. Defaults to an HTTPFetcher.
	Fetcher Fetcher
	// Logger receives debug events for fetches and submissions.
	Logger *zap.Logger
	// Registerer, when set, receives the resolver's metrics.
	Registerer prometheus.Registerer
	// MaxDocumentBytes and MaxDocumentDepth bound fetched bodies.
	MaxDocumentBytes int64
	MaxDocumentDepth int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if o.MaxDocumentDepth <= 0 {
		o.MaxDocumentDepth = DefaultMaxDocumentDepth
	}
	if o.Fetcher == nil {
		o.Fetcher = &HTTPFetcher{MaxBytes: o.MaxDocumentBytes}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
