package catalog

import (
	"context"
	"sync"
	"time"
)

// CacheLookup describes one cache consultation made while serving a request.
type CacheLookup struct {
	Cache     string
	Hit       bool
	TTL       time.Duration // remaining freshness on a hit, full TTL when stored
	Stored    bool
	Collapsed bool // the miss shared another request's platform call
	Detail    string
}

// CacheTrace collects cache lookups for one request.
// Safe for use by the concurrent loaders of a page.
type CacheTrace struct {
	mu      sync.Mutex
	lookups []CacheLookup
}

type cacheTraceKey struct{}

// WithCacheTrace returns a context whose cache lookups are recorded in the
// returned trace.
func WithCacheTrace(ctx context.Context) (context.Context, *CacheTrace) {
	trace := &CacheTrace{}
	return context.WithValue(ctx, cacheTraceKey{}, trace), trace
}

func traceFrom(ctx context.Context) *CacheTrace {
	trace, _ := ctx.Value(cacheTraceKey{}).(*CacheTrace)
	return trace
}

func (t *CacheTrace) record(l CacheLookup) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lookups = append(t.lookups, l)
}

// Lookups returns the recorded lookups in order.
func (t *CacheTrace) Lookups() []CacheLookup {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]CacheLookup(nil), t.lookups...)
}
