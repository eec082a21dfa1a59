package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/internal/metrics"
	"storefront/internal/model"
)

// =============================================================================
// CATEGORY SNAPSHOT CACHE
// =============================================================================
//
// Product search filters by category ID while navigation links carry slugs,
// so every slug filter costs a category fetch. The resolver can keep the
// whole category snapshot for a short TTL:
//
//   - TTL 0 (default) disables caching: every resolution re-fetches.
//   - A cached snapshot expires TTL after it was fetched. Product counts in
//     the snapshot may lag the platform by at most the TTL.
//   - Invalidate() drops the snapshot immediately.
//   - A failed fetch never populates or clears the cache.
//
// Concurrent misses share one platform call. The shared call is detached
// from the caller that started it and bounded by the resolver timeout; each
// caller waits only as long as its own context allows.
// =============================================================================

const categoriesCacheName = "categories"

// CategoryLister fetches the full category snapshot.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	TTL     time.Duration
	Timeout time.Duration // bounds a shared fetch, defaults to DefaultTimeout
	Metrics *metrics.Recorder
	Logger  *slog.Logger
	Now     func() time.Time // test hook; defaults to time.Now
}

// Resolver maps category slugs to platform identifiers.
type Resolver struct {
	source  CategoryLister
	ttl     time.Duration
	timeout time.Duration
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
	group   singleflight.Group

	mu        sync.RWMutex
	snapshot  []model.Category
	fetchedAt time.Time
}

// NewResolver creates a resolver over source.
func NewResolver(source CategoryLister, opts ResolverOptions) *Resolver {
	r := &Resolver{
		source:  source,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Resolve returns the identifier of the category with exactly this slug.
// found is false when the slug is unknown or the snapshot could not be
// fetched; Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, slug string) (id int, found bool) {
	cat, ok := r.CategoryBySlug(ctx, slug)
	if !ok {
		return 0, false
	}
	return cat.ID, true
}

// CategoryBySlug returns the category with exactly this slug.
func (r *Resolver) CategoryBySlug(ctx context.Context, slug string) (*model.Category, bool) {
	if slug == "" {
		return nil, false
	}
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		r.logger.Warn("category resolution failed",
			slog.String("slug", slug),
			slog.String("error", err.Error()))
		return nil, false
	}
	return FindBySlug(snapshot, slug)
}

// CategoryByID returns the category with this identifier.
func (r *Resolver) CategoryByID(ctx context.Context, id int) (*model.Category, bool) {
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		r.logger.Warn("category lookup failed",
			slog.Int("id", id),
			slog.String("error", err.Error()))
		return nil, false
	}
	for i := range snapshot {
		if snapshot[i].ID == id {
			return &snapshot[i], true
		}
	}
	return nil, false
}

// Snapshot returns the full category collection, from cache when fresh.
// The returned slice is shared; callers must not modify it.
func (r *Resolver) Snapshot(ctx context.Context) ([]model.Category, error) {
	if r.ttl <= 0 {
		return r.source.ListCategories(ctx)
	}

	if cached, age, ok := r.cached(); ok {
		r.metrics.CacheLookup(ctx, categoriesCacheName, true)
		traceFrom(ctx).record(CacheLookup{Cache: categoriesCacheName, Hit: true, TTL: r.ttl - age})
		return cached, nil
	}
	r.metrics.CacheLookup(ctx, categoriesCacheName, false)

	flight := r.group.DoChan(categoriesCacheName, func() (any, error) {
		// A flight that finished between our lookup and DoChan already stored it.
		if cached, _, ok := r.cached(); ok {
			return cached, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		categories, err := r.source.ListCategories(fetchCtx)
		if err != nil {
			return nil, err
		}
		r.store(categories)
		return categories, nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		traceFrom(ctx).record(CacheLookup{Cache: categoriesCacheName, Detail: "fetch-abandoned"})
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	lookup := CacheLookup{Cache: categoriesCacheName, Collapsed: res.Shared}
	if err != nil {
		lookup.Detail = "fetch-failed"
		traceFrom(ctx).record(lookup)
		return nil, err
	}
	lookup.Stored = true
	lookup.TTL = r.ttl
	traceFrom(ctx).record(lookup)
	return v.([]model.Category), nil
}

// Invalidate drops the cached snapshot.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = nil
	r.fetchedAt = time.Time{}
}

func (r *Resolver) cached() ([]model.Category, time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil, 0, false
	}
	age := r.now().Sub(r.fetchedAt)
	if age >= r.ttl {
		return nil, 0, false
	}
	return r.snapshot, age, true
}

func (r *Resolver) store(categories []model.Category) {
	if categories == nil {
		categories = []model.Category{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = categories
	r.fetchedAt = r.now()
}

// FindBySlug performs an exact slug match over a snapshot.
func FindBySlug(categories []model.Category, slug string) (*model.Category, bool) {
	for i := range categories {
		if categories[i].Slug == slug {
			return &categories[i], true
		}
	}
	return nil, false
}
