// Package catalog turns catalog platform calls into the storefront's result
// envelopes. It resolves category slugs, translates URL intents into
// platform queries, and assembles the catalog and product pages.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"storefront/internal/adapter"
	"storefront/internal/metrics"
	"storefront/internal/model"
)

// DefaultTimeout bounds each platform call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Default limits of the listing helpers.
const (
	FeaturedLimit    = 6
	SaleLimit        = 6
	NewArrivalsLimit = 8
	SearchLimit      = 20
	CategoryLimit    = 20
	RelatedLimit     = 4
)

// Options configures a Service.
type Options struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Fallback CategoryFallback
	Metrics  *metrics.Recorder
	Logger   *slog.Logger
}

// Service is the catalog boundary. Every method resolves to a
// model.Result; platform failures never escape as errors.
type Service struct {
	store    adapter.Store
	timeout  time.Duration
	logger   *slog.Logger
	resolver *Resolver
	builder  *Builder
}

// NewService creates a catalog service over store.
func NewService(store adapter.Store, opts Options) *Service {
	s := &Service{
		store:   store,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.resolver = NewResolver(categorySource{s}, ResolverOptions{
		TTL:     opts.CacheTTL,
		Timeout: s.timeout,
		Metrics: opts.Metrics,
		Logger:  s.logger,
	})
	s.builder = NewBuilder(s.resolver, opts.Fallback, s.logger)
	return s
}

// categorySource applies the per-call timeout to the resolver's fetches.
type categorySource struct{ s *Service }

func (c categorySource) ListCategories(ctx context.Context) ([]model.Category, error) {
	return call(ctx, c.s, "list_categories", c.s.store.ListCategories)
}

// call runs one platform operation under the per-call timeout and logs its
// failure.
func call[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := fn(ctx)
	if err != nil {
		s.logger.Warn("catalog platform call failed",
			slog.String("operation", op),
			slog.String("reason", model.Reason(err)),
			slog.String("error", err.Error()))
	}
	return v, err
}

func failList[T any](err error) model.Result[[]T] {
	r := model.Fail[[]T](err)
	r.Data = []T{}
	return r
}

// Query translates a URL intent into the platform query.
func (s *Service) Query(ctx context.Context, in Intent) model.ProductQuery {
	return s.builder.Build(ctx, in)
}

// ListProducts runs an already translated product query.
func (s *Service) ListProducts(ctx context.Context, q model.ProductQuery) model.Result[[]model.Product] {
	products, err := call(ctx, s, "list_products", func(ctx context.Context) ([]model.Product, error) {
		return s.store.ListProducts(ctx, q)
	})
	if err != nil {
		return failList[model.Product](err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return model.OK(products)
}

// SearchCatalog lists the products matching a URL intent.
func (s *Service) SearchCatalog(ctx context.Context, in Intent) model.Result[[]model.Product] {
	return s.ListProducts(ctx, s.Query(ctx, in))
}

// ListCategories returns the category snapshot, from cache when enabled.
func (s *Service) ListCategories(ctx context.Context) model.Result[[]model.Category] {
	categories, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return failList[model.Category](err)
	}
	return model.OK(categories)
}

// CategoryBySlug looks up a category in the snapshot.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*model.Category, bool) {
	return s.resolver.CategoryBySlug(ctx, slug)
}

// CategoryByID looks up a category in the snapshot.
func (s *Service) CategoryByID(ctx context.Context, id int) (*model.Category, bool) {
	return s.resolver.CategoryByID(ctx, id)
}

// Invalidate drops the cached category snapshot.
func (s *Service) Invalidate() {
	s.resolver.Invalidate()
}

// GetProductBySlug finds the published product with this slug.
// A slug that matches nothing is a successful lookup with nil Data.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) model.Result[*model.Product] {
	if slug == "" {
		return model.OK[*model.Product](nil)
	}
	products, err := call(ctx, s, "get_product_by_slug", func(ctx context.Context) ([]model.Product, error) {
		return s.store.ListProducts(ctx, model.ProductQuery{
			Slug:   slug,
			Status: model.DefaultProductStatus,
		})
	})
	if err != nil {
		return model.Fail[*model.Product](err)
	}
	if len(products) == 0 {
		return model.OK[*model.Product](nil)
	}
	return model.OK(&products[0])
}

// GetProductByID fetches a product by platform identifier. An identifier
// the platform does not know is a successful lookup with nil Data, like an
// unmatched slug.
func (s *Service) GetProductByID(ctx context.Context, id int) model.Result[*model.Product] {
	product, err := call(ctx, s, "get_product", func(ctx context.Context) (*model.Product, error) {
		return s.store.GetProduct(ctx, id)
	})
	if errors.Is(err, model.ErrNotFound) {
		return model.OK[*model.Product](nil)
	}
	if err != nil {
		return model.Fail[*model.Product](err)
	}
	return model.OK(product)
}

// ListPaymentGateways returns every configured gateway, enabled or not.
func (s *Service) ListPaymentGateways(ctx context.Context) model.Result[[]model.PaymentGateway] {
	gateways, err := call(ctx, s, "list_payment_gateways", s.store.ListPaymentGateways)
	if err != nil {
		return failList[model.PaymentGateway](err)
	}
	if gateways == nil {
		gateways = []model.PaymentGateway{}
	}
	return model.OK(gateways)
}

// CheckConnection probes the platform with one product and five categories.
func (s *Service) CheckConnection(ctx context.Context) model.Result[*model.ConnectionStatus] {
	status, err := call(ctx, s, "check_connection", s.store.CheckConnection)
	if err != nil {
		return model.Fail[*model.ConnectionStatus](err)
	}
	return model.OK(status)
}

// FeaturedProducts lists the newest featured products.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) model.Result[[]model.Product] {
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage:  orDefault(limit, FeaturedLimit),
		Featured: true,
		OrderBy:  "date",
		Order:    "desc",
	})
}

// SaleProducts lists the newest products on sale.
func (s *Service) SaleProducts(ctx context.Context, limit int) model.Result[[]model.Product] {
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage: orDefault(limit, SaleLimit),
		OnSale:  true,
		OrderBy: "date",
		Order:   "desc",
	})
}

// NewArrivals lists the newest products.
func (s *Service) NewArrivals(ctx context.Context, limit int) model.Result[[]model.Product] {
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage: orDefault(limit, NewArrivalsLimit),
		OrderBy: "date",
		Order:   "desc",
	})
}

// SearchProducts runs a free-text search.
func (s *Service) SearchProducts(ctx context.Context, query string, limit int) model.Result[[]model.Product] {
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage: orDefault(limit, SearchLimit),
		Search:  query,
	})
}

// ProductsByCategory lists the newest products of a category.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID, limit int) model.Result[[]model.Product] {
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage:  orDefault(limit, CategoryLimit),
		Category: strconv.Itoa(categoryID),
		OrderBy:  "date",
		Order:    "desc",
	})
}

// ProductsByCategorySlug lists the newest products of a category given by
// slug. An unknown slug follows the configured fallback policy.
func (s *Service) ProductsByCategorySlug(ctx context.Context, slug string, limit int) model.Result[[]model.Product] {
	q := model.ProductQuery{
		PerPage: orDefault(limit, CategoryLimit),
		OrderBy: "date",
		Order:   "desc",
	}
	if slug != "" {
		q.Category = s.builder.category(ctx, slug)
	}
	return s.ListProducts(ctx, q)
}

// RelatedProducts lists products sharing the first category of p, excluding
// p itself. A product without categories has no related products.
func (s *Service) RelatedProducts(ctx context.Context, p *model.Product, limit int) model.Result[[]model.Product] {
	primary := p.PrimaryCategory()
	if primary == nil {
		return model.OK([]model.Product{})
	}
	return s.ListProducts(ctx, model.ProductQuery{
		PerPage:  orDefault(limit, RelatedLimit),
		Category: strconv.Itoa(primary.ID),
		Exclude:  []int{p.ID},
	})
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
