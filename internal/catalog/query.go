package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/model"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 20

// PriceCeiling is the upper end of the price slider. A maximum at or above it
// is no bound at all.
const PriceCeiling = 100000

// Special filters.
const (
	FilterSale     = "sale"
	FilterFeatured = "featured"
	FilterNew      = "new"
)

// Sort keys of the URL vocabulary.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortDateDesc  = "date-desc"
)

type ordering struct{ orderBy, order string }

var sortOrderings = map[string]ordering{
	SortPriceAsc:  {"price", "asc"},
	SortPriceDesc: {"price", "desc"},
	SortNameAsc:   {"title", "asc"},
	SortNameDesc:  {"title", "desc"},
	SortDateDesc:  {"date", "desc"},
}

// CategoryFallback decides what happens to a category slug that does not
// resolve to an identifier.
type CategoryFallback string

const (
	// FallbackDrop omits the category constraint.
	FallbackDrop CategoryFallback = "drop"
	// FallbackPassthrough sends the raw slug as the category parameter.
	FallbackPassthrough CategoryFallback = "passthrough"
)

// ParseCategoryFallback validates a configured policy; "" means drop.
func ParseCategoryFallback(s string) (CategoryFallback, error) {
	switch CategoryFallback(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackDrop:
		return FallbackDrop, nil
	case FallbackPassthrough:
		return FallbackPassthrough, nil
	}
	return "", fmt.Errorf("invalid category fallback %q (want drop or passthrough)", s)
}

// Intent is the user-facing description of a catalog listing, decoded from
// the storefront URL.
type Intent struct {
	Page         int
	Search       string
	CategorySlug string
	PriceMin     int
	PriceMax     int
	Filter       string
	Sort         string
}

// ParseIntent decodes the URL vocabulary: page, category, filter, sort,
// search, price_min, price_max. Malformed numbers fall back to defaults.
func ParseIntent(v url.Values) Intent {
	in := Intent{
		Page:         1,
		Search:       strings.TrimSpace(v.Get("search")),
		CategorySlug: strings.TrimSpace(v.Get("category")),
		PriceMax:     PriceCeiling,
		Filter:       v.Get("filter"),
		Sort:         v.Get("sort"),
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		in.Page = n
	}
	if n, err := strconv.Atoi(v.Get("price_min")); err == nil {
		in.PriceMin = n
	}
	if n, err := strconv.Atoi(v.Get("price_max")); err == nil {
		in.PriceMax = n
	}
	return in
}

// Values encodes the intent back to the URL vocabulary. Defaults are
// omitted, so a zero-filter intent encodes to just the page.
func (in Intent) Values() url.Values {
	v := url.Values{}
	page := in.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if in.CategorySlug != "" {
		v.Set("category", in.CategorySlug)
	}
	if in.Filter != "" {
		v.Set("filter", in.Filter)
	}
	if in.Sort != "" {
		v.Set("sort", in.Sort)
	}
	if in.Search != "" {
		v.Set("search", in.Search)
	}
	if in.PriceMin > 0 {
		v.Set("price_min", strconv.Itoa(in.PriceMin))
	}
	if in.PriceMax > 0 && in.PriceMax < PriceCeiling {
		v.Set("price_max", strconv.Itoa(in.PriceMax))
	}
	return v
}

// UpdateFilters applies filter changes to the current URL parameters:
// non-empty values are set, empty ones deleted, and the page always resets
// to 1.
func UpdateFilters(current url.Values, changes map[string]string) url.Values {
	next := url.Values{}
	for key, values := range current {
		if _, changing := changes[key]; !changing {
			next[key] = append([]string(nil), values...)
		}
	}
	for key, value := range changes {
		if value == "" {
			next.Del(key)
			continue
		}
		next.Set(key, value)
	}
	next.Set("page", "1")
	return next
}

// PriceChanges returns the UpdateFilters changes for a price slider range,
// clearing bounds that sit at the slider's ends.
func PriceChanges(min, max int) map[string]string {
	changes := map[string]string{"price_min": "", "price_max": ""}
	if min > 0 {
		changes["price_min"] = strconv.Itoa(min)
	}
	if max < PriceCeiling {
		changes["price_max"] = strconv.Itoa(max)
	}
	return changes
}

// SlugResolver maps category slugs to identifiers.
type SlugResolver interface {
	Resolve(ctx context.Context, slug string) (id int, found bool)
}

// Builder translates intents into platform product queries.
type Builder struct {
	resolver SlugResolver
	fallback CategoryFallback
	logger   *slog.Logger
}

// NewBuilder creates a query builder.
func NewBuilder(resolver SlugResolver, fallback CategoryFallback, logger *slog.Logger) *Builder {
	if fallback == "" {
		fallback = FallbackDrop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{resolver: resolver, fallback: fallback, logger: logger}
}

// Build produces the product query for an intent. Rules apply in order:
// paging, category, search, price bounds, special filter, sort.
func (b *Builder) Build(ctx context.Context, in Intent) model.ProductQuery {
	q := model.ProductQuery{
		Page:    in.Page,
		PerPage: PageSize,
		Status:  model.DefaultProductStatus,
	}
	if q.Page < 1 {
		q.Page = 1
	}

	if in.CategorySlug != "" {
		q.Category = b.category(ctx, in.CategorySlug)
	}

	if s := strings.TrimSpace(in.Search); s != "" {
		q.Search = s
	}

	if in.PriceMin > 0 {
		q.MinPrice = strconv.Itoa(in.PriceMin)
	}
	if in.PriceMax < PriceCeiling {
		q.MaxPrice = strconv.Itoa(in.PriceMax)
	}

	switch in.Filter {
	case FilterSale:
		q.OnSale = true
	case FilterFeatured:
		q.Featured = true
	case FilterNew:
		q.OrderBy, q.Order = "date", "desc"
		return q
	}

	o, ok := sortOrderings[in.Sort]
	if !ok {
		o = sortOrderings[SortDateDesc]
	}
	q.OrderBy, q.Order = o.orderBy, o.order
	return q
}

func (b *Builder) category(ctx context.Context, slug string) string {
	if id, found := b.resolver.Resolve(ctx, slug); found {
		return strconv.Itoa(id)
	}

	b.logger.Warn("category slug not found",
		slog.String("slug", slug),
		slog.String("fallback", string(b.fallback)))
	if b.fallback == FallbackPassthrough {
		return slug
	}
	return ""
}
