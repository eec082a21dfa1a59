package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"storefront/internal/model"
)

const productsUnavailable = "Erreur lors du chargement des produits"

// CatalogPage is everything the catalog listing needs for one URL.
// Each section degrades on its own: a failed product fetch still yields
// categories, and the other way round.
type CatalogPage struct {
	Intent           Intent            `json:"-"`
	Products         []model.Product   `json:"products"`
	Categories       []model.Category  `json:"categories"`
	SelectedCategory *model.Category   `json:"selected_category,omitempty"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Page             int               `json:"page"`
	HasMore          bool              `json:"has_more"`
	NextPage         string            `json:"next_page,omitempty"`
	FilterLinks      map[string]string `json:"filter_links"`
	Notice           string            `json:"notice,omitempty"`
}

// LoadCatalogPage loads products and categories concurrently for the URL
// parameters and derives the page presentation.
func (s *Service) LoadCatalogPage(ctx context.Context, params url.Values) *CatalogPage {
	in := ParseIntent(params)

	var (
		products   model.Result[[]model.Product]
		categories model.Result[[]model.Category]
		g          errgroup.Group
	)
	g.Go(func() error {
		products = s.SearchCatalog(ctx, in)
		return nil
	})
	g.Go(func() error {
		categories = s.ListCategories(ctx)
		return nil
	})
	_ = g.Wait() // loaders report through their envelopes

	page := &CatalogPage{
		Intent:     in,
		Products:   products.Data,
		Categories: categories.Data,
		Page:       in.Page,
	}
	if page.Products == nil {
		page.Products = []model.Product{}
	}
	if page.Categories == nil {
		page.Categories = []model.Category{}
	}

	if in.CategorySlug != "" {
		if cat, ok := FindBySlug(page.Categories, in.CategorySlug); ok {
			page.SelectedCategory = cat
		}
	}

	if !products.Success {
		page.Notice = products.Message
		if page.Notice == "" {
			page.Notice = productsUnavailable
		}
	}

	page.Title = pageTitle(in, page.SelectedCategory)
	page.Description = pageDescription(in, page.SelectedCategory)
	page.HasMore = products.Success && len(page.Products) == PageSize
	if page.HasMore {
		page.NextPage = "?" + pageURL(params, in.Page+1).Encode()
	}
	page.FilterLinks = filterLinks(params)
	return page
}

// filterLinks returns the query string each filter control links to,
// keyed by filter name; "all" clears the special filter.
func filterLinks(params url.Values) map[string]string {
	links := make(map[string]string, 4)
	for _, f := range []string{FilterSale, FilterFeatured, FilterNew} {
		links[f] = "?" + UpdateFilters(params, map[string]string{"filter": f}).Encode()
	}
	links["all"] = "?" + UpdateFilters(params, map[string]string{"filter": ""}).Encode()
	return links
}

func pageTitle(in Intent, selected *model.Category) string {
	switch in.Filter {
	case FilterSale:
		return "Promotions"
	case FilterFeatured:
		return "Produits Vedettes"
	case FilterNew:
		return "Nouvelles Arrivées"
	}
	if selected != nil {
		return selected.Name
	}
	if in.Search != "" {
		return `Résultats pour: "` + in.Search + `"`
	}
	return "Boutique"
}

func pageDescription(in Intent, selected *model.Category) string {
	switch in.Filter {
	case FilterSale:
		return "Profitez de nos offres exceptionnelles sur une sélection de melhfa premium"
	case FilterFeatured:
		return "Découvrez nos créations d'exception, sélectionnées par nos artisans"
	case FilterNew:
		return "Les dernières créations de nos ateliers mauritaniens"
	}
	if selected != nil {
		if selected.Description != "" {
			return selected.Description
		}
		return "Découvrez notre collection " + strings.ToLower(selected.Name)
	}
	return "Découvrez notre collection complète de melhfa mauritaniennes, alliant tradition et modernité"
}

// pageURL copies params with the page number replaced.
func pageURL(params url.Values, page int) url.Values {
	next := url.Values{}
	for key, values := range params {
		next[key] = append([]string(nil), values...)
	}
	next.Set("page", strconv.Itoa(page))
	return next
}

// ProductPage is a product with its related products.
type ProductPage struct {
	Product *model.Product  `json:"product"`
	Related []model.Product `json:"related"`
}

// LoadProductPage loads the product with this slug and up to RelatedLimit
// products of its first category. A missing product yields a successful
// envelope with nil Data; a related-products failure leaves Related empty.
func (s *Service) LoadProductPage(ctx context.Context, slug string) model.Result[*ProductPage] {
	product := s.GetProductBySlug(ctx, slug)
	if !product.Success {
		return model.Result[*ProductPage]{Message: product.Message}
	}
	if product.Data == nil {
		return model.OK[*ProductPage](nil)
	}

	related := s.RelatedProducts(ctx, product.Data, RelatedLimit)
	return model.OK(&ProductPage{
		Product: product.Data,
		Related: related.Data,
	})
}

// HomePage holds the home page product sections.
type HomePage struct {
	Featured    []model.Product `json:"featured"`
	Sale        []model.Product `json:"sale"`
	NewArrivals []model.Product `json:"new_arrivals"`
	Notice      string          `json:"notice,omitempty"`
}

// LoadHomePage loads the featured, sale and new-arrival sections
// concurrently. A failed section is empty and its reason becomes the notice.
func (s *Service) LoadHomePage(ctx context.Context) *HomePage {
	var (
		sections [3]model.Result[[]model.Product]
		g        errgroup.Group
	)
	loaders := [3]func(context.Context, int) model.Result[[]model.Product]{
		s.FeaturedProducts, s.SaleProducts, s.NewArrivals,
	}
	for i, load := range loaders {
		g.Go(func() error {
			sections[i] = load(ctx, 0)
			return nil
		})
	}
	_ = g.Wait()

	home := &HomePage{}
	for i, dst := range []*[]model.Product{&home.Featured, &home.Sale, &home.NewArrivals} {
		*dst = sections[i].Data
		if *dst == nil {
			*dst = []model.Product{}
		}
		if !sections[i].Success && home.Notice == "" {
			home.Notice = sections[i].Message
		}
	}
	return home
}
