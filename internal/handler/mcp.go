// MCP transport handler for the storefront using the official MCP Go SDK.
// Exposes read-only catalog operations as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"
)

// === MCP Tool Input/Output Types ===

// SearchProductsInput is the input schema for search_products.
// It mirrors the catalog URL vocabulary.
type SearchProductsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"free-text search"`
	Category string `json:"category,omitempty" jsonschema:"category slug, as returned by list_categories"`
	Filter   string `json:"filter,omitempty" jsonschema:"one of sale, featured, new"`
	Sort     string `json:"sort,omitempty" jsonschema:"one of price-asc, price-desc, name-asc, name-desc, date-desc"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number"`
	PriceMin int    `json:"price_min,omitempty" jsonschema:"minimum price in store currency"`
	PriceMax int    `json:"price_max,omitempty" jsonschema:"maximum price in store currency"`
}

// ProductList is the output of search_products.
type ProductList struct {
	Products []ProductCard `json:"products"`
	Page     int           `json:"page"`
	HasMore  bool          `json:"has_more"`
	Notice   string        `json:"notice,omitempty"`
}

// ProductCard is a product summarized for display, with prices formatted.
type ProductCard struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Price        string           `json:"price"`
	RegularPrice string           `json:"regular_price,omitempty"`
	Discount     int              `json:"discount_percent,omitempty"`
	Image        string           `json:"image"`
	InStock      bool             `json:"in_stock"`
	Stock        string           `json:"stock_notice,omitempty"`
	Colors       []pricing.Swatch `json:"colors,omitempty"`
}

// GetProductInput is the input schema for get_product.
type GetProductInput struct {
	Slug string `json:"slug,omitempty" jsonschema:"product slug"`
	ID   int    `json:"id,omitempty" jsonschema:"product ID, used when no slug is given"`
}

// ProductDetail is the output of get_product.
type ProductDetail struct {
	Product     ProductCard         `json:"product"`
	Description string              `json:"description"`
	Images      []string            `json:"images"`
	Categories  []model.CategoryRef `json:"categories"`
	Related     []ProductCard       `json:"related"`
}

// ListCategoriesInput is the input schema for list_categories.
type ListCategoriesInput struct{}

// CategoryList is the output of list_categories.
type CategoryList struct {
	Categories []model.Category `json:"categories"`
}

// CategoryProductsInput is the input schema for category_products.
type CategoryProductsInput struct {
	Slug string `json:"slug,omitempty" jsonschema:"category slug"`
	ID   int    `json:"id,omitempty" jsonschema:"category ID, used when no slug is given"`
}

// CategoryProducts is the output of category_products.
type CategoryProducts struct {
	Category *model.Category `json:"category"`
	Products []ProductCard   `json:"products"`
	Notice   string          `json:"notice,omitempty"`
}

// ListPaymentMethodsInput is the input schema for list_payment_methods.
type ListPaymentMethodsInput struct{}

// PaymentMethodList is the output of list_payment_methods.
type PaymentMethodList struct {
	Methods  []model.PaymentMethod `json:"methods"`
	Default  string                `json:"default"`
	Degraded bool                  `json:"degraded"`
	Message  string                `json:"message,omitempty"`
}

// QuoteShippingInput is the input schema for quote_shipping.
type QuoteShippingInput struct {
	Subtotal string `json:"subtotal" jsonschema:"cart subtotal as a decimal string"`
}

// ShippingQuote is the output of quote_shipping. Amounts are formatted.
type ShippingQuote struct {
	Subtotal          string `json:"subtotal"`
	Shipping          string `json:"shipping"`
	Total             string `json:"total"`
	FreeShipping      bool   `json:"free_shipping"`
	UntilFreeShipping string `json:"until_free_shipping,omitempty"`
}

// NewMCPServer creates an MCP server with the catalog tools registered.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: h.version,
		},
		&mcp.ServerOptions{
			Instructions: "Storefront catalog. Use these tools to browse products and categories, " +
				"list the payment methods offered at checkout, and quote shipping for a subtotal.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search the catalog by text, category slug, filter (sale, featured, new), sort and price range. Returns 20 products per page.",
	}, h.mcpSearchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get one product by slug or ID, with up to 4 related products from its category.",
	}, h.mcpGetProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List non-empty product categories, most populated first.",
	}, h.mcpListCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_products",
		Description: "Newest products of one category, given by slug or ID.",
	}, h.mcpCategoryProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_payment_methods",
		Description: "List the payment methods offered at checkout, in display order.",
	}, h.mcpListPaymentMethods)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quote_shipping",
		Description: "Quote shipping and total for a cart subtotal. Shipping is free from 50 000 MRU.",
	}, h.mcpQuoteShipping)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpSearchProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchProductsInput,
) (*mcp.CallToolResult, *ProductList, error) {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("search", input.Query)
	set("category", input.Category)
	set("filter", input.Filter)
	set("sort", input.Sort)
	if input.Page > 0 {
		params.Set("page", strconv.Itoa(input.Page))
	}
	if input.PriceMin > 0 {
		params.Set("price_min", strconv.Itoa(input.PriceMin))
	}
	if input.PriceMax > 0 {
		params.Set("price_max", strconv.Itoa(input.PriceMax))
	}
	intent := catalog.ParseIntent(params)

	res := h.catalog.SearchCatalog(ctx, intent)
	out := &ProductList{
		Products: h.cards(res.Data),
		Page:     intent.Page,
		HasMore:  res.Success && len(res.Data) == catalog.PageSize,
		Notice:   res.Notice(),
	}
	return nil, out, nil
}

func (h *Handler) mcpGetProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, *ProductDetail, error) {
	var product model.Result[*model.Product]
	switch {
	case input.Slug != "":
		product = h.catalog.GetProductBySlug(ctx, input.Slug)
	case input.ID > 0:
		product = h.catalog.GetProductByID(ctx, input.ID)
	default:
		return nil, nil, fmt.Errorf("slug or id is required")
	}
	if !product.Success {
		return nil, nil, errors.New(product.Message)
	}
	if product.Data == nil {
		return nil, nil, h.mcpError(model.NewNotFoundError("product"))
	}

	p := product.Data
	related := h.catalog.RelatedProducts(ctx, p, catalog.RelatedLimit)
	categories := p.Categories
	if categories == nil {
		categories = []model.CategoryRef{}
	}
	return nil, &ProductDetail{
		Product:     h.card(p),
		Description: p.Description,
		Images:      pricing.ProductImages(p),
		Categories:  categories,
		Related:     h.cards(related.Data),
	}, nil
}

func (h *Handler) mcpListCategories(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListCategoriesInput,
) (*mcp.CallToolResult, *CategoryList, error) {
	res := h.catalog.ListCategories(ctx)
	if !res.Success {
		return nil, nil, errors.New(res.Message)
	}
	return nil, &CategoryList{Categories: res.Data}, nil
}

func (h *Handler) mcpCategoryProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CategoryProductsInput,
) (*mcp.CallToolResult, *CategoryProducts, error) {
	var (
		category *model.Category
		found    bool
	)
	switch {
	case input.Slug != "":
		category, found = h.catalog.CategoryBySlug(ctx, input.Slug)
	case input.ID > 0:
		category, found = h.catalog.CategoryByID(ctx, input.ID)
	default:
		return nil, nil, fmt.Errorf("slug or id is required")
	}
	if !found {
		return nil, nil, h.mcpError(model.NewNotFoundError("category"))
	}

	res := h.catalog.ProductsByCategory(ctx, category.ID, catalog.CategoryLimit)
	return nil, &CategoryProducts{
		Category: category,
		Products: h.cards(res.Data),
		Notice:   res.Notice(),
	}, nil
}

func (h *Handler) mcpListPaymentMethods(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListPaymentMethodsInput,
) (*mcp.CallToolResult, *PaymentMethodList, error) {
	methods := h.payments.EnabledMethods(ctx)
	return nil, &PaymentMethodList{
		Methods:  methods.Methods,
		Default:  payment.DefaultMethod(methods.Methods),
		Degraded: methods.Degraded,
		Message:  methods.Message,
	}, nil
}

func (h *Handler) mcpQuoteShipping(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input QuoteShippingInput,
) (*mcp.CallToolResult, *ShippingQuote, error) {
	subtotal, ok := model.ParseAmount(input.Subtotal)
	if !ok || subtotal.IsNegative() {
		return nil, nil, h.mcpError(model.NewValidationError("subtotal", "must be a non-negative decimal"))
	}

	t := checkout.Quote(subtotal)
	out := &ShippingQuote{
		Subtotal:     pricing.FormatAmount(t.Subtotal, h.currency),
		Shipping:     pricing.FormatAmount(t.Shipping, h.currency),
		Total:        pricing.FormatAmount(t.Total, h.currency),
		FreeShipping: t.FreeShipping,
	}
	if !t.FreeShipping {
		out.UntilFreeShipping = pricing.FormatAmount(t.UntilFreeShipping, h.currency)
	}
	return nil, out, nil
}

// card summarizes a product with display prices.
func (h *Handler) card(p *model.Product) ProductCard {
	c := ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    pricing.FormatAmount(pricing.EffectivePrice(p), h.currency),
		Discount: pricing.DiscountPercentage(p),
		Image:    pricing.ProductImage(p),
		InStock:  p.InStock(),
		Stock:    pricing.StockNotice(p),
		Colors:   pricing.ColorOptions(p),
	}
	if pricing.IsOnSale(p) {
		c.RegularPrice = pricing.FormatPrice(p.RegularPrice, h.currency)
	}
	return c
}

func (h *Handler) cards(products []model.Product) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for i := range products {
		out = append(out, h.card(&products[i]))
	}
	return out
}

// mcpError converts catalog errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
