package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/payment"
)

// productNotFound is the envelope message for an unknown product slug or id.
const productNotFound = "Produit introuvable"

// handleCatalog serves the catalog listing for the URL vocabulary.
// GET /api/catalog?page&category&filter&sort&search&price_min&price_max
//
// Always 200: a failed section is reported through the page's notice.
func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, trace := catalog.WithCacheTrace(r.Context())
	page := h.catalog.LoadCatalogPage(ctx, r.URL.Query())
	h.setCacheStatus(w, trace)
	h.writeJSON(w, http.StatusOK, page)
}

// handleListProducts returns the product envelope for the same vocabulary.
// GET /api/products
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, trace := catalog.WithCacheTrace(r.Context())
	res := h.catalog.SearchCatalog(ctx, catalog.ParseIntent(r.URL.Query()))
	h.setCacheStatus(w, trace)
	writeResult(h, w, res)
}

// handleProductPage returns a product with its related products.
// GET /api/products/{slug}
func (h *Handler) handleProductPage(w http.ResponseWriter, r *http.Request) {
	res := h.catalog.LoadProductPage(r.Context(), r.PathValue("slug"))
	if res.Success && res.Data == nil {
		h.writeJSON(w, http.StatusNotFound, model.Result[*catalog.ProductPage]{Message: productNotFound})
		return
	}
	writeResult(h, w, res)
}

// handleProductByID returns one product by platform identifier.
// GET /api/products/id/{id}
func (h *Handler) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res := h.catalog.GetProductByID(r.Context(), id)
	if res.Success && res.Data == nil {
		h.writeJSON(w, http.StatusNotFound, model.Result[*model.Product]{Message: productNotFound})
		return
	}
	writeResult(h, w, res)
}

// handleCategories returns the category snapshot.
// GET /api/categories
func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, trace := catalog.WithCacheTrace(r.Context())
	res := h.catalog.ListCategories(ctx)
	h.setCacheStatus(w, trace)
	writeResult(h, w, res)
}

// handleCategoryProducts lists the newest products of a category.
// GET /api/categories/{slug}/products
func (h *Handler) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, trace := catalog.WithCacheTrace(r.Context())
	res := h.catalog.ProductsByCategorySlug(ctx, r.PathValue("slug"), catalog.CategoryLimit)
	h.setCacheStatus(w, trace)
	writeResult(h, w, res)
}

// handleHome returns the home page sections. Always 200, like the catalog.
// GET /api/home
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.LoadHomePage(r.Context()))
}

// handleSearch is the quick search behind the search box.
// GET /api/search?q=
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.writeError(w, model.NewValidationError("q", "is required"))
		return
	}
	writeResult(h, w, h.catalog.SearchProducts(r.Context(), q, catalog.SearchLimit))
}

// paymentMethodsResponse is the checkout's view of the payment methods.
type paymentMethodsResponse struct {
	payment.Methods
	Default string `json:"default"`
}

// handlePaymentMethods returns the enabled payment methods. A degraded
// (cash on delivery only) list still answers 200.
// GET /api/payment-methods
func (h *Handler) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods := h.payments.EnabledMethods(r.Context())
	h.writeJSON(w, http.StatusOK, paymentMethodsResponse{
		Methods: methods,
		Default: payment.DefaultMethod(methods.Methods),
	})
}

// pathID parses the {id} path value as a positive platform identifier.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
