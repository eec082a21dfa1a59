// Package handler provides the storefront's HTTP API: catalog envelopes,
// cart and wishlist state, checkout, and the MCP catalog tools.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/adapter"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"
)

// Config holds the handler's dependencies.
type Config struct {
	Catalog  *catalog.Service
	Payments *payment.Normalizer
	Checkout *checkout.Submitter
	Orders   adapter.OrderGateway
	Logger   *slog.Logger

	Currency      string        // display currency code, defaults to MRU
	SecureCookies bool          // mark state cookies Secure (production)
	Timeout       time.Duration // bounds order endpoint calls, defaults to catalog.DefaultTimeout
	Version       string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	catalog  *catalog.Service
	payments *payment.Normalizer
	checkout *checkout.Submitter
	orders   adapter.OrderGateway
	logger   *slog.Logger

	currency      string
	secureCookies bool
	timeout       time.Duration
	version       string
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		catalog:       cfg.Catalog,
		payments:      cfg.Payments,
		checkout:      cfg.Checkout,
		orders:        cfg.Orders,
		logger:        cfg.Logger,
		currency:      cfg.Currency,
		secureCookies: cfg.SecureCookies,
		timeout:       cfg.Timeout,
		version:       cfg.Version,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.currency == "" {
		h.currency = pricing.DefaultCurrency
	}
	if h.timeout <= 0 {
		h.timeout = catalog.DefaultTimeout
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Catalog
	mux.HandleFunc("GET /api/catalog", h.handleCatalog)
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.handleProductPage)
	mux.HandleFunc("GET /api/products/id/{id}", h.handleProductByID)
	mux.HandleFunc("GET /api/categories", h.handleCategories)
	mux.HandleFunc("GET /api/categories/{slug}/products", h.handleCategoryProducts)
	mux.HandleFunc("GET /api/home", h.handleHome)
	mux.HandleFunc("GET /api/search", h.handleSearch)
	mux.HandleFunc("GET /api/payment-methods", h.handlePaymentMethods)

	// Client-held state
	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.handleSetCartQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)
	mux.HandleFunc("GET /api/wishlist", h.handleGetWishlist)
	mux.HandleFunc("POST /api/wishlist/items", h.handleAddWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist/items/{id}", h.handleRemoveWishlistItem)
	mux.HandleFunc("POST /api/wishlist/items/{id}/toggle", h.handleToggleWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist", h.handleClearWishlist)

	// Checkout and the order endpoint
	mux.HandleFunc("GET /api/checkout", h.handleGetCheckout)
	mux.HandleFunc("POST /api/checkout", h.handleSubmitCheckout)
	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /readyz", h.handleReady)
}

// healthResponse is the JSON structure for health check responses.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.version})
}

// handleReady probes the store: one product and a few categories must load.
// GET /readyz
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	res := h.catalog.CheckConnection(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, res)
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = model.NewInternalError(err)
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeResult sends an envelope. Failed envelopes answer 502: the catalog
// platform, not the caller, is at fault.
func writeResult[T any](h *Handler, w http.ResponseWriter, res model.Result[T]) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	h.writeJSON(w, status, res)
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
