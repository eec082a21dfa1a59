package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/adapter"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/transport"
)

// =============================================================================
// AUTHENTICATION
// =============================================================================
//
// The REST API v3 accepts the consumer key/secret pair either through HTTP
// Basic auth or as query parameters. Basic auth is stripped by many shared
// hosts (PHP CGI drops the Authorization header), so credentials travel as
// consumer_key/consumer_secret query parameters. Stores must be served over
// HTTPS for this to be safe; plain http:// is accepted for local stores.
// =============================================================================

// restAPIPath is the base path for WooCommerce REST API v3 endpoints.
const restAPIPath = "/wp-json/wc/v3"

// platformName labels platform errors and log lines.
const platformName = "WooCommerce"

const (
	// categorySnapshotSize is one page large enough to hold every
	// non-empty category.
	categorySnapshotSize = 100
	maxResponseSize      = 10 << 20
)

// Config holds WooCommerce client configuration.
type Config struct {
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration // bounds each HTTP exchange; default 30s
	Fingerprint    bool          // dial with a Chrome TLS fingerprint
	Metrics        *metrics.Recorder
}

// Client talks to a WooCommerce store's REST API v3.
// Safe for concurrent use; it holds no per-request state.
type Client struct {
	httpClient     *http.Client
	storeURL       string
	consumerKey    string
	consumerSecret string
	metrics        *metrics.Recorder
}

var (
	_ adapter.Store        = (*Client)(nil)
	_ adapter.OrderGateway = (*Client)(nil)
)

// New creates a WooCommerce client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("API credentials are required")
	}
	u, err := url.Parse(cfg.StoreURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, fmt.Errorf("invalid store URL %q", cfg.StoreURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport.New(transport.Options{Timeout: timeout, Fingerprint: cfg.Fingerprint}),
		},
		storeURL:       strings.TrimSuffix(cfg.StoreURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		metrics:        cfg.Metrics,
	}, nil
}

// StoreURL returns the normalized store base URL.
func (c *Client) StoreURL() string {
	return c.storeURL
}

// ListProducts returns one page of products matching q.
func (c *Client) ListProducts(ctx context.Context, q model.ProductQuery) ([]model.Product, error) {
	var products []WooProduct
	if err := c.get(ctx, "list_products", "/products", q.Values(), &products); err != nil {
		return nil, err
	}
	return ProductsToModel(products), nil
}

// ListCategories returns the full snapshot of non-empty categories, most
// populated first.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(categorySnapshotSize))
	params.Set("hide_empty", "true")
	params.Set("orderby", "count")
	params.Set("order", "desc")

	var categories []WooCategory
	if err := c.get(ctx, "list_categories", "/products/categories", params, &categories); err != nil {
		return nil, err
	}
	return CategoriesToModel(categories), nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	if id <= 0 {
		return nil, model.NewValidationError("id", "must be a positive integer")
	}

	var product WooProduct
	if err := c.get(ctx, "get_product", "/products/"+strconv.Itoa(id), nil, &product); err != nil {
		return nil, err
	}
	return ProductToModel(&product), nil
}

// ListPaymentGateways returns every configured gateway, enabled or not.
func (c *Client) ListPaymentGateways(ctx context.Context) ([]model.PaymentGateway, error) {
	var gateways []WooPaymentGateway
	if err := c.get(ctx, "list_payment_gateways", "/payment_gateways", nil, &gateways); err != nil {
		return nil, err
	}
	return GatewaysToModel(gateways), nil
}

// CheckConnection probes the store with one product and five categories.
func (c *Client) CheckConnection(ctx context.Context) (*model.ConnectionStatus, error) {
	var products []WooProduct
	if err := c.get(ctx, "probe_products", "/products", url.Values{"per_page": {"1"}}, &products); err != nil {
		return nil, err
	}
	var categories []WooCategory
	if err := c.get(ctx, "probe_categories", "/products/categories", url.Values{"per_page": {"5"}}, &categories); err != nil {
		return nil, err
	}

	status := &model.ConnectionStatus{
		ProductsCount:   len(products),
		CategoriesCount: len(categories),
		FirstCategory:   "Aucune",
	}
	if len(categories) > 0 {
		status.FirstCategory = categories[0].Name
	}
	return status, nil
}

// CreateOrder posts an order submission to POST /orders.
func (c *Client) CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	if sub == nil || len(sub.Items) == 0 {
		return nil, model.NewValidationError("items", "at least one item required")
	}

	var order WooOrder
	if err := c.post(ctx, "create_order", "/orders", OrderRequestFromSubmission(sub), &order); err != nil {
		return nil, err
	}
	return OrderToModel(&order), nil
}

// userAgent identifies this client to upstream servers.
// Required: WooCommerce CDN/WAF rate-limits requests without User-Agent.
const userAgent = "Storefront/1.0"

// get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, params, nil, out)
}

// post issues an authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", op, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), bodyReader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamCall(ctx, op, 0, time.Since(start))
		return transportError(err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamCall(ctx, op, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return transportError(fmt.Errorf("reading %s response: %w", op, err))
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, respBody, resourceFor(path))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewUpstreamError(platformName, fmt.Errorf("parsing %s response: %w", op, err))
	}
	return nil
}

// endpoint builds the full URL with credentials appended to params.
func (c *Client) endpoint(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("consumer_key", c.consumerKey)
	q.Set("consumer_secret", c.consumerSecret)
	return c.storeURL + restAPIPath + path + "?" + q.Encode()
}

// setHeaders sets headers for WooCommerce REST API requests.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// transportError classifies a failure where no platform response arrived.
func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		apiErr := model.NewTimeoutError(platformName)
		apiErr.Err = fmt.Errorf("%w: %v", model.ErrTimeout, err)
		return apiErr
	}
	return model.NewUpstreamError(platformName, err)
}

// resourceFor names the resource behind a REST path for not-found messages.
func resourceFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/products/categories"):
		return "category"
	case strings.HasPrefix(path, "/products"):
		return "product"
	case strings.HasPrefix(path, "/orders"):
		return "order"
	case strings.HasPrefix(path, "/payment_gateways"):
		return "payment gateway"
	}
	return "resource"
}

// parseErrorResponse converts a WooCommerce error body to an APIError that
// keeps the platform's status and message for envelope derivation.
func parseErrorResponse(statusCode int, body []byte, resource string) error {
	var wcErr WooErrorResponse
	json.Unmarshal(body, &wcErr) // Best effort parse

	switch statusCode {
	case http.StatusNotFound:
		err := model.NewNotFoundError(resource)
		if wcErr.Message != "" {
			err.Message = wcErr.Message
		}
		return err
	case http.StatusUnauthorized, http.StatusForbidden:
		msg := wcErr.Message
		if msg == "" {
			msg = "WooCommerce authentication failed"
		}
		err := model.NewUnauthorizedError(msg)
		err.StatusCode = http.StatusBadGateway
		err.Upstream = statusCode
		return err
	case http.StatusBadRequest:
		msg := wcErr.Message
		if msg == "" {
			msg = "invalid request"
		}
		err := model.NewValidationError("request", msg)
		err.Message = msg
		err.Upstream = statusCode
		return err
	case http.StatusTooManyRequests:
		return model.NewRateLimitError(platformName)
	default:
		return model.NewPlatformError(platformName, statusCode, wcErr.Message)
	}
}
