// Package woocommerce implements the catalog platform boundary for WooCommerce
// stores using the REST API v3. All WooCommerce-specific types, transforms,
// and HTTP client logic live here.
package woocommerce

// === WooCommerce API Response Types ===

// WooProduct represents a product from GET /products.
// Prices are decimal strings ("12500", "99.90"); sale_price is "" when unset.
type WooProduct struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Permalink        string           `json:"permalink"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	Featured         bool             `json:"featured"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	SKU              string           `json:"sku"`
	Price            string           `json:"price"`
	RegularPrice     string           `json:"regular_price"`
	SalePrice        string           `json:"sale_price"`
	OnSale           bool             `json:"on_sale"`
	ManageStock      bool             `json:"manage_stock"`
	StockQuantity    *int             `json:"stock_quantity"`
	StockStatus      string           `json:"stock_status"`
	DateCreated      string           `json:"date_created"`
	Categories       []WooCategoryRef `json:"categories"`
	Images           []WooImage       `json:"images"`
	Attributes       []WooAttribute   `json:"attributes"`
}

// WooCategoryRef is the category stub embedded in a product.
type WooCategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WooImage represents a product or category image.
type WooImage struct {
	ID   int    `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name"`
	Alt  string `json:"alt"`
}

// WooAttribute represents a product attribute with its options.
type WooAttribute struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// WooCategory represents a category from GET /products/categories.
type WooCategory struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Parent      int       `json:"parent"`
	Description string    `json:"description"`
	Display     string    `json:"display"`
	Image       *WooImage `json:"image"`
	MenuOrder   int       `json:"menu_order"`
	Count       int       `json:"count"`
}

// WooPaymentGateway represents a gateway from GET /payment_gateways.
// Settings values are strings for text fields and arrays for multiselects.
type WooPaymentGateway struct {
	ID                string                       `json:"id"`
	Title             string                       `json:"title"`
	Description       string                       `json:"description"`
	Order             any                          `json:"order"` // number, or "" when unset
	Enabled           bool                         `json:"enabled"`
	MethodTitle       string                       `json:"method_title"`
	MethodDescription string                       `json:"method_description"`
	MethodSupports    []string                     `json:"method_supports"`
	Settings          map[string]WooGatewaySetting `json:"settings"`
}

// WooGatewaySetting is one entry of a gateway's settings map.
type WooGatewaySetting struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Value   any    `json:"value"`
	Default any    `json:"default"`
}

// WooOrder represents an order from POST /orders.
type WooOrder struct {
	ID                 int            `json:"id"`
	Number             string         `json:"number"`
	OrderKey           string         `json:"order_key"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	DateCreated        string         `json:"date_created"`
	Total              string         `json:"total"`
	ShippingTotal      string         `json:"shipping_total"`
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	Billing            WooAddress     `json:"billing"`
	LineItems          []WooOrderLine `json:"line_items"`
	MetaData           []WooMeta      `json:"meta_data"`
}

// WooOrderLine is a line item of an order response.
type WooOrderLine struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Total     string  `json:"total"`
	Price     float64 `json:"price"` // the orders API reports unit price as a number
}

// WooSystemStatus is the subset of GET /system_status used for the
// startup version probe.
type WooSystemStatus struct {
	Environment struct {
		Version   string `json:"version"`
		WPVersion string `json:"wp_version"`
		SiteURL   string `json:"site_url"`
	} `json:"environment"`
	Settings struct {
		Currency string `json:"currency"`
	} `json:"settings"`
}

// === WooCommerce API Request Types ===

// WooOrderRequest is the payload for POST /orders.
type WooOrderRequest struct {
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodTitle string             `json:"payment_method_title"`
	SetPaid            bool               `json:"set_paid"`
	Status             string             `json:"status,omitempty"`
	Billing            WooAddress         `json:"billing"`
	Shipping           WooAddress         `json:"shipping"`
	LineItems          []WooOrderLineItem `json:"line_items"`
	ShippingLines      []WooShippingLine  `json:"shipping_lines,omitempty"`
	CustomerNote       string             `json:"customer_note,omitempty"`
	MetaData           []WooMeta          `json:"meta_data,omitempty"`
}

// WooOrderLineItem is a line item in an order creation request.
type WooOrderLineItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// WooShippingLine is a flat shipping charge on an order.
type WooShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// WooMeta is an order meta entry.
type WooMeta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// WooAddress represents a WooCommerce billing or shipping address.
type WooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// WooErrorResponse represents a WooCommerce API error.
type WooErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}
