// Package model defines the storefront's domain types: catalog projections of
// the commerce platform, the result envelope, order payloads, and errors.
package model

// === Catalog Types ===

// Product is the storefront's read-only projection of a platform product.
// Price fields are decimal strings exactly as the platform sends them;
// parse with ParseAmount before doing arithmetic.
type Product struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Permalink        string        `json:"permalink,omitempty"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	SKU              string        `json:"sku,omitempty"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	OnSale           bool          `json:"on_sale"`
	Featured         bool          `json:"featured"`
	StockStatus      string        `json:"stock_status"`
	StockQuantity    *int          `json:"stock_quantity"`
	ManageStock      bool          `json:"manage_stock"`
	Categories       []CategoryRef `json:"categories"`
	Images           []Image       `json:"images"`
	Attributes       []Attribute   `json:"attributes"`
	DateCreated      string        `json:"date_created,omitempty"`
}

// Stock statuses reported by the platform.
const (
	StockInStock     = "instock"
	StockOutOfStock  = "outofstock"
	StockOnBackorder = "onbackorder"
)

// InStock reports whether the product can currently be added to a cart.
func (p *Product) InStock() bool {
	return p.StockStatus != StockOutOfStock
}

// PrimaryCategory returns the first category reference, or nil.
func (p *Product) PrimaryCategory() *CategoryRef {
	if len(p.Categories) == 0 {
		return nil
	}
	return &p.Categories[0]
}

// CategoryRef is the abbreviated category embedded in a product.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Image is a product image.
type Image struct {
	ID  int    `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Attribute is a named product attribute with its option values,
// e.g. {Name: "Couleur", Options: ["Noir", "Blanc"]}.
type Attribute struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Category is a product category. Slugs are unique within the active set;
// the ID is what the product search endpoint filters on.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int    `json:"parent"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
	Image       *Image `json:"image,omitempty"`
}

// === Payment Types ===

// PaymentGateway is a gateway configuration as reported by the platform.
// Settings are kept raw; see PaymentMethod for the normalized projection.
type PaymentGateway struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	Order             int                       `json:"order"`
	Enabled           bool                      `json:"enabled"`
	MethodTitle       string                    `json:"method_title"`
	MethodDescription string                    `json:"method_description"`
	MethodSupports    []string                  `json:"method_supports"`
	Settings          map[string]GatewaySetting `json:"settings"`
}

// GatewaySetting is one entry of a gateway's settings map. The platform
// sends Value as a string for text settings and an array for multiselects.
type GatewaySetting struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// PaymentMethod is the stable shape the checkout consumes. Nested fields are
// never absent: missing strings are "" and missing lists are empty.
type PaymentMethod struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	MethodTitle       string          `json:"method_title"`
	MethodDescription string          `json:"method_description"`
	Enabled           bool            `json:"enabled"`
	Supports          []string        `json:"supports"`
	Settings          PaymentSettings `json:"settings"`
}

// PaymentSettings holds the subset of gateway settings surfaced to buyers.
type PaymentSettings struct {
	Instructions     string   `json:"instructions"`
	EnableForMethods []string `json:"enable_for_methods"`
}

// ConnectionStatus is the outcome of a store connectivity probe.
type ConnectionStatus struct {
	ProductsCount   int    `json:"productsCount"`
	CategoriesCount int    `json:"categoriesCount"`
	FirstCategory   string `json:"firstCategory"`
}
