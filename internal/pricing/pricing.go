// Package pricing holds pure helpers for displaying product prices,
// discounts, images, and color swatches. Nothing here calls the network.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"storefront/internal/model"
)

// DefaultCurrency is appended when the caller passes no currency code.
const DefaultCurrency = "MRU"

// PlaceholderImage is shown for products without images.
const PlaceholderImage = "/placeholder-product.jpg"

// lowStockThreshold is the largest remaining quantity flagged as limited.
const lowStockThreshold = 5

var frenchPrinter = message.NewPrinter(language.French)

// FormatPrice renders a platform price string with French digit grouping
// followed by the currency code: "12500" → "12 500 MRU", "99.5" → "99,5 MRU".
// Unparseable input renders as "0 MRU".
func FormatPrice(amount, currency string) string {
	d, ok := model.ParseAmount(amount)
	if !ok {
		return "0 " + DefaultCurrency
	}
	return FormatAmount(d, currency)
}

// FormatAmount is FormatPrice for an already parsed amount.
func FormatAmount(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	f := d.Round(3).InexactFloat64()
	return frenchPrinter.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(3))) + " " + currency
}

// IsOnSale reports whether the platform flags the product on sale and a sale
// price is actually set.
func IsOnSale(p *model.Product) bool {
	return p != nil && p.OnSale && p.SalePrice != ""
}

// DiscountPercentage returns the rounded percentage saved by the sale price.
// Returns 0 when the product is not on sale or either price is unusable.
func DiscountPercentage(p *model.Product) int {
	if !IsOnSale(p) {
		return 0
	}
	regular, ok := model.ParseAmount(p.RegularPrice)
	if !ok || regular.IsZero() {
		return 0
	}
	sale, ok := model.ParseAmount(p.SalePrice)
	if !ok {
		return 0
	}

	pct := regular.Sub(sale).Div(regular).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// EffectivePrice is the price a buyer pays today: the sale price while on
// sale, otherwise the regular price, falling back to the catalog price.
func EffectivePrice(p *model.Product) decimal.Decimal {
	if IsOnSale(p) {
		if d, ok := model.ParseAmount(p.SalePrice); ok {
			return d
		}
	}
	if d, ok := model.ParseAmount(p.RegularPrice); ok {
		return d
	}
	return model.AmountOrZero(p.Price)
}

// ProductImage returns the first image URL or the placeholder.
func ProductImage(p *model.Product) string {
	if p == nil || len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0].Src
}

// ProductImages returns every image URL in display order.
func ProductImages(p *model.Product) []string {
	if p == nil {
		return nil
	}
	srcs := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		srcs = append(srcs, img.Src)
	}
	return srcs
}

// StockNotice returns a short availability message, or "" when nothing
// needs saying.
func StockNotice(p *model.Product) string {
	if !p.InStock() {
		return "Rupture de stock"
	}
	if p.ManageStock && p.StockQuantity != nil {
		if q := *p.StockQuantity; q > 0 && q <= lowStockThreshold {
			return frenchPrinter.Sprintf("Plus que %d en stock", q)
		}
	}
	return ""
}

// Swatch is a color option paired with its display color.
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ColorOptions returns the swatches of the first attribute named like a
// color ("Couleur", "Color"), or nil.
func ColorOptions(p *model.Product) []Swatch {
	for _, attr := range p.Attributes {
		name := strings.ToLower(attr.Name)
		if !strings.Contains(name, "couleur") && !strings.Contains(name, "color") {
			continue
		}
		swatches := make([]Swatch, 0, len(attr.Options))
		for _, opt := range attr.Options {
			swatches = append(swatches, Swatch{Name: opt, Hex: ColorHex(opt)})
		}
		return swatches
	}
	return nil
}
