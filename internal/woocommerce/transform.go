package woocommerce

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// Billing country when the buyer leaves it blank.
const defaultCountry = "MR"

// Meta key carrying the storefront's submission reference on created orders.
const referenceMetaKey = "_storefront_reference"

// ProductToModel converts a WooCommerce product to the storefront projection.
// Nil slices become empty so presentation never sees null collections.
func ProductToModel(p *WooProduct) *model.Product {
	if p == nil {
		return nil
	}

	out := &model.Product{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Permalink:        p.Permalink,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Price:            strings.TrimSpace(p.Price),
		RegularPrice:     strings.TrimSpace(p.RegularPrice),
		SalePrice:        strings.TrimSpace(p.SalePrice),
		OnSale:           p.OnSale,
		Featured:         p.Featured,
		StockStatus:      p.StockStatus,
		StockQuantity:    p.StockQuantity,
		ManageStock:      p.ManageStock,
		DateCreated:      p.DateCreated,
		Categories:       make([]model.CategoryRef, 0, len(p.Categories)),
		Images:           make([]model.Image, 0, len(p.Images)),
		Attributes:       make([]model.Attribute, 0, len(p.Attributes)),
	}
	if out.StockStatus == "" {
		out.StockStatus = model.StockInStock
	}

	for _, c := range p.Categories {
		out.Categories = append(out.Categories, model.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, imageToModel(img))
	}
	for _, a := range p.Attributes {
		opts := a.Options
		if opts == nil {
			opts = []string{}
		}
		out.Attributes = append(out.Attributes, model.Attribute{ID: a.ID, Name: a.Name, Options: opts})
	}
	return out
}

// ProductsToModel converts a product page, preserving platform order.
func ProductsToModel(products []WooProduct) []model.Product {
	out := make([]model.Product, 0, len(products))
	for i := range products {
		out = append(out, *ProductToModel(&products[i]))
	}
	return out
}

// CategoriesToModel converts the category snapshot, preserving platform order.
func CategoriesToModel(categories []WooCategory) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		cat := model.Category{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Parent:      c.Parent,
			Description: c.Description,
			Count:       c.Count,
		}
		if c.Image != nil && c.Image.Src != "" {
			img := imageToModel(*c.Image)
			cat.Image = &img
		}
		out = append(out, cat)
	}
	return out
}

// GatewaysToModel converts gateway configurations. No filtering happens here;
// the payment normalizer decides what buyers see.
func GatewaysToModel(gateways []WooPaymentGateway) []model.PaymentGateway {
	out := make([]model.PaymentGateway, 0, len(gateways))
	for _, g := range gateways {
		gw := model.PaymentGateway{
			ID:                g.ID,
			Title:             g.Title,
			Description:       g.Description,
			Order:             gatewayOrder(g.Order),
			Enabled:           g.Enabled,
			MethodTitle:       g.MethodTitle,
			MethodDescription: g.MethodDescription,
			MethodSupports:    g.MethodSupports,
			Settings:          make(map[string]model.GatewaySetting, len(g.Settings)),
		}
		for key, s := range g.Settings {
			gw.Settings[key] = model.GatewaySetting{ID: s.ID, Label: s.Label, Type: s.Type, Value: s.Value}
		}
		out = append(out, gw)
	}
	return out
}

// gatewayOrder reads the sort position, which the platform sends as a number
// or as "" for gateways never reordered.
func gatewayOrder(v any) int {
	switch o := v.(type) {
	case float64:
		return int(o)
	case string:
		n, err := strconv.Atoi(o)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func imageToModel(img WooImage) model.Image {
	alt := img.Alt
	if alt == "" {
		alt = img.Name
	}
	return model.Image{ID: img.ID, Src: img.Src, Alt: alt}
}

// OrderRequestFromSubmission maps an order submission to POST /orders.
// Shipping is charged as a flat line so the platform total matches the
// storefront quote; the reference is stored as order meta.
func OrderRequestFromSubmission(sub *model.OrderSubmission) *WooOrderRequest {
	ci := sub.CustomerInfo
	billing := WooAddress{
		FirstName: strings.TrimSpace(ci.FirstName),
		LastName:  strings.TrimSpace(ci.LastName),
		Address1:  strings.TrimSpace(ci.Address),
		City:      strings.TrimSpace(ci.City),
		Postcode:  strings.TrimSpace(ci.PostalCode),
		Country:   strings.ToUpper(strings.TrimSpace(ci.Country)),
		Email:     strings.TrimSpace(ci.Email),
		Phone:     strings.TrimSpace(ci.Phone),
	}
	if billing.Country == "" {
		billing.Country = defaultCountry
	}
	shipping := billing
	shipping.Email = ""

	req := &WooOrderRequest{
		PaymentMethod:      sub.PaymentMethod,
		PaymentMethodTitle: sub.PaymentMethodTitle,
		Billing:            billing,
		Shipping:           shipping,
		LineItems:          make([]WooOrderLineItem, 0, len(sub.Items)),
		ShippingLines: []WooShippingLine{{
			MethodID:    "flat_rate",
			MethodTitle: "Livraison",
			Total:       sub.Shipping.StringFixed(2),
		}},
		CustomerNote: strings.TrimSpace(ci.Notes),
	}
	if sub.Shipping.IsZero() {
		req.ShippingLines[0].MethodID = "free_shipping"
		req.ShippingLines[0].MethodTitle = "Livraison gratuite"
	}
	for _, item := range sub.Items {
		req.LineItems = append(req.LineItems, WooOrderLineItem{ProductID: item.ID, Quantity: item.Quantity})
	}
	if sub.Reference != "" {
		req.MetaData = []WooMeta{{Key: referenceMetaKey, Value: sub.Reference}}
	}
	return req
}

// OrderToModel converts a created order to the confirmation record.
func OrderToModel(o *WooOrder) *model.Order {
	if o == nil {
		return nil
	}

	out := &model.Order{
		ID:                 o.ID,
		Number:             o.Number,
		Status:             o.Status,
		Currency:           o.Currency,
		Total:              o.Total,
		ShippingTotal:      o.ShippingTotal,
		PaymentMethod:      o.PaymentMethod,
		PaymentMethodTitle: o.PaymentMethodTitle,
		DateCreated:        o.DateCreated,
	}
	if out.Number == "" {
		out.Number = strconv.Itoa(o.ID)
	}
	for _, m := range o.MetaData {
		if ref, ok := m.Value.(string); ok && m.Key == referenceMetaKey {
			out.Reference = ref
		}
	}
	for _, line := range o.LineItems {
		price := decimal.NewFromFloat(line.Price)
		out.Items = append(out.Items, model.OrderItem{
			ID:        line.ProductID,
			Name:      line.Name,
			Price:     price,
			Quantity:  line.Quantity,
			LineTotal: model.AmountOrZero(line.Total),
		})
	}
	return out
}
