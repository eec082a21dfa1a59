package woocommerce

import (
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

func TestProductToModelDefaults(t *testing.T) {
	got := ProductToModel(&WooProduct{ID: 7, Name: "Sac", Price: " 4200 "})

	if got.Categories == nil || got.Images == nil || got.Attributes == nil {
		t.Error("nil collections should become empty slices")
	}
	if got.StockStatus != model.StockInStock {
		t.Errorf("StockStatus = %q, want %q", got.StockStatus, model.StockInStock)
	}
	if got.Price != "4200" {
		t.Errorf("Price = %q, want trimmed", got.Price)
	}
	if ProductToModel(nil) != nil {
		t.Error("ProductToModel(nil) should be nil")
	}
}

func TestProductToModelAttributes(t *testing.T) {
	got := ProductToModel(&WooProduct{
		Attributes: []WooAttribute{{ID: 1, Name: "Couleur", Options: nil}},
	})
	if got.Attributes[0].Options == nil {
		t.Error("attribute options should never be nil")
	}
}

func TestGatewayOrder(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(3), 3},
		{"4", 4},
		{"", 0},
		{nil, 0},
		{true, 0},
	}

	for _, tt := range tests {
		if got := gatewayOrder(tt.in); got != tt.want {
			t.Errorf("gatewayOrder(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOrderRequestFromSubmission(t *testing.T) {
	sub := &model.OrderSubmission{
		Reference: "9f0c",
		CustomerInfo: model.CustomerInfo{
			FirstName: " Awa ", LastName: "Diallo", Email: "awa@example.com",
			Phone: "22 22 22 22", Address: "Rue 42", City: "Nouakchott",
			PostalCode: "", Notes: "Sonner deux fois",
		},
		Items: []model.OrderItem{
			{ID: 42, Quantity: 2},
			{ID: 43, Quantity: 1},
		},
		PaymentMethod:      "cod",
		PaymentMethodTitle: "Paiement à la livraison",
		Subtotal:           decimal.NewFromInt(60000),
		Shipping:           decimal.Zero,
		Total:              decimal.NewFromInt(60000),
	}

	req := OrderRequestFromSubmission(sub)

	if req.Billing.FirstName != "Awa" {
		t.Errorf("FirstName = %q, want trimmed", req.Billing.FirstName)
	}
	if req.Shipping.Email != "" {
		t.Error("shipping address should not carry the email")
	}
	if req.Shipping.City != "Nouakchott" {
		t.Errorf("shipping city = %q", req.Shipping.City)
	}
	if len(req.LineItems) != 2 || req.LineItems[1].ProductID != 43 {
		t.Errorf("line items = %+v", req.LineItems)
	}
	if req.ShippingLines[0].MethodID != "free_shipping" || req.ShippingLines[0].Total != "0.00" {
		t.Errorf("shipping line = %+v, want free shipping", req.ShippingLines[0])
	}
	if req.CustomerNote != "Sonner deux fois" {
		t.Errorf("CustomerNote = %q", req.CustomerNote)
	}
	if len(req.MetaData) != 1 || req.MetaData[0].Value != "9f0c" {
		t.Errorf("meta = %+v", req.MetaData)
	}
	if req.SetPaid {
		t.Error("orders must not be marked paid by the storefront")
	}
}

func TestOrderToModelNumberFallback(t *testing.T) {
	got := OrderToModel(&WooOrder{ID: 77})
	if got.Number != "77" {
		t.Errorf("Number = %q, want id fallback", got.Number)
	}
}
