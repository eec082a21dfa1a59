package model

import "github.com/shopspring/decimal"

// === Order Types ===

// CustomerInfo holds the buyer's contact and delivery fields.
// Everything except PostalCode and Notes is required at checkout.
type CustomerInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"` // ISO 3166-1 alpha-2, defaults to MR
	Notes      string `json:"notes,omitempty"`
}

// OrderItem is one line of the cart snapshot taken at submission time.
type OrderItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderSubmission is the payload posted to the order-creation endpoint.
// Amounts marshal as decimal strings.
type OrderSubmission struct {
	Reference          string          `json:"reference"`
	CustomerInfo       CustomerInfo    `json:"customerInfo"`
	Items              []OrderItem     `json:"items"`
	PaymentMethod      string          `json:"paymentMethod"`
	PaymentMethodTitle string          `json:"paymentMethodTitle"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Shipping           decimal.Decimal `json:"shipping"`
	Total              decimal.Decimal `json:"total"`
}

// Order is the confirmed order record handed back for display.
type Order struct {
	ID                 int         `json:"id"`
	Number             string      `json:"number"`
	Status             string      `json:"status"`
	Currency           string      `json:"currency"`
	Total              string      `json:"total"`
	ShippingTotal      string      `json:"shipping_total"`
	PaymentMethod      string      `json:"payment_method"`
	PaymentMethodTitle string      `json:"payment_method_title"`
	DateCreated        string      `json:"date_created,omitempty"`
	Reference          string      `json:"reference,omitempty"`
	Items              []OrderItem `json:"items,omitempty"`
}

// OrderResponse is the order endpoint's reply.
type OrderResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order,omitempty"`
	Message string `json:"message,omitempty"`
}
