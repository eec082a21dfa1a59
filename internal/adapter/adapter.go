// Package adapter defines the interfaces between the storefront and the
// commerce platform that owns catalog, payment, and order data.
package adapter

import (
	"context"

	"storefront/internal/model"
)

// Store abstracts the catalog platform's read operations.
// Each platform provides its own implementation; today that is WooCommerce.
//
// Implementations return (value, error) with *model.APIError carrying the
// platform status. The catalog service turns these into result envelopes.
type Store interface {
	// ListProducts returns one page of products for an already translated query.
	ListProducts(ctx context.Context, q model.ProductQuery) ([]model.Product, error)

	// ListCategories returns the full snapshot of non-empty categories,
	// sorted by descending product count.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// GetProduct fetches a single product by platform identifier.
	GetProduct(ctx context.Context, id int) (*model.Product, error)

	// ListPaymentGateways returns every configured gateway, enabled or not.
	ListPaymentGateways(ctx context.Context) ([]model.PaymentGateway, error)

	// CheckConnection probes the platform with minimal reads.
	CheckConnection(ctx context.Context) (*model.ConnectionStatus, error)
}

// OrderGateway is the order-creation endpoint. Only its payload contract
// matters to checkout; order lifecycle stays with the platform.
type OrderGateway interface {
	CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error)
}
