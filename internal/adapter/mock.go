package adapter

import (
	"context"
	"sync"

	"storefront/internal/model"
)

// Mock implements Store and OrderGateway for testing.
// Each method can be configured via function fields; calls are counted so
// tests can assert that no platform call happened.
type Mock struct {
	ListProductsFunc        func(ctx context.Context, q model.ProductQuery) ([]model.Product, error)
	ListCategoriesFunc      func(ctx context.Context) ([]model.Category, error)
	GetProductFunc          func(ctx context.Context, id int) (*model.Product, error)
	ListPaymentGatewaysFunc func(ctx context.Context) ([]model.PaymentGateway, error)
	CheckConnectionFunc     func(ctx context.Context) (*model.ConnectionStatus, error)
	CreateOrderFunc         func(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *Mock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *Mock) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// ListProducts calls the configured ListProductsFunc or returns no products.
func (m *Mock) ListProducts(ctx context.Context, q model.ProductQuery) ([]model.Product, error) {
	m.record("ListProducts")
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, q)
	}
	return []model.Product{}, nil
}

// ListCategories calls the configured ListCategoriesFunc or returns no categories.
func (m *Mock) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.record("ListCategories")
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return []model.Category{}, nil
}

// GetProduct calls the configured GetProductFunc or returns not found.
func (m *Mock) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	m.record("GetProduct")
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("product")
}

// ListPaymentGateways calls the configured ListPaymentGatewaysFunc or returns no gateways.
func (m *Mock) ListPaymentGateways(ctx context.Context) ([]model.PaymentGateway, error) {
	m.record("ListPaymentGateways")
	if m.ListPaymentGatewaysFunc != nil {
		return m.ListPaymentGatewaysFunc(ctx)
	}
	return []model.PaymentGateway{}, nil
}

// CheckConnection calls the configured CheckConnectionFunc or reports an empty store.
func (m *Mock) CheckConnection(ctx context.Context) (*model.ConnectionStatus, error) {
	m.record("CheckConnection")
	if m.CheckConnectionFunc != nil {
		return m.CheckConnectionFunc(ctx)
	}
	return &model.ConnectionStatus{FirstCategory: "Aucune"}, nil
}

// CreateOrder calls the configured CreateOrderFunc or returns an error.
func (m *Mock) CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	m.record("CreateOrder")
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, sub)
	}
	return nil, model.NewInternalError(nil)
}

// Verify Mock implements both interfaces at compile time.
var (
	_ Store        = (*Mock)(nil)
	_ OrderGateway = (*Mock)(nil)
)
