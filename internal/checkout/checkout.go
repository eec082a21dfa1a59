// Package checkout assembles order submissions from the cart, the buyer's
// form, and the offered payment methods, and hands them to the order
// endpoint.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"storefront/internal/adapter"
	"storefront/internal/cart"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"
)

// Shipping policy, in store currency units.
var (
	FreeShippingThreshold = decimal.NewFromInt(50000)
	FlatShippingFee       = decimal.NewFromInt(5000)
)

// unknownMethodTitle labels a submitted method that is not among those offered.
const unknownMethodTitle = "Méthode inconnue"

// ErrEmptyCart is returned when submitting with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrUnavailable is returned when a cart line's product no longer exists in
// the catalog.
var ErrUnavailable = errors.New("product no longer available")

// repriceConcurrency caps parallel product lookups while re-pricing a cart.
const repriceConcurrency = 4

// ProductSource looks up products at their current catalog state.
type ProductSource interface {
	GetProductByID(ctx context.Context, id int) model.Result[*model.Product]
}

// MethodSource lists the payment methods offered at checkout.
type MethodSource interface {
	EnabledMethods(ctx context.Context) payment.Methods
}

// Form is what the buyer enters at checkout.
type Form struct {
	model.CustomerInfo
	PaymentMethod string `json:"paymentMethod"`
}

// ValidationError lists the required fields the buyer left blank.
type ValidationError struct {
	Missing []string `json:"missing"`
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Validate returns the names of missing required fields, in form order,
// followed by paymentMethod when no method is selected. Whitespace-only
// values count as missing.
func Validate(ci model.CustomerInfo, methodID string) []string {
	required := []struct {
		name, value string
	}{
		{"firstName", ci.FirstName},
		{"lastName", ci.LastName},
		{"email", ci.Email},
		{"phone", ci.Phone},
		{"address", ci.Address},
		{"city", ci.City},
		{"paymentMethod", methodID},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"freeShipping"`
	// UntilFreeShipping is how much more qualifies for free shipping; zero once it does.
	UntilFreeShipping decimal.Decimal `json:"untilFreeShipping"`
}

// Quote prices shipping for a subtotal: free from FreeShippingThreshold
// inclusive, FlatShippingFee below it.
func Quote(subtotal decimal.Decimal) Totals {
	t := Totals{Subtotal: subtotal, Shipping: FlatShippingFee, UntilFreeShipping: decimal.Zero}
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		t.Shipping = decimal.Zero
		t.FreeShipping = true
	} else {
		t.UntilFreeShipping = FreeShippingThreshold.Sub(subtotal)
	}
	t.Total = subtotal.Add(t.Shipping)
	return t
}

// Options configures a Submitter.
type Options struct {
	Timeout   time.Duration
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	Reference func() string // defaults to a random UUID
}

// Submitter places orders through an order gateway.
type Submitter struct {
	orders    adapter.OrderGateway
	products  ProductSource
	methods   MethodSource
	timeout   time.Duration
	metrics   *metrics.Recorder
	logger    *slog.Logger
	reference func() string
}

// NewSubmitter creates a submitter posting to orders. Line prices come from
// products and the method title from methods, both read at submission.
func NewSubmitter(orders adapter.OrderGateway, products ProductSource, methods MethodSource, opts Options) *Submitter {
	s := &Submitter{
		orders:    orders,
		products:  products,
		methods:   methods,
		timeout:   opts.Timeout,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		reference: opts.Reference,
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Second
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.reference == nil {
		s.reference = uuid.NewString
	}
	return s
}

// Assemble builds the order submission for the session's cart. It makes no
// network call.
func Assemble(contents cart.Contents, form Form, methods []model.PaymentMethod, reference string) *model.OrderSubmission {
	title := unknownMethodTitle
	if m, ok := payment.Find(methods, form.PaymentMethod); ok {
		title = m.Title
	}
	totals := Quote(contents.Subtotal)
	return &model.OrderSubmission{
		Reference:          reference,
		CustomerInfo:       form.CustomerInfo,
		Items:              contents.Items,
		PaymentMethod:      form.PaymentMethod,
		PaymentMethodTitle: title,
		Subtotal:           totals.Subtotal,
		Shipping:           totals.Shipping,
		Total:              totals.Total,
	}
}

// Reprice replaces the cookie prices of contents with the products' current
// effective prices and recomputes line totals and the subtotal. A product
// the catalog no longer knows yields ErrUnavailable.
func Reprice(ctx context.Context, products ProductSource, contents cart.Contents) (cart.Contents, error) {
	items := make([]model.OrderItem, len(contents.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(repriceConcurrency)
	for i, item := range contents.Items {
		g.Go(func() error {
			res := products.GetProductByID(ctx, item.ID)
			if !res.Success {
				return model.NewPlatformError("catalog platform", 0, res.Message)
			}
			if res.Data == nil {
				return fmt.Errorf("product %d: %w", item.ID, ErrUnavailable)
			}
			item.Price = pricing.EffectivePrice(res.Data)
			item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cart.Contents{}, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return cart.Contents{Items: items, Subtotal: subtotal}, nil
}

// Submit validates the form, re-prices the cart from the catalog,
// assembles the submission, and posts it.
//
// Validation failures return *ValidationError and an empty cart returns
// ErrEmptyCart; neither reaches the network. On success the cart is
// cleared and the confirmed order returned. On rejection or transport
// failure the error is returned and the cart is left as it was.
func (s *Submitter) Submit(ctx context.Context, session *cart.Session, form Form) (*model.Order, error) {
	if !session.Hydrated() {
		return nil, cart.ErrNotHydrated
	}
	if missing := Validate(form.CustomerInfo, form.PaymentMethod); len(missing) > 0 {
		s.metrics.OrderSubmitted(ctx, metrics.OrderInvalid, form.PaymentMethod)
		return nil, &ValidationError{Missing: missing}
	}

	contents := session.CartContents()
	if len(contents.Items) == 0 {
		s.metrics.OrderSubmitted(ctx, metrics.OrderInvalid, form.PaymentMethod)
		return nil, ErrEmptyCart
	}

	contents, err := Reprice(ctx, s.products, contents)
	if err != nil {
		s.metrics.OrderSubmitted(ctx, metrics.OrderRejected, form.PaymentMethod)
		return nil, fmt.Errorf("pricing cart: %w", err)
	}
	methods := s.methods.EnabledMethods(ctx)
	sub := Assemble(contents, form, methods.Methods, s.reference())

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	order, err := s.orders.CreateOrder(callCtx, sub)
	if err != nil {
		s.metrics.OrderSubmitted(ctx, metrics.OrderRejected, sub.PaymentMethod)
		s.logger.Warn("order submission failed",
			slog.String("reference", sub.Reference),
			slog.String("payment_method", sub.PaymentMethod),
			slog.String("reason", model.Reason(err)))
		return nil, fmt.Errorf("submitting order %s: %w", sub.Reference, err)
	}

	if order.Reference == "" {
		order.Reference = sub.Reference
	}
	if len(order.Items) == 0 {
		order.Items = sub.Items
	}
	if err := session.ClearCart(); err != nil {
		return nil, err
	}

	s.metrics.OrderSubmitted(ctx, metrics.OrderPlaced, sub.PaymentMethod)
	s.logger.Info("order placed",
		slog.String("reference", sub.Reference),
		slog.Int("order_id", order.ID),
		slog.String("total", sub.Total.String()))
	return order, nil
}
