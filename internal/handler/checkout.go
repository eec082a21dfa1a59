package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/payment"
)

// emptyCartRedirect is where the checkout sends buyers with nothing to buy.
const emptyCartRedirect = "/panier"

// checkoutView is everything the checkout page renders before submission.
type checkoutView struct {
	Cart           cart.View       `json:"cart"`
	Totals         checkout.Totals `json:"totals"`
	PaymentMethods payment.Methods `json:"paymentMethods"`
	DefaultMethod  string          `json:"defaultMethod"`
	Redirect       string          `json:"redirect,omitempty"`
}

// submitResponse is the reply to a checkout submission. It follows the
// order endpoint's {success, order, message} contract, plus the missing
// fields on validation failure.
type submitResponse struct {
	Success bool         `json:"success"`
	Order   *model.Order `json:"order,omitempty"`
	Message string       `json:"message,omitempty"`
	Missing []string     `json:"missing,omitempty"`
}

// handleGetCheckout returns the checkout view for the cookie cart.
// GET /api/checkout
//
// Payment methods are only fetched when there is something to pay for.
func (h *Handler) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	view := checkoutView{Cart: s.CartView()}
	view.Totals = checkout.Quote(view.Cart.Subtotal)

	if s.ShouldRedirectEmpty() {
		view.Redirect = emptyCartRedirect
		view.PaymentMethods = payment.Methods{Methods: []model.PaymentMethod{}}
		h.writeJSON(w, http.StatusOK, view)
		return
	}

	view.PaymentMethods = h.payments.EnabledMethods(r.Context())
	view.DefaultMethod = payment.DefaultMethod(view.PaymentMethods.Methods)
	h.writeJSON(w, http.StatusOK, view)
}

// handleSubmitCheckout validates the form and places the order for the
// cookie cart. The cart cookie is cleared only once the order is accepted.
// POST /api/checkout
func (h *Handler) handleSubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeJSON(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}

	s := h.session(r)
	order, err := h.checkout.Submit(r.Context(), s, form)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	if err := h.saveSession(w, s); err != nil {
		// The order exists; a stale cookie only costs the buyer a manual clear.
		h.logger.Warn("failed to clear cart cookie after order",
			slog.Int("order_id", order.ID),
			slog.String("error", err.Error()))
	}
	h.writeJSON(w, http.StatusCreated, submitResponse{Success: true, Order: order})
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		h.writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			Message: "Veuillez remplir tous les champs obligatoires",
			Missing: verr.Missing,
		})
		return
	}
	if errors.Is(err, checkout.ErrEmptyCart) {
		h.writeJSON(w, http.StatusBadRequest, submitResponse{Message: "Votre panier est vide"})
		return
	}
	if errors.Is(err, checkout.ErrUnavailable) {
		h.writeJSON(w, http.StatusConflict, submitResponse{Message: "Un article de votre panier n'est plus disponible"})
		return
	}

	status, message := h.orderFailure(err)
	h.writeJSON(w, status, submitResponse{Message: message})
}

// orderFailure maps an order error to a status and a message safe to show
// the buyer.
func (h *Handler) orderFailure(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = model.NewTimeoutError("order endpoint")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error("order failed", slog.String("error", err.Error()))
		apiErr = model.NewInternalError(err)
	}
	return apiErr.StatusCode, model.Reason(apiErr)
}

// handleCreateOrder is the order-creation endpoint: it forwards an order
// submission to the platform.
// POST /api/orders
func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var sub model.OrderSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		h.writeError(w, err)
		return
	}
	if len(sub.Items) == 0 {
		h.writeJSON(w, http.StatusBadRequest, model.OrderResponse{Message: "order has no items"})
		return
	}
	if missing := checkout.Validate(sub.CustomerInfo, sub.PaymentMethod); len(missing) > 0 {
		verr := &checkout.ValidationError{Missing: missing}
		h.writeJSON(w, http.StatusBadRequest, model.OrderResponse{Message: verr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, &sub)
	if err != nil {
		status, message := h.orderFailure(err)
		h.writeJSON(w, status, model.OrderResponse{Message: message})
		return
	}
	if order.Reference == "" {
		order.Reference = sub.Reference
	}
	h.writeJSON(w, http.StatusCreated, model.OrderResponse{Success: true, Order: order})
}
