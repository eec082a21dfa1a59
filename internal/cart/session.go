package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// ErrNotHydrated is returned by mutations attempted before the session was
// hydrated from the client's stored state.
var ErrNotHydrated = errors.New("cart session not hydrated")

// Session guards a cart and a wishlist behind a hydration gate.
//
// Before Hydrate, the session shows the same empty state the server
// rendered, rejects every mutation with ErrNotHydrated, and never asks for
// an empty-cart redirect. Hydrate loads the client's snapshot once and
// closes the Ready channel.
type Session struct {
	mu       sync.Mutex
	cart     *Cart
	wishlist *Wishlist
	ready    chan struct{}
	once     sync.Once
}

// NewSession returns an unhydrated session.
func NewSession() *Session {
	return &Session{
		cart:     &Cart{},
		wishlist: &Wishlist{},
		ready:    make(chan struct{}),
	}
}

// Hydrate installs the client's state. Only the first call has effect.
func (s *Session) Hydrate(snap Snapshot) {
	s.once.Do(func() {
		s.mu.Lock()
		s.cart = NewCart(snap.Cart)
		s.wishlist = NewWishlist(snap.Wishlist)
		s.mu.Unlock()
		close(s.ready)
	})
}

// Ready is closed once the session is hydrated.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Hydrated reports whether Hydrate has run.
func (s *Session) Hydrated() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// ShouldRedirectEmpty reports whether a checkout view should send the buyer
// back to the catalog: only once hydrated and with an empty cart.
func (s *Session) ShouldRedirectEmpty() bool {
	if !s.Hydrated() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len() == 0
}

func (s *Session) mutate(fn func()) error {
	if !s.Hydrated() {
		return ErrNotHydrated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	return nil
}

// AddToCart adds qty units of item.
func (s *Session) AddToCart(item Item, qty int) error {
	return s.mutate(func() { s.cart.Add(item, qty) })
}

// RemoveFromCart removes the line for id.
func (s *Session) RemoveFromCart(id int) error {
	return s.mutate(func() { s.cart.Remove(id) })
}

// SetQuantity changes the quantity for id; zero or less removes it.
// found reports whether the line existed.
func (s *Session) SetQuantity(id, qty int) (found bool, err error) {
	err = s.mutate(func() { found = s.cart.SetQuantity(id, qty) })
	return found, err
}

// ClearCart empties the cart.
func (s *Session) ClearCart() error {
	return s.mutate(func() { s.cart.Clear() })
}

// AddToWishlist saves item.
func (s *Session) AddToWishlist(item WishlistItem) error {
	return s.mutate(func() { s.wishlist.Add(item) })
}

// RemoveFromWishlist removes id from the wishlist.
func (s *Session) RemoveFromWishlist(id int) error {
	return s.mutate(func() { s.wishlist.Remove(id) })
}

// ToggleWishlist flips item's presence; present reports the new state.
func (s *Session) ToggleWishlist(item WishlistItem) (present bool, err error) {
	err = s.mutate(func() { present = s.wishlist.Toggle(item) })
	return present, err
}

// InWishlist reports whether the product is saved.
func (s *Session) InWishlist(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Contains(id)
}

// ClearWishlist empties the wishlist.
func (s *Session) ClearWishlist() error {
	return s.mutate(func() { s.wishlist.Clear() })
}

// CartView renders the cart.
func (s *Session) CartView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.View()
}

// CartItems returns the cart lines.
func (s *Session) CartItems() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// Contents is a consistent read of the cart for order assembly.
type Contents struct {
	Items    []model.OrderItem
	Subtotal decimal.Decimal
}

// CartContents snapshots the cart lines and their subtotal together.
func (s *Session) CartContents() Contents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Contents{Items: s.cart.OrderItems(), Subtotal: s.cart.Subtotal()}
}

// WishlistItems returns the saved products.
func (s *Session) WishlistItems() []WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Items()
}

// Snapshot captures the state for the client cookies.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Cart: s.cart.Items(), Wishlist: s.wishlist.Items()}
}
