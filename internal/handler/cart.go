package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"
)

// stateCookieMaxAge keeps the cart and wishlist for a month of inactivity.
const stateCookieMaxAge = 30 * 24 * time.Hour

// itemRequest is the body of POST /api/cart/items and /api/wishlist/items.
type itemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// quantityRequest is the body of PUT /api/cart/items/{id}.
type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// wishlistResponse is the presentation of a wishlist.
type wishlistResponse struct {
	Items []cart.WishlistItem `json:"items"`
	Count int                 `json:"count"`
}

// session hydrates a session from the request's state cookies. An
// unreadable cookie is logged and starts that collection empty.
func (h *Handler) session(r *http.Request) *cart.Session {
	snap, err := cart.DecodeSnapshot(cookieValue(r, cart.CartCookie), cookieValue(r, cart.WishlistCookie))
	if err != nil {
		h.logger.Warn("discarding unreadable state cookie", slog.String("error", err.Error()))
	}
	s := cart.NewSession()
	s.Hydrate(snap)
	return s
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// saveSession writes the session back to the state cookies. Empty
// collections delete their cookie.
func (h *Handler) saveSession(w http.ResponseWriter, s *cart.Session) error {
	cartValue, wishlistValue, err := s.Snapshot().CookieValues()
	if err != nil {
		if errors.Is(err, cart.ErrSnapshotTooLarge) {
			return model.NewValidationError("cart", "too many items")
		}
		return err
	}
	h.setStateCookie(w, cart.CartCookie, cartValue)
	h.setStateCookie(w, cart.WishlistCookie, wishlistValue)
	return nil
}

// setStateCookie stores client-held state. The cookies are readable by page
// scripts, which render the cart badge from them.
func (h *Handler) setStateCookie(w http.ResponseWriter, name, value string) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge / time.Second),
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// productForItem fetches the product a client asks to add, so names and
// prices always come from the catalog rather than the request.
func (h *Handler) productForItem(r *http.Request, id int) (*model.Product, error) {
	if id <= 0 {
		return nil, model.NewValidationError("productId", "must be a positive integer")
	}
	res := h.catalog.GetProductByID(r.Context(), id)
	if !res.Success {
		return nil, model.NewPlatformError("catalog platform", 0, res.Message)
	}
	if res.Data == nil {
		return nil, model.NewNotFoundError("product")
	}
	return res.Data, nil
}

// === Cart ===

// GET /api/cart
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.session(r).CartView())
}

// POST /api/cart/items
func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	product, err := h.productForItem(r, req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !product.InStock() {
		h.writeError(w, model.NewValidationError("productId", "product is out of stock"))
		return
	}

	s := h.session(r)
	if err := s.AddToCart(cart.ItemFromProduct(product), req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.CartView())
}

// PUT /api/cart/items/{id}
// A quantity below 1 removes the line.
func (h *Handler) handleSetCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	s := h.session(r)
	found, err := s.SetQuantity(id, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		h.writeError(w, model.NewNotFoundError("cart item"))
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.CartView())
}

// DELETE /api/cart/items/{id}
func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s := h.session(r)
	if err := s.RemoveFromCart(id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.CartView())
}

// DELETE /api/cart
func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.ClearCart(); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.CartView())
}

// === Wishlist ===

func newWishlistResponse(s *cart.Session) wishlistResponse {
	items := s.WishlistItems()
	return wishlistResponse{Items: items, Count: len(items)}
}

// GET /api/wishlist
func (h *Handler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, newWishlistResponse(h.session(r)))
}

// POST /api/wishlist/items
// Adding a product already on the wishlist is a no-op.
func (h *Handler) handleAddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	product, err := h.productForItem(r, req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	s := h.session(r)
	if err := s.AddToWishlist(cart.WishlistItemFromProduct(product)); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newWishlistResponse(s))
}

// DELETE /api/wishlist/items/{id}
func (h *Handler) handleRemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s := h.session(r)
	if err := s.RemoveFromWishlist(id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newWishlistResponse(s))
}

// wishlistToggleResponse reports whether the product ended up saved.
type wishlistToggleResponse struct {
	wishlistResponse
	Saved bool `json:"saved"`
}

// POST /api/wishlist/items/{id}/toggle
func (h *Handler) handleToggleWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s := h.session(r)
	var item cart.WishlistItem
	if !s.InWishlist(id) {
		product, err := h.productForItem(r, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		item = cart.WishlistItemFromProduct(product)
	} else {
		item.ID = id
	}

	saved, err := s.ToggleWishlist(item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, wishlistToggleResponse{
		wishlistResponse: newWishlistResponse(s),
		Saved:            saved,
	})
}

// DELETE /api/wishlist
func (h *Handler) handleClearWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.ClearWishlist(); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.saveSession(w, s); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newWishlistResponse(s))
}
