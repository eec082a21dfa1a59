package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
	"storefront/internal/pricing"
)

// WishlistItem is a saved product with the fields needed to display it
// without another catalog call.
type WishlistItem struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Image   string          `json:"image"`
	Price   decimal.Decimal `json:"price"`
	Slug    string          `json:"slug"`
	AddedAt time.Time       `json:"addedAt"`
}

// WishlistItemFromProduct builds a wishlist entry for p.
func WishlistItemFromProduct(p *model.Product) WishlistItem {
	return WishlistItem{
		ID:    p.ID,
		Name:  p.Name,
		Image: pricing.ProductImage(p),
		Price: pricing.EffectivePrice(p),
		Slug:  p.Slug,
	}
}

// Wishlist is an ordered set of saved products, independent of the cart.
type Wishlist struct {
	items []WishlistItem
	now   func() time.Time
}

// NewWishlist restores a wishlist, dropping invalid and duplicate entries.
func NewWishlist(items []WishlistItem) *Wishlist {
	w := &Wishlist{}
	for _, item := range items {
		if item.ID > 0 {
			w.Add(item)
		}
	}
	return w
}

func (w *Wishlist) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now().UTC()
}

func (w *Wishlist) index(id int) int {
	for i := range w.items {
		if w.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add saves item unless it is already present. AddedAt is stamped when
// the item does not carry one. It reports whether the item was added.
func (w *Wishlist) Add(item WishlistItem) bool {
	if w.index(item.ID) >= 0 {
		return false
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = w.clock()
	}
	w.items = append(w.items, item)
	return true
}

// Remove deletes id from the wishlist, if present.
func (w *Wishlist) Remove(id int) {
	if i := w.index(id); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	}
}

// Toggle removes item when present and adds it otherwise. It reports
// whether the item is present afterwards.
func (w *Wishlist) Toggle(item WishlistItem) bool {
	if w.Contains(item.ID) {
		w.Remove(item.ID)
		return false
	}
	return w.Add(item)
}

// Clear empties the wishlist.
func (w *Wishlist) Clear() {
	w.items = nil
}

// Contains reports whether id is saved.
func (w *Wishlist) Contains(id int) bool {
	return w.index(id) >= 0
}

// Items returns a copy of the entries in insertion order.
func (w *Wishlist) Items() []WishlistItem {
	return append([]WishlistItem{}, w.items...)
}

// Count is the number of saved products.
func (w *Wishlist) Count() int {
	return len(w.items)
}
