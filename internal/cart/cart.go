// Package cart holds the buyer's cart and wishlist. Both are client-held:
// the storefront decodes them from cookies on each request, mutates them,
// and writes them back. Nothing is persisted server-side.
package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/model"
	"storefront/internal/pricing"
)

// Item is one cart line. Quantity is always at least 1; a line whose
// quantity drops to zero is removed instead.
type Item struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
	Slug     string          `json:"slug,omitempty"`
}

// LineTotal is Price × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemFromProduct builds a cart line at the product's current effective
// price. Quantity is left for Add to set.
func ItemFromProduct(p *model.Product) Item {
	return Item{
		ID:    p.ID,
		Name:  p.Name,
		Price: pricing.EffectivePrice(p),
		Image: pricing.ProductImage(p),
		Slug:  p.Slug,
	}
}

// Cart is an ordered collection of lines keyed by product id.
// The zero value is an empty cart.
type Cart struct {
	items []Item
}

// NewCart restores a cart from lines, dropping invalid ones and merging
// duplicates in first-seen order.
func NewCart(items []Item) *Cart {
	c := &Cart{}
	for _, item := range items {
		if item.ID <= 0 || item.Quantity <= 0 {
			continue
		}
		c.Add(item, item.Quantity)
	}
	return c
}

func (c *Cart) index(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts qty units of item in the cart. An existing line keeps its
// position and gains qty; qty below 1 counts as 1.
func (c *Cart) Add(item Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.index(item.ID); i >= 0 {
		c.items[i].Quantity += qty
		return
	}
	item.Quantity = qty
	c.items = append(c.items, item)
}

// Remove deletes the line for id, if any.
func (c *Cart) Remove(id int) {
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// SetQuantity replaces the quantity of the line for id. A quantity of zero
// or less removes the line. It reports whether the line existed.
func (c *Cart) SetQuantity(id, qty int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.Remove(id)
		return true
	}
	c.items[i].Quantity = qty
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Contains reports whether id has a line.
func (c *Cart) Contains(id int) bool {
	return c.index(id) >= 0
}

// QuantityOf returns the quantity for id, 0 when absent.
func (c *Cart) QuantityOf(id int) int {
	if i := c.index(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	return append([]Item{}, c.items...)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// ItemCount is the total number of units.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Line is a cart line as presented, with its computed total.
type Line struct {
	Item
	Total decimal.Decimal `json:"lineTotal"`
}

// View is the presentation of a cart.
type View struct {
	Items     []Line          `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View renders the cart for presentation.
func (c *Cart) View() View {
	v := View{
		Items:     make([]Line, 0, len(c.items)),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
	for _, item := range c.items {
		v.Items = append(v.Items, Line{Item: item, Total: item.LineTotal()})
	}
	return v
}

// OrderItems snapshots the lines for an order submission.
func (c *Cart) OrderItems() []model.OrderItem {
	out := make([]model.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, model.OrderItem{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return out
}
