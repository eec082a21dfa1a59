package cart

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

func item(id int, price int64) Item {
	return Item{ID: id, Name: "Melhfa", Price: decimal.NewFromInt(price)}
}

func TestCartAdd(t *testing.T) {
	c := &Cart{}
	c.Add(item(1, 10000), 2)
	c.Add(item(2, 5000), 0)
	c.Add(item(1, 10000), 1)

	if got := c.QuantityOf(1); got != 3 {
		t.Errorf("QuantityOf(1) = %d, want 3", got)
	}
	if got := c.QuantityOf(2); got != 1 {
		t.Errorf("QuantityOf(2) = %d, want 1 (qty 0 counts as 1)", got)
	}
	items := c.Items()
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("Items = %+v, want insertion order [1 2]", items)
	}
	if got := c.ItemCount(); got != 4 {
		t.Errorf("ItemCount = %d, want 4", got)
	}
	if got := c.Subtotal(); !got.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Subtotal = %s, want 35000", got)
	}
}

func TestCartSetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		wantFound bool
		wantQty   int
		wantIn    bool
	}{
		{"increase", 5, true, 5, true},
		{"zero removes", 0, true, 0, false},
		{"negative removes", -1, true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart([]Item{{ID: 7, Price: decimal.NewFromInt(100), Quantity: 2}})
			if found := c.SetQuantity(7, tt.qty); found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
			if got := c.QuantityOf(7); got != tt.wantQty {
				t.Errorf("QuantityOf = %d, want %d", got, tt.wantQty)
			}
			if got := c.Contains(7); got != tt.wantIn {
				t.Errorf("Contains = %v, want %v", got, tt.wantIn)
			}
		})
	}

	c := &Cart{}
	if c.SetQuantity(99, 3) {
		t.Error("SetQuantity on a missing line should report not found")
	}
	if c.Contains(99) {
		t.Error("SetQuantity must not create lines")
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	c := NewCart([]Item{
		{ID: 1, Quantity: 1, Price: decimal.NewFromInt(1)},
		{ID: 2, Quantity: 1, Price: decimal.NewFromInt(1)},
		{ID: 3, Quantity: 1, Price: decimal.NewFromInt(1)},
	})
	c.Remove(2)
	c.Remove(42)
	if items := c.Items(); len(items) != 2 || items[0].ID != 1 || items[1].ID != 3 {
		t.Errorf("Items = %+v", items)
	}
	c.Clear()
	if c.Len() != 0 || !c.Subtotal().IsZero() {
		t.Error("Clear should empty the cart")
	}
}

func TestNewCartDropsInvalidLines(t *testing.T) {
	c := NewCart([]Item{
		{ID: 1, Quantity: 2},
		{ID: 0, Quantity: 1},
		{ID: 2, Quantity: 0},
		{ID: 1, Quantity: 1},
	})
	if c.Len() != 1 || c.QuantityOf(1) != 3 {
		t.Errorf("cart = %+v, want single line of 3", c.Items())
	}
}

func TestCartViewAndOrderItems(t *testing.T) {
	c := &Cart{}
	c.Add(item(4, 12500), 2)

	v := c.View()
	if len(v.Items) != 1 || !v.Items[0].Total.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("View = %+v", v)
	}
	if v.ItemCount != 2 || !v.Subtotal.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("View totals = %d / %s", v.ItemCount, v.Subtotal)
	}

	lines := c.OrderItems()
	if len(lines) != 1 || lines[0].Quantity != 2 || !lines[0].LineTotal.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("OrderItems = %+v", lines)
	}
}

func TestItemFromProduct(t *testing.T) {
	p := &model.Product{
		ID: 9, Name: "Voile", Slug: "voile",
		RegularPrice: "10000", SalePrice: "7500", OnSale: true,
	}
	got := ItemFromProduct(p)
	if !got.Price.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("Price = %s, want sale price", got.Price)
	}
	if got.Image == "" {
		t.Error("Image should fall back to the placeholder")
	}
}

func TestWishlist(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := &Wishlist{now: func() time.Time { return now }}

	if !w.Add(WishlistItem{ID: 1, Name: "A"}) {
		t.Fatal("first Add should add")
	}
	if w.Add(WishlistItem{ID: 1, Name: "A again"}) {
		t.Error("duplicate Add should be a no-op")
	}
	if got := w.Items()[0].AddedAt; !got.Equal(now) {
		t.Errorf("AddedAt = %v, want %v", got, now)
	}

	if present := w.Toggle(WishlistItem{ID: 2}); !present {
		t.Error("Toggle on absent item should add it")
	}
	if present := w.Toggle(WishlistItem{ID: 1}); present {
		t.Error("Toggle on present item should remove it")
	}
	if w.Count() != 1 || !w.Contains(2) || w.Contains(1) {
		t.Errorf("wishlist = %+v", w.Items())
	}

	w.Remove(2)
	w.Clear()
	if w.Count() != 0 {
		t.Error("Clear should empty the wishlist")
	}
}

func TestWishlistIndependentOfCart(t *testing.T) {
	s := NewSession()
	s.Hydrate(Snapshot{})
	if err := s.AddToWishlist(WishlistItem{ID: 5}); err != nil {
		t.Fatal(err)
	}
	if len(s.CartItems()) != 0 {
		t.Error("wishlisting must not touch the cart")
	}
}

func TestSessionHydrationGate(t *testing.T) {
	s := NewSession()

	if s.Hydrated() {
		t.Fatal("new session should not be hydrated")
	}
	if s.ShouldRedirectEmpty() {
		t.Error("no redirect before hydration")
	}
	if err := s.AddToCart(item(1, 100), 1); !errors.Is(err, ErrNotHydrated) {
		t.Errorf("AddToCart before hydration = %v, want ErrNotHydrated", err)
	}
	if _, err := s.ToggleWishlist(WishlistItem{ID: 1}); !errors.Is(err, ErrNotHydrated) {
		t.Errorf("ToggleWishlist before hydration = %v, want ErrNotHydrated", err)
	}
	if len(s.CartItems()) != 0 {
		t.Error("pre-hydration state must stay empty")
	}

	s.Hydrate(Snapshot{Cart: []Item{{ID: 3, Quantity: 2, Price: decimal.NewFromInt(500)}}})

	select {
	case <-s.Ready():
	default:
		t.Fatal("Ready should be closed after Hydrate")
	}
	if s.ShouldRedirectEmpty() {
		t.Error("non-empty hydrated cart must not redirect")
	}

	s.Hydrate(Snapshot{})
	if len(s.CartItems()) != 1 {
		t.Error("second Hydrate must have no effect")
	}

	if found, err := s.SetQuantity(3, 0); err != nil || !found {
		t.Fatalf("SetQuantity = %v, %v", found, err)
	}
	if !s.ShouldRedirectEmpty() {
		t.Error("hydrated empty cart should redirect")
	}
}

func TestSessionContents(t *testing.T) {
	s := NewSession()
	s.Hydrate(Snapshot{Cart: []Item{
		{ID: 1, Quantity: 2, Price: decimal.NewFromInt(20000)},
		{ID: 2, Quantity: 1, Price: decimal.NewFromInt(9000)},
	}})

	got := s.CartContents()
	if len(got.Items) != 2 || !got.Subtotal.Equal(decimal.NewFromInt(49000)) {
		t.Errorf("CartContents = %+v", got)
	}
	if err := s.ClearCart(); err != nil {
		t.Fatal(err)
	}
	if len(s.CartContents().Items) != 0 {
		t.Error("ClearCart should empty the cart")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	added := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	snap := Snapshot{
		Cart:     []Item{{ID: 1, Name: "Melhfa soie", Price: decimal.RequireFromString("12500.50"), Quantity: 2}},
		Wishlist: []WishlistItem{{ID: 9, Name: "Voile", Slug: "voile", AddedAt: added}},
	}

	cartValue, wishlistValue, err := snap.CookieValues()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSnapshot(cartValue, wishlistValue)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Cart) != 1 || !got.Cart[0].Price.Equal(snap.Cart[0].Price) || got.Cart[0].Quantity != 2 {
		t.Errorf("Cart = %+v", got.Cart)
	}
	if len(got.Wishlist) != 1 || !got.Wishlist[0].AddedAt.Equal(added) {
		t.Errorf("Wishlist = %+v", got.Wishlist)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	good, _, err := Snapshot{Cart: []Item{{ID: 1, Quantity: 1}}}.CookieValues()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty values", func(t *testing.T) {
		got, err := DecodeSnapshot("", "")
		if err != nil || len(got.Cart) != 0 || len(got.Wishlist) != 0 {
			t.Errorf("DecodeSnapshot = %+v, %v", got, err)
		}
	})

	t.Run("corrupt wishlist keeps cart", func(t *testing.T) {
		got, err := DecodeSnapshot(good, "%%%not-base64")
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Errorf("err = %v, want ErrCorruptSnapshot", err)
		}
		if !strings.Contains(err.Error(), WishlistCookie) {
			t.Errorf("err = %v, should name the cookie", err)
		}
		if len(got.Cart) != 1 {
			t.Errorf("Cart = %+v, want decoded", got.Cart)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := DecodeSnapshot("bm90IGpzb24", "")
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Errorf("err = %v, want ErrCorruptSnapshot", err)
		}
	})
}

func TestSnapshotTooLarge(t *testing.T) {
	var snap Snapshot
	for i := 1; i <= 200; i++ {
		snap.Cart = append(snap.Cart, Item{ID: i, Name: strings.Repeat("x", 20), Quantity: 1})
	}
	if _, _, err := snap.CookieValues(); !errors.Is(err, ErrSnapshotTooLarge) {
		t.Errorf("err = %v, want ErrSnapshotTooLarge", err)
	}
}
