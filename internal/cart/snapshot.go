package cart

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Cookie names carrying the client-held state.
const (
	CartCookie     = "storefront_cart"
	WishlistCookie = "storefront_wishlist"
)

// MaxCookieValue keeps an encoded collection inside the 4 KiB browsers
// guarantee per cookie, leaving room for the attributes.
const MaxCookieValue = 3800

var (
	// ErrCorruptSnapshot means a cookie value could not be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrSnapshotTooLarge means an encoded collection exceeds MaxCookieValue.
	ErrSnapshotTooLarge = errors.New("snapshot too large for a cookie")
)

// Snapshot is the serialized state of a session.
type Snapshot struct {
	Cart     []Item         `json:"cart"`
	Wishlist []WishlistItem `json:"wishlist"`
}

// DecodeSnapshot decodes the two cookie values. An empty value is an empty
// collection. A corrupt value yields an error wrapping ErrCorruptSnapshot
// along with whatever the other value decoded to.
func DecodeSnapshot(cartValue, wishlistValue string) (Snapshot, error) {
	var (
		snap Snapshot
		errs []error
	)
	if err := decodeValue(cartValue, &snap.Cart); err != nil {
		snap.Cart = nil
		errs = append(errs, fmt.Errorf("%s: %w", CartCookie, err))
	}
	if err := decodeValue(wishlistValue, &snap.Wishlist); err != nil {
		snap.Wishlist = nil
		errs = append(errs, fmt.Errorf("%s: %w", WishlistCookie, err))
	}
	return snap, errors.Join(errs...)
}

func decodeValue(value string, out any) error {
	if value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return nil
}

// CookieValues encodes the snapshot into the cart and wishlist cookie
// values. Empty collections encode to "".
func (s Snapshot) CookieValues() (cartValue, wishlistValue string, err error) {
	if cartValue, err = encodeValue(CartCookie, len(s.Cart), s.Cart); err != nil {
		return "", "", err
	}
	if wishlistValue, err = encodeValue(WishlistCookie, len(s.Wishlist), s.Wishlist); err != nil {
		return "", "", err
	}
	return cartValue, wishlistValue, nil
}

func encodeValue(name string, n int, v any) (string, error) {
	if n == 0 {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	if len(value) > MaxCookieValue {
		return "", fmt.Errorf("%s: %w (%d bytes)", name, ErrSnapshotTooLarge, len(value))
	}
	return value, nil
}
