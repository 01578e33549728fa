package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// ErrMalformed is returned by Decode for blobs that do not describe a cart.
var ErrMalformed = errors.New("malformed cart blob")

// Encode serializes the full cart for the key-value store.
func Encode(c domain.Cart) (string, error) {
	if c.Items == nil {
		c.Items = []domain.CartLineItem{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(b), nil
}

// Decode parses a stored cart and checks it can be served as-is. Derived
// totals are recomputed so a restored cart is always settled.
func Decode(raw string) (domain.Cart, error) {
	var c domain.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c.Items == nil {
		c.Items = []domain.CartLineItem{}
	}

	if c.IsEmpty() {
		if c.RestaurantID != nil {
			return domain.Cart{}, fmt.Errorf("%w: empty cart bound to restaurant %q", ErrMalformed, *c.RestaurantID)
		}
		c.RestaurantName = ""
		c.DeliveryFee = decimal.Zero
		return Recompute(c), nil
	}

	if c.BoundRestaurant() == "" {
		return domain.Cart{}, fmt.Errorf("%w: items without restaurant binding", ErrMalformed)
	}
	seen := make(map[string]struct{}, len(c.Items))
	for i, item := range c.Items {
		if item.ID == "" {
			return domain.Cart{}, fmt.Errorf("%w: item %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[item.ID]; dup {
			return domain.Cart{}, fmt.Errorf("%w: duplicate item id %q", ErrMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Quantity < 1 {
			return domain.Cart{}, fmt.Errorf("%w: item %q has quantity %d", ErrMalformed, item.ID, item.Quantity)
		}
		// Blobs written before line items carried their restaurant are
		// adopted by the cart binding.
		if item.RestaurantID == "" {
			c.Items[i].RestaurantID = c.BoundRestaurant()
		} else if item.RestaurantID != c.BoundRestaurant() {
			return domain.Cart{}, fmt.Errorf("%w: item %q belongs to restaurant %q", ErrMalformed, item.ID, item.RestaurantID)
		}
	}
	return Recompute(c), nil
}
