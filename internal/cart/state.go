package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// Empty returns the cart with no items and no restaurant binding.
func Empty() domain.Cart {
	return domain.Cart{
		Items:       []domain.CartLineItem{},
		Subtotal:    decimal.Zero,
		DeliveryFee: decimal.Zero,
		Tax:         decimal.Zero,
		Total:       decimal.Zero,
	}
}

// NewLineItem snapshots a menu item into a line item. The id is supplied by
// the caller so the transition stays free of side effects.
func NewLineItem(id string, item domain.MenuItem, c domain.Customizations, quantity int, restaurantID string) domain.CartLineItem {
	unit := UnitPrice(item.BasePrice, c)
	var image string
	if len(item.Images) > 0 {
		image = item.Images[0]
	}
	line := domain.CartLineItem{
		ID:                  id,
		MenuItemID:          item.ID,
		RestaurantID:        restaurantID,
		Name:                item.Name,
		Image:               image,
		BasePrice:           item.BasePrice,
		Customizations:      c,
		Quantity:            quantity,
		UnitPrice:           unit,
		TotalPrice:          unit.Mul(decimal.NewFromInt(int64(quantity))),
		SpecialInstructions: c.SpecialInstructions,
	}
	return line.Clone()
}

// ValidateAdd rejects add requests that must not touch the cart.
func ValidateAdd(item domain.MenuItem, quantity int, r domain.RestaurantInfo) error {
	switch {
	case strings.TrimSpace(item.ID) == "":
		return fmt.Errorf("%w: menu item id required", domain.ErrInvalidInput)
	case item.BasePrice.IsNegative():
		return fmt.Errorf("%w: base price must not be negative", domain.ErrInvalidInput)
	case quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: restaurant id required", domain.ErrInvalidInput)
	case r.DeliveryFee != nil && r.DeliveryFee.IsNegative():
		return fmt.Errorf("%w: delivery fee must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// Add appends line to c when c is empty or bound to r; otherwise c is
// replaced by a cart holding only line, bound to r.
func Add(c domain.Cart, line domain.CartLineItem, r domain.RestaurantInfo) domain.Cart {
	var items []domain.CartLineItem
	if c.IsEmpty() || c.BoundRestaurant() == r.ID {
		items = make([]domain.CartLineItem, 0, len(c.Items)+1)
		items = append(items, c.Items...)
	}
	items = append(items, line)

	id := r.ID
	next := domain.Cart{
		Items:          items,
		RestaurantID:   &id,
		RestaurantName: r.Name,
		DeliveryFee:    deliveryFeeOf(r),
	}
	return Recompute(next)
}

// ChangeQuantity sets the quantity of a line item, keeping its per-unit
// price as implied by the current line total. A quantity of zero or less
// removes the item. The second result is false when nothing changed.
func ChangeQuantity(c domain.Cart, lineItemID string, quantity int) (domain.Cart, bool) {
	if quantity <= 0 {
		return Remove(c, lineItemID)
	}
	idx := indexOf(c, lineItemID)
	if idx < 0 {
		return c, false
	}

	items := append([]domain.CartLineItem(nil), c.Items...)
	line := items[idx]
	unit := line.TotalPrice.Div(decimal.NewFromInt(int64(line.Quantity)))
	line.Quantity = quantity
	line.TotalPrice = unit.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyPlaces)
	items[idx] = line

	next := c
	next.Items = items
	return Recompute(next), true
}

// Remove drops a line item. Removing the last item unbinds the cart.
func Remove(c domain.Cart, lineItemID string) (domain.Cart, bool) {
	idx := indexOf(c, lineItemID)
	if idx < 0 {
		return c, false
	}

	items := make([]domain.CartLineItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:idx]...)
	items = append(items, c.Items[idx+1:]...)

	next := c
	next.Items = items
	if len(items) == 0 {
		next.RestaurantID = nil
		next.RestaurantName = ""
		next.DeliveryFee = decimal.Zero
	}
	return Recompute(next), true
}

// ItemCount sums quantities over all line items.
func ItemCount(c domain.Cart) int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsFromDifferentRestaurant reports whether adding from restaurantID would
// replace the current contents.
func IsFromDifferentRestaurant(c domain.Cart, restaurantID string) bool {
	return !c.IsEmpty() && c.BoundRestaurant() != restaurantID
}

func indexOf(c domain.Cart, lineItemID string) int {
	for i, item := range c.Items {
		if item.ID == lineItemID {
			return i
		}
	}
	return -1
}
