package cart

import (
	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// moneyPlaces is the precision totals are rounded to.
const moneyPlaces = 2

var (
	// TaxRate is applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.08")
	// DefaultDeliveryFee is used when a restaurant does not supply one.
	DefaultDeliveryFee = decimal.RequireFromString("2.99")
)

// UnitPrice prices one unit of a menu item with its customizations applied:
// base price plus the size modifier plus every topping.
func UnitPrice(basePrice decimal.Decimal, c domain.Customizations) decimal.Decimal {
	price := basePrice
	if c.Size != nil {
		price = price.Add(c.Size.PriceModifier)
	}
	for _, t := range c.Toppings {
		price = price.Add(t.Price)
	}
	return price
}

// Recompute refreshes subtotal, tax and total from the items and delivery fee.
func Recompute(c domain.Cart) domain.Cart {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	c.Subtotal = subtotal
	c.Tax = subtotal.Mul(TaxRate).Round(moneyPlaces)
	c.Total = subtotal.Add(c.DeliveryFee).Add(c.Tax)
	return c
}

func deliveryFeeOf(r domain.RestaurantInfo) decimal.Decimal {
	if r.DeliveryFee == nil {
		return DefaultDeliveryFee
	}
	return *r.DeliveryFee
}
