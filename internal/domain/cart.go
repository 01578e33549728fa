package domain

import "github.com/shopspring/decimal"

// SizeChoice is the size picked for a line item.
type SizeChoice struct {
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

// ToppingChoice is one extra topping picked for a line item.
type ToppingChoice struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Customizations are frozen on the line item at add time. Only Size and
// Toppings take part in pricing; Extra is carried through untouched.
type Customizations struct {
	Size                *SizeChoice            `json:"size,omitempty"`
	Toppings            []ToppingChoice        `json:"toppings,omitempty"`
	SpecialInstructions string                 `json:"specialInstructions,omitempty"`
	Extra               map[string]interface{} `json:"extra,omitempty"`
}

type CartLineItem struct {
	ID                  string          `json:"id"`
	MenuItemID          string          `json:"menuItemId"`
	RestaurantID        string          `json:"restaurantId"`
	Name                string          `json:"name"`
	Image               string          `json:"image,omitempty"`
	BasePrice           decimal.Decimal `json:"basePrice"`
	Customizations      Customizations  `json:"customizations"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	SpecialInstructions string          `json:"specialInstructions"`
}

// Cart is the single-restaurant shopping cart of one session.
type Cart struct {
	Items          []CartLineItem  `json:"items"`
	RestaurantID   *string         `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// BoundRestaurant returns the restaurant id the cart is bound to, or "".
func (c Cart) BoundRestaurant() string {
	if c.RestaurantID == nil {
		return ""
	}
	return *c.RestaurantID
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Cart) Clone() Cart {
	out := c
	if c.RestaurantID != nil {
		id := *c.RestaurantID
		out.RestaurantID = &id
	}
	out.Items = make([]CartLineItem, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

func (l CartLineItem) Clone() CartLineItem {
	out := l
	if l.Customizations.Size != nil {
		size := *l.Customizations.Size
		out.Customizations.Size = &size
	}
	if l.Customizations.Toppings != nil {
		out.Customizations.Toppings = append([]ToppingChoice(nil), l.Customizations.Toppings...)
	}
	if l.Customizations.Extra != nil {
		out.Customizations.Extra = make(map[string]interface{}, len(l.Customizations.Extra))
		for k, v := range l.Customizations.Extra {
			out.Customizations.Extra[k] = v
		}
	}
	return out
}
