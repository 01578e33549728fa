package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID                  string          `json:"id"`
	Key                 string          `json:"key"`
	Name                string          `json:"name"`
	Cuisine             string          `json:"cuisine,omitempty"`
	Description         string          `json:"description,omitempty"`
	Rating              decimal.Decimal `json:"rating"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	DeliveryTimeMinutes int             `json:"deliveryTimeMinutes"`
	Images              []string        `json:"images,omitempty"`
	IsOpen              bool            `json:"isOpen"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// SizeOption is a size a menu item can be ordered in.
type SizeOption struct {
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

// ToppingOption is an extra a menu item can be ordered with.
type ToppingOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurantId"`
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	Images       []string        `json:"images,omitempty"`
	Sizes        []SizeOption    `json:"sizes,omitempty"`
	Toppings     []ToppingOption `json:"toppings,omitempty"`
	Available    bool            `json:"available"`
	Popular      bool            `json:"popular"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RestaurantInfo is the slice of a restaurant a cart binds to.
// A nil DeliveryFee means the restaurant did not supply one.
type RestaurantInfo struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DeliveryFee *decimal.Decimal `json:"deliveryFee,omitempty"`
}

// Info projects a restaurant onto the fields a cart binds to.
func (r Restaurant) Info() RestaurantInfo {
	fee := r.DeliveryFee
	return RestaurantInfo{ID: r.ID, Name: r.Name, DeliveryFee: &fee}
}
