package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Active reports whether the order can still change.
func (s OrderStatus) Active() bool {
	return s != OrderDelivered && s != OrderCancelled
}

type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
}

type OrderPricing struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

type Order struct {
	ID                  string          `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	SessionID           string          `json:"-"`
	RestaurantID        string          `json:"restaurantId"`
	RestaurantName      string          `json:"restaurantName"`
	Items               []CartLineItem  `json:"items"`
	Pricing             OrderPricing    `json:"pricing"`
	Status              OrderStatus     `json:"status"`
	Timeline            []TimelineEntry `json:"timeline"`
	DeliveryAddress     string          `json:"deliveryAddress"`
	PaymentMethod       string          `json:"paymentMethod"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	Rating              *int            `json:"rating,omitempty"`
	Review              string          `json:"review,omitempty"`
	EstimatedDeliveryAt time.Time       `json:"estimatedDeliveryTime"`
	DeliveredAt         *time.Time      `json:"actualDeliveryTime,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}
