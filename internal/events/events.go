// Package events announces order lifecycle changes to other services.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

const RoutingOrderPlaced = "order.placed"

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o domain.Order) error
	Close() error
}

// OrderPlaced is the message body published when an order is created.
type OrderPlaced struct {
	OrderID        string          `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	RestaurantID   string          `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName"`
	Items          []PlacedItem    `json:"items"`
	Total          decimal.Decimal `json:"total"`
	PlacedAt       time.Time       `json:"placedAt"`
	EstimatedAt    time.Time       `json:"estimatedDeliveryTime"`
}

type PlacedItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

func NewOrderPlaced(o domain.Order) OrderPlaced {
	items := make([]PlacedItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, PlacedItem{MenuItemID: item.MenuItemID, Name: item.Name, Quantity: item.Quantity})
	}
	return OrderPlaced{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.RestaurantName,
		Items:          items,
		Total:          o.Pricing.Total,
		PlacedAt:       o.CreatedAt,
		EstimatedAt:    o.EstimatedDeliveryAt,
	}
}

type nopPublisher struct{}

// NewNop returns a publisher that drops every event.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderPlaced(context.Context, domain.Order) error { return nil }

func (nopPublisher) Close() error { return nil }
