// Package seed loads a small demo catalog for manual testing.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

type RestaurantWriter interface {
	Upsert(ctx context.Context, r domain.Restaurant) (*domain.Restaurant, error)
}

type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

type restaurantSeed struct {
	restaurant domain.Restaurant
	menu       []domain.MenuItem
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func demoCatalog() []restaurantSeed {
	return []restaurantSeed{
		{
			restaurant: domain.Restaurant{
				Key:                 "marios-pizza-palace",
				Name:                "Mario's Pizza Palace",
				Cuisine:             "italian",
				Description:         "Authentic Italian pizza made with fresh ingredients",
				Rating:              money("4.5"),
				DeliveryFee:         money("2.99"),
				DeliveryTimeMinutes: 30,
				Images:              []string{"https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b"},
				IsOpen:              true,
			},
			menu: []domain.MenuItem{
				{
					Key:         "margherita-pizza",
					Name:        "Margherita Pizza",
					Description: "Fresh mozzarella, tomato sauce, basil",
					Category:    "pizza",
					BasePrice:   money("16.99"),
					Sizes: []domain.SizeOption{
						{Name: "Small", PriceModifier: decimal.Zero},
						{Name: "Medium", PriceModifier: money("3.00")},
						{Name: "Large", PriceModifier: money("6.00")},
					},
					Toppings: []domain.ToppingOption{
						{Name: "Pepperoni", Price: money("2.50")},
						{Name: "Mushrooms", Price: money("1.50")},
						{Name: "Black Olives", Price: money("1.50")},
					},
					Available: true,
					Popular:   true,
				},
				{
					Key:         "garlic-knots",
					Name:        "Garlic Knots",
					Description: "Six knots brushed with garlic butter",
					Category:    "sides",
					BasePrice:   money("5.49"),
					Available:   true,
				},
			},
		},
		{
			restaurant: domain.Restaurant{
				Key:                 "burger-haven",
				Name:                "Burger Haven",
				Cuisine:             "american",
				Description:         "Gourmet burgers and fries",
				Rating:              money("4.2"),
				DeliveryFee:         money("3.99"),
				DeliveryTimeMinutes: 25,
				Images:              []string{"https://images.unsplash.com/photo-1568901346375-23c9450c58cd"},
				IsOpen:              true,
			},
			menu: []domain.MenuItem{
				{
					Key:         "classic-cheeseburger",
					Name:        "Classic Cheeseburger",
					Description: "Beef patty, cheese, lettuce, tomato, pickles",
					Category:    "burgers",
					BasePrice:   money("12.99"),
					Toppings: []domain.ToppingOption{
						{Name: "Bacon", Price: money("2.00")},
						{Name: "Avocado", Price: money("1.50")},
					},
					Available: true,
				},
				{
					Key:         "fries",
					Name:        "Fries",
					Description: "Hand-cut, sea salt",
					Category:    "sides",
					BasePrice:   money("3.99"),
					Sizes: []domain.SizeOption{
						{Name: "Regular", PriceModifier: decimal.Zero},
						{Name: "Large", PriceModifier: money("1.50")},
					},
					Available: true,
				},
			},
		},
	}
}

// Apply upserts the demo restaurants and their menus. Running it twice leaves
// the catalog unchanged.
func Apply(ctx context.Context, restaurants RestaurantWriter, menu MenuWriter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, s := range demoCatalog() {
		r, err := restaurants.Upsert(ctx, s.restaurant)
		if err != nil {
			return fmt.Errorf("upsert restaurant %s: %w", s.restaurant.Key, err)
		}
		for _, item := range s.menu {
			item.RestaurantID = r.ID
			if _, err := menu.Upsert(ctx, item); err != nil {
				return fmt.Errorf("upsert menu item %s/%s: %w", s.restaurant.Key, item.Key, err)
			}
		}
		logger.Info("seeded restaurant", zap.String("key", r.Key), zap.String("id", r.ID), zap.Int("menu_items", len(s.menu)))
	}
	return nil
}
