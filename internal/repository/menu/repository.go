package menu

import (
	"context"

	"fooddelivery/internal/domain"
)

type Repository interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	// Search matches available items by name, description or category.
	Search(ctx context.Context, query string) ([]domain.MenuItem, error)
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}
