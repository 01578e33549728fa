package restaurant

import (
	"context"

	"fooddelivery/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetByKey(ctx context.Context, key string) (*domain.Restaurant, error)
	// Search matches the query against name and cuisine, case-insensitively.
	Search(ctx context.Context, query string) ([]domain.Restaurant, error)
	Upsert(ctx context.Context, r domain.Restaurant) (*domain.Restaurant, error)
}
