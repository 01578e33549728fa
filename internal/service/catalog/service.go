package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fooddelivery/internal/domain"
	menurepo "fooddelivery/internal/repository/menu"
	restaurantrepo "fooddelivery/internal/repository/restaurant"
)

type Service struct {
	restaurants restaurantrepo.Repository
	menu        menurepo.Repository
}

func New(restaurants restaurantrepo.Repository, menu menurepo.Repository) *Service {
	return &Service{restaurants: restaurants, menu: menu}
}

type SearchResult struct {
	Restaurants []domain.Restaurant `json:"restaurants"`
	MenuItems   []domain.MenuItem   `json:"menuItems"`
}

func (s *Service) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return s.restaurants.List(ctx)
}

func (s *Service) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	return s.restaurants.GetByID(ctx, id)
}

// Menu lists a restaurant's items; an unknown restaurant is ErrNotFound
// rather than an empty menu.
func (s *Service) Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.menu.ListByRestaurant(ctx, restaurantID)
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.menu.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query required", domain.ErrInvalidInput)
	}
	restaurants, err := s.restaurants.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	items, err := s.menu.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Restaurants: restaurants, MenuItems: items}, nil
}

// Resolve loads a menu item together with the restaurant data a cart binds
// to. Unavailable items and closed restaurants cannot be ordered.
func (s *Service) Resolve(ctx context.Context, menuItemID string) (*domain.MenuItem, domain.RestaurantInfo, error) {
	item, err := s.menu.GetByID(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RestaurantInfo{}, fmt.Errorf("%w: menu item %s not found", domain.ErrInvalidInput, menuItemID)
		}
		return nil, domain.RestaurantInfo{}, err
	}
	if !item.Available {
		return nil, domain.RestaurantInfo{}, fmt.Errorf("%w: menu item %s is unavailable", domain.ErrInvalidInput, item.Name)
	}
	r, err := s.restaurants.GetByID(ctx, item.RestaurantID)
	if err != nil {
		return nil, domain.RestaurantInfo{}, err
	}
	if !r.IsOpen {
		return nil, domain.RestaurantInfo{}, fmt.Errorf("%w: %s is closed", domain.ErrInvalidInput, r.Name)
	}
	return item, r.Info(), nil
}
