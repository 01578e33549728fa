package order

import (
	"context"
	"time"

	"fooddelivery/internal/domain"
)

// ListFilter narrows a session's order history. Zero value lists everything.
type ListFilter struct {
	Status     domain.OrderStatus
	ActiveOnly bool
}

type StatusChange struct {
	Status  domain.OrderStatus
	Message string
	At      time.Time
	// OnlyIfActive makes the change fail with domain.ErrNotFound when the
	// order is already delivered or cancelled.
	OnlyIfActive bool
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListBySession returns orders newest first.
	ListBySession(ctx context.Context, sessionID string, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*domain.Order, error)
	SetRating(ctx context.Context, id string, rating int, review string) (*domain.Order, error)
}
