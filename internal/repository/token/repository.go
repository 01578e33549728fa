// Package token stores the bearer tokens of anonymous sessions.
package token

import (
	"context"
	"time"
)

type Token struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	// Get returns domain.ErrNotFound for unknown tokens. Expired tokens are
	// returned as stored; callers check ExpiresAt.
	Get(ctx context.Context, token string) (*Token, error)
	// Delete removes a token and returns what was stored.
	Delete(ctx context.Context, token string) (*Token, error)
	// DeleteExpired removes tokens that expired before now and returns their
	// session ids.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
	Count(ctx context.Context) (int, error)
}
