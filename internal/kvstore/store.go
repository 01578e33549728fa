// Package kvstore provides the durable key-value slots carts are mirrored into.
package kvstore

import "context"

// Store is a string-valued key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
