package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput marks a request rejected before any state was touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRestaurantConflict is returned when an item from another restaurant
	// would replace a non-empty cart and the caller did not confirm it.
	ErrRestaurantConflict = errors.New("cart holds items from another restaurant")
)
