package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

// DefaultKey is the store key of the device cart.
const DefaultKey = "@food_delivery_cart"

// Store is the durable key-value slot the engine mirrors its cart into.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ReplacePolicy decides what happens when an item from another restaurant is
// added to a non-empty cart.
type ReplacePolicy int

const (
	// ReplaceSilently discards the current items and rebinds the cart.
	ReplaceSilently ReplacePolicy = iota
	// RequireConfirmation fails with domain.ErrRestaurantConflict unless the
	// add request confirms the replacement.
	RequireConfirmation
)

// ParseReplacePolicy maps "silent" and "confirm" to a policy.
func ParseReplacePolicy(s string) (ReplacePolicy, bool) {
	switch s {
	case "", "silent":
		return ReplaceSilently, true
	case "confirm":
		return RequireConfirmation, true
	}
	return ReplaceSilently, false
}

type Options struct {
	Key    string
	Policy ReplacePolicy
	Logger *zap.Logger
	// NewID overrides line item id generation.
	NewID func(menuItemID string) string
}

type AddItemInput struct {
	MenuItem       domain.MenuItem
	Customizations domain.Customizations
	Quantity       int
	Restaurant     domain.RestaurantInfo
	ConfirmReplace bool
}

// Engine owns the cart of one session and keeps a durable copy in a Store.
// Mutations are applied in memory first; the returned error is a
// *PersistError when only the durable write failed.
type Engine struct {
	store  Store
	key    string
	policy ReplacePolicy
	logger *zap.Logger
	newID  func(string) string

	mu     sync.RWMutex
	cart   domain.Cart
	seq    uint64
	loaded bool

	writeMu sync.Mutex
	written uint64
}

func NewEngine(store Store, opts Options) *Engine {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = newLineItemID
	}
	return &Engine{
		store:  store,
		key:    opts.Key,
		policy: opts.Policy,
		logger: opts.Logger.With(zap.String("cart_key", opts.Key)),
		newID:  opts.NewID,
		cart:   Empty(),
	}
}

func newLineItemID(menuItemID string) string {
	return menuItemID + "_" + uuid.NewString()
}

// Load restores the durable copy once. Missing, unreadable or malformed data
// leaves the empty cart in place. Load never replaces state produced by a
// mutation that ran before it.
func (e *Engine) Load(ctx context.Context) {
	e.mu.RLock()
	done := e.loaded
	e.mu.RUnlock()
	if done {
		return
	}

	restored, ok := e.read(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return
	}
	if ok && e.seq == 0 {
		e.cart = restored
	}
	e.loaded = true
}

func (e *Engine) read(ctx context.Context) (domain.Cart, bool) {
	raw, found, err := e.store.Get(ctx, e.key)
	if err != nil {
		e.logger.Warn("cart load failed, starting empty", zap.Error(err))
		return domain.Cart{}, false
	}
	if !found {
		return domain.Cart{}, false
	}
	c, err := Decode(raw)
	if err != nil {
		e.logger.Warn("stored cart discarded, starting empty", zap.Error(err))
		return domain.Cart{}, false
	}
	e.logger.Debug("cart restored", zap.Int("items", len(c.Items)))
	return c, true
}

// Loaded reports whether the initial restore has completed.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Snapshot returns a copy of the current cart.
func (e *Engine) Snapshot() domain.Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.Clone()
}

// SnapshotAt returns a copy of the current cart and its version. The version
// changes with every mutation.
func (e *Engine) SnapshotAt() (domain.Cart, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.Clone(), e.seq
}

func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ItemCount(e.cart)
}

func (e *Engine) IsFromDifferentRestaurant(restaurantID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return IsFromDifferentRestaurant(e.cart, restaurantID)
}

// AddItem prices and appends a line item, replacing the cart when it is bound
// to another restaurant. The created line item is returned even when the
// durable write fails.
func (e *Engine) AddItem(ctx context.Context, in AddItemInput) (domain.CartLineItem, error) {
	if err := ValidateAdd(in.MenuItem, in.Quantity, in.Restaurant); err != nil {
		return domain.CartLineItem{}, err
	}

	var line domain.CartLineItem
	err := e.mutate(ctx, func(c domain.Cart) (domain.Cart, bool, error) {
		if IsFromDifferentRestaurant(c, in.Restaurant.ID) {
			if e.policy == RequireConfirmation && !in.ConfirmReplace {
				return c, false, domain.ErrRestaurantConflict
			}
			e.logger.Info("cart replaced by item from another restaurant",
				zap.String("from_restaurant", c.BoundRestaurant()),
				zap.String("to_restaurant", in.Restaurant.ID),
				zap.Int("discarded_items", len(c.Items)))
		}
		line = NewLineItem(e.newID(in.MenuItem.ID), in.MenuItem, in.Customizations, in.Quantity, in.Restaurant.ID)
		return Add(c, line, in.Restaurant), true, nil
	})
	if err != nil && !IsPersistWarning(err) {
		return domain.CartLineItem{}, err
	}
	return line.Clone(), err
}

// UpdateQuantity changes a line item's quantity; zero or less removes it.
// Unknown ids are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, lineItemID string, quantity int) error {
	return e.mutate(ctx, func(c domain.Cart) (domain.Cart, bool, error) {
		next, changed := ChangeQuantity(c, lineItemID, quantity)
		return next, changed, nil
	})
}

// RemoveItem drops a line item. Unknown ids are ignored.
func (e *Engine) RemoveItem(ctx context.Context, lineItemID string) error {
	return e.mutate(ctx, func(c domain.Cart) (domain.Cart, bool, error) {
		next, changed := Remove(c, lineItemID)
		return next, changed, nil
	})
}

// Clear resets the cart and overwrites the durable copy, even when the cart
// is already empty.
func (e *Engine) Clear(ctx context.Context) error {
	return e.mutate(ctx, func(domain.Cart) (domain.Cart, bool, error) {
		return Empty(), true, nil
	})
}

// ClearIfUnchanged clears the cart only when no mutation ran since version was
// read with SnapshotAt. It reports whether the cart was cleared.
func (e *Engine) ClearIfUnchanged(ctx context.Context, version uint64) (bool, error) {
	cleared := false
	err := e.mutate(ctx, func(c domain.Cart) (domain.Cart, bool, error) {
		if e.seq != version {
			return c, false, nil
		}
		cleared = true
		return Empty(), true, nil
	})
	return cleared, err
}

func (e *Engine) mutate(ctx context.Context, fn func(domain.Cart) (domain.Cart, bool, error)) error {
	e.mu.Lock()
	next, changed, err := fn(e.cart)
	if err != nil || !changed {
		e.mu.Unlock()
		return err
	}
	e.cart = next
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	return e.persist(ctx, seq, next)
}

// persist writes snapshots in mutation order. A snapshot older than one
// already written is dropped since the newer one supersedes it.
func (e *Engine) persist(ctx context.Context, seq uint64, c domain.Cart) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if seq <= e.written {
		return nil
	}

	payload, err := Encode(c)
	if err == nil {
		err = e.store.Set(ctx, e.key, payload)
	}
	if err != nil {
		e.logger.Warn("cart persist failed", zap.Uint64("seq", seq), zap.Error(err))
		return &PersistError{Key: e.key, Err: err}
	}
	e.written = seq
	return nil
}

// Flush rewrites the current cart when its last write failed, which heals a
// stale durable copy. An engine without mutations has nothing to heal and
// leaves the store alone.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.RLock()
	c, seq := e.cart, e.seq
	e.mu.RUnlock()
	return e.persist(ctx, seq, c)
}

// Discard deletes the durable copy and resets the in-memory cart.
func (e *Engine) Discard(ctx context.Context) error {
	e.mu.Lock()
	e.cart = Empty()
	e.seq++
	seq := e.seq
	e.loaded = true
	e.mu.Unlock()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.store.Delete(ctx, e.key); err != nil {
		return &PersistError{Key: e.key, Err: err}
	}
	e.written = seq
	return nil
}

// Key returns the store key this engine writes to.
func (e *Engine) Key() string {
	return e.key
}
