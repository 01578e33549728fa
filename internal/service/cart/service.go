package cart

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fooddelivery/internal/cart"
	"fooddelivery/internal/domain"
)

type Service struct {
	engines engineSource
	catalog menuResolver
	logger  *zap.Logger
}

type engineSource interface {
	Engine(ctx context.Context, sessionID string) *cart.Engine
	Drop(ctx context.Context, sessionID string) error
}

type menuResolver interface {
	Resolve(ctx context.Context, menuItemID string) (*domain.MenuItem, domain.RestaurantInfo, error)
}

func New(engines engineSource, catalog menuResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engines: engines, catalog: catalog, logger: logger}
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action         string               `json:"action"`
	MenuItemID     string               `json:"menuItemId,omitempty"`
	LineItemID     string               `json:"lineItemId,omitempty"`
	Quantity       int                  `json:"quantity,omitempty"`
	Customizations *CustomizationsInput `json:"customizations,omitempty"`
	ConfirmReplace bool                 `json:"confirmReplace,omitempty"`
}

// CustomizationsInput names options of the menu item; prices come from the
// catalog, never from the caller.
type CustomizationsInput struct {
	Size                string   `json:"size,omitempty"`
	Toppings            []string `json:"toppings,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
}

// Result is the cart as seen after a request. PersistWarning is set when the
// cart changed in memory but could not be written to the store.
type Result struct {
	Cart           domain.Cart          `json:"cart"`
	ItemCount      int                  `json:"itemCount"`
	Loaded         bool                 `json:"loaded"`
	LastItem       *domain.CartLineItem `json:"lastItem,omitempty"`
	PersistWarning string               `json:"persistWarning,omitempty"`
}

func (s *Service) Get(ctx context.Context, sessionID string) *Result {
	return resultOf(s.engines.Engine(ctx, sessionID))
}

// Snapshot returns the session's current cart and its version.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (domain.Cart, uint64) {
	return s.engines.Engine(ctx, sessionID).SnapshotAt()
}

// ClearIfUnchanged empties the session's cart unless it changed after the
// Snapshot that returned version. A persistence failure is a warning on the
// result.
func (s *Service) ClearIfUnchanged(ctx context.Context, sessionID string, version uint64) (bool, *Result) {
	e := s.engines.Engine(ctx, sessionID)
	cleared, err := e.ClearIfUnchanged(ctx, version)
	res := resultOf(e)
	if err != nil {
		res.PersistWarning = err.Error()
	}
	return cleared, res
}

// Discard deletes the session's cart for good.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	if err := s.engines.Drop(ctx, sessionID); err != nil {
		return fmt.Errorf("discard cart: %w", err)
	}
	return nil
}

// Clear empties the session's cart. A persistence failure is returned as a
// warning on the result, not as an error.
func (s *Service) Clear(ctx context.Context, sessionID string) *Result {
	e := s.engines.Engine(ctx, sessionID)
	err := e.Clear(ctx)
	res := resultOf(e)
	if err != nil {
		res.PersistWarning = err.Error()
	}
	return res
}

// Conflict reports whether adding from restaurantID would replace the cart.
func (s *Service) Conflict(ctx context.Context, sessionID, restaurantID string) bool {
	return s.engines.Engine(ctx, sessionID).IsFromDifferentRestaurant(restaurantID)
}

// Update applies actions in order. An action that fails stops the batch;
// actions before it stay applied.
func (s *Service) Update(ctx context.Context, sessionID string, in UpdateInput) (*Result, error) {
	if len(in.Actions) == 0 {
		return nil, fmt.Errorf("%w: actions required", domain.ErrInvalidInput)
	}
	e := s.engines.Engine(ctx, sessionID)

	var last *domain.CartLineItem
	var warning error
	for i, action := range in.Actions {
		var err error
		switch strings.ToLower(strings.TrimSpace(action.Action)) {
		case "addlineitem":
			var line domain.CartLineItem
			line, err = s.addLineItem(ctx, e, action)
			if err == nil || cart.IsPersistWarning(err) {
				last = &line
			}
		case "changelineitemquantity":
			lineID := strings.TrimSpace(action.LineItemID)
			if lineID == "" {
				return nil, fmt.Errorf("%w: lineItemId required", domain.ErrInvalidInput)
			}
			err = e.UpdateQuantity(ctx, lineID, action.Quantity)
		case "removelineitem":
			lineID := strings.TrimSpace(action.LineItemID)
			if lineID == "" {
				return nil, fmt.Errorf("%w: lineItemId required", domain.ErrInvalidInput)
			}
			err = e.RemoveItem(ctx, lineID)
		case "clear":
			err = e.Clear(ctx)
		default:
			return nil, fmt.Errorf("%w: unsupported action %q", domain.ErrInvalidInput, action.Action)
		}
		if err != nil {
			if !cart.IsPersistWarning(err) {
				s.logger.Debug("cart action rejected", zap.String("session_id", sessionID), zap.Int("action", i), zap.Error(err))
				return nil, err
			}
			warning = err
		}
	}

	res := resultOf(e)
	res.LastItem = last
	if warning != nil {
		res.PersistWarning = warning.Error()
	}
	return res, nil
}

func (s *Service) addLineItem(ctx context.Context, e *cart.Engine, action UpdateAction) (domain.CartLineItem, error) {
	menuItemID := strings.TrimSpace(action.MenuItemID)
	if menuItemID == "" {
		return domain.CartLineItem{}, fmt.Errorf("%w: menuItemId required", domain.ErrInvalidInput)
	}
	item, restaurant, err := s.catalog.Resolve(ctx, menuItemID)
	if err != nil {
		return domain.CartLineItem{}, err
	}
	customizations, err := customizationsFor(*item, action.Customizations)
	if err != nil {
		return domain.CartLineItem{}, err
	}
	return e.AddItem(ctx, cart.AddItemInput{
		MenuItem:       *item,
		Customizations: customizations,
		Quantity:       action.Quantity,
		Restaurant:     restaurant,
		ConfirmReplace: action.ConfirmReplace,
	})
}

func customizationsFor(item domain.MenuItem, in *CustomizationsInput) (domain.Customizations, error) {
	var out domain.Customizations
	if in == nil {
		return out, nil
	}
	out.SpecialInstructions = strings.TrimSpace(in.SpecialInstructions)

	if name := strings.TrimSpace(in.Size); name != "" {
		for _, size := range item.Sizes {
			if strings.EqualFold(size.Name, name) {
				out.Size = &domain.SizeChoice{Name: size.Name, PriceModifier: size.PriceModifier}
				break
			}
		}
		if out.Size == nil {
			return out, fmt.Errorf("%w: %s has no size %q", domain.ErrInvalidInput, item.Name, name)
		}
	}

	for _, name := range in.Toppings {
		name = strings.TrimSpace(name)
		found := false
		for _, topping := range item.Toppings {
			if strings.EqualFold(topping.Name, name) {
				out.Toppings = append(out.Toppings, domain.ToppingChoice{Name: topping.Name, Price: topping.Price})
				found = true
				break
			}
		}
		if !found {
			return out, fmt.Errorf("%w: %s has no topping %q", domain.ErrInvalidInput, item.Name, name)
		}
	}
	return out, nil
}

func resultOf(e *cart.Engine) *Result {
	c, _ := e.SnapshotAt()
	return &Result{
		Cart:      c,
		ItemCount: cart.ItemCount(c),
		Loaded:    e.Loaded(),
	}
}
