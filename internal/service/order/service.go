package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/events"
	orderrepo "fooddelivery/internal/repository/order"
	cartsvc "fooddelivery/internal/service/cart"
)

const (
	deliveryWindow = 30 * time.Minute
	placedMessage  = "Order placed successfully"
)

type Service struct {
	repo      orderrepo.Repository
	carts     cartSource
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type cartSource interface {
	Snapshot(ctx context.Context, sessionID string) (domain.Cart, uint64)
	ClearIfUnchanged(ctx context.Context, sessionID string, version uint64) (bool, *cartsvc.Result)
}

func New(repo orderrepo.Repository, carts cartSource, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, carts: carts, publisher: publisher, logger: logger, now: time.Now}
}

type PlaceInput struct {
	DeliveryAddress     string `json:"deliveryAddress"`
	PaymentMethod       string `json:"paymentMethod"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

type ListInput struct {
	Status     string
	ActiveOnly bool
}

// Place turns the session's cart into a pending order and empties the cart.
// A cart changed while the order was being placed is left as it is, so items
// added meanwhile are not lost.
func (s *Service) Place(ctx context.Context, sessionID string, in PlaceInput) (*domain.Order, error) {
	if err := validatePlace(in); err != nil {
		return nil, err
	}
	c, version := s.carts.Snapshot(ctx, sessionID)
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidInput)
	}

	o := s.newOrder(sessionID, in)
	o.RestaurantID = c.BoundRestaurant()
	o.RestaurantName = c.RestaurantName
	o.Items = c.Items
	o.Pricing = domain.OrderPricing{
		Subtotal:    c.Subtotal,
		DeliveryFee: c.DeliveryFee,
		Tax:         c.Tax,
		Total:       c.Total,
	}

	created, err := s.create(ctx, o)
	if err != nil {
		return nil, err
	}
	cleared, res := s.carts.ClearIfUnchanged(ctx, sessionID, version)
	switch {
	case !cleared:
		s.logger.Info("cart changed while order was placed, left in place",
			zap.String("order_id", created.ID), zap.Int("items", res.ItemCount))
	case res.PersistWarning != "":
		s.logger.Warn("cleared cart not persisted after order",
			zap.String("order_id", created.ID), zap.String("warning", res.PersistWarning))
	}
	return created, nil
}

// Reorder places a new order with the items and pricing of an earlier one.
// The session's cart is left alone.
func (s *Service) Reorder(ctx context.Context, sessionID, orderID string) (*domain.Order, error) {
	prev, err := s.Get(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	o := s.newOrder(sessionID, PlaceInput{
		DeliveryAddress:     prev.DeliveryAddress,
		PaymentMethod:       prev.PaymentMethod,
		SpecialInstructions: prev.SpecialInstructions,
	})
	o.RestaurantID = prev.RestaurantID
	o.RestaurantName = prev.RestaurantName
	o.Items = prev.Items
	o.Pricing = prev.Pricing
	return s.create(ctx, o)
}

func (s *Service) List(ctx context.Context, sessionID string, in ListInput) ([]domain.Order, error) {
	filter := orderrepo.ListFilter{ActiveOnly: in.ActiveOnly}
	if in.Status != "" {
		status := domain.OrderStatus(in.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
		}
		filter.Status = status
	}
	return s.repo.ListBySession(ctx, sessionID, filter)
}

// Get returns the order if it belongs to the session.
func (s *Service) Get(ctx context.Context, sessionID, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SessionID != sessionID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// UpdateStatus moves any order to a new status. An empty message becomes
// "Order <status>".
func (s *Service) UpdateStatus(ctx context.Context, orderID, status, message string) (*domain.Order, error) {
	st := domain.OrderStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if strings.TrimSpace(message) == "" {
		message = "Order " + string(st)
	}
	return s.repo.UpdateStatus(ctx, orderID, orderrepo.StatusChange{
		Status:  st,
		Message: message,
		At:      s.now().UTC(),
	})
}

// Cancel cancels an order that is neither delivered nor cancelled.
func (s *Service) Cancel(ctx context.Context, sessionID, orderID, reason string) (*domain.Order, error) {
	o, err := s.Get(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.Active() {
		return nil, fmt.Errorf("%w: order is already %s", domain.ErrInvalidInput, o.Status)
	}
	updated, err := s.repo.UpdateStatus(ctx, orderID, orderrepo.StatusChange{
		Status:       domain.OrderCancelled,
		Message:      "Order cancelled: " + strings.TrimSpace(reason),
		At:           s.now().UTC(),
		OnlyIfActive: true,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: order can no longer be cancelled", domain.ErrInvalidInput)
	}
	return updated, err
}

func (s *Service) Rate(ctx context.Context, sessionID, orderID string, rating int, review string) (*domain.Order, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if _, err := s.Get(ctx, sessionID, orderID); err != nil {
		return nil, err
	}
	return s.repo.SetRating(ctx, orderID, rating, strings.TrimSpace(review))
}

func (s *Service) newOrder(sessionID string, in PlaceInput) domain.Order {
	now := s.now().UTC()
	return domain.Order{
		OrderNumber:         orderNumber(now),
		SessionID:           sessionID,
		Status:              domain.OrderPending,
		Timeline:            []domain.TimelineEntry{{Status: domain.OrderPending, Timestamp: now, Message: placedMessage}},
		DeliveryAddress:     strings.TrimSpace(in.DeliveryAddress),
		PaymentMethod:       strings.TrimSpace(in.PaymentMethod),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		EstimatedDeliveryAt: now.Add(deliveryWindow),
	}
}

func (s *Service) create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.PublishOrderPlaced(ctx, *created); err != nil {
		s.logger.Warn("order placed event not published", zap.String("order_id", created.ID), zap.Error(err))
	}
	return created, nil
}

// orderNumber is ORD-<year>-<last six digits of the unix millisecond clock>.
func orderNumber(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("ORD-%d-%s", t.Year(), ms)
}

func validatePlace(in PlaceInput) error {
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return fmt.Errorf("%w: delivery address required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method required", domain.ErrInvalidInput)
	}
	return nil
}
