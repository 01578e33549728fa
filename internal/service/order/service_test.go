package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
	orderrepo "fooddelivery/internal/repository/order"
	cartsvc "fooddelivery/internal/service/cart"
)

type stubRepo struct {
	orders       map[string]*domain.Order
	nextID       int
	createErr    error
	lastFilter   orderrepo.ListFilter
	lastChange   orderrepo.StatusChange
	ratingCalled bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: make(map[string]*domain.Order)}
}

func (s *stubRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	o.ID = fmt.Sprintf("o%d", s.nextID)
	s.orders[o.ID] = &o
	out := o
	return &out, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (s *stubRepo) ListBySession(_ context.Context, sessionID string, filter orderrepo.ListFilter) ([]domain.Order, error) {
	s.lastFilter = filter
	out := []domain.Order{}
	for _, o := range s.orders {
		if o.SessionID == sessionID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id string, change orderrepo.StatusChange) (*domain.Order, error) {
	s.lastChange = change
	o, ok := s.orders[id]
	if !ok || (change.OnlyIfActive && !o.Status.Active()) {
		return nil, domain.ErrNotFound
	}
	o.Status = change.Status
	o.Timeline = append(o.Timeline, domain.TimelineEntry{Status: change.Status, Timestamp: change.At, Message: change.Message})
	out := *o
	return &out, nil
}

func (s *stubRepo) SetRating(_ context.Context, id string, rating int, review string) (*domain.Order, error) {
	s.ratingCalled = true
	o := s.orders[id]
	o.Rating = &rating
	o.Review = review
	out := *o
	return &out, nil
}

type stubCarts struct {
	cart    domain.Cart
	version uint64
	cleared []string
	warning string
	// onSnapshot runs after the snapshot is taken, standing in for a
	// concurrent request on the same session.
	onSnapshot func(*stubCarts)
}

func (s *stubCarts) Snapshot(context.Context, string) (domain.Cart, uint64) {
	c, v := s.cart, s.version
	if s.onSnapshot != nil {
		s.onSnapshot(s)
	}
	return c, v
}

func (s *stubCarts) ClearIfUnchanged(_ context.Context, sessionID string, version uint64) (bool, *cartsvc.Result) {
	if version != s.version {
		return false, &cartsvc.Result{Cart: s.cart, ItemCount: len(s.cart.Items)}
	}
	s.cleared = append(s.cleared, sessionID)
	s.cart = domain.Cart{}
	s.version++
	return true, &cartsvc.Result{PersistWarning: s.warning}
}

type recordingPublisher struct {
	published []domain.Order
	err       error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, o domain.Order) error {
	p.published = append(p.published, o)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boundCart() domain.Cart {
	r := "r1"
	return domain.Cart{
		Items: []domain.CartLineItem{
			{ID: "m1_1", MenuItemID: "m1", RestaurantID: "r1", Name: "Burger", Quantity: 2, UnitPrice: dec("13.5"), TotalPrice: dec("27")},
		},
		RestaurantID:   &r,
		RestaurantName: "Bistro",
		Subtotal:       dec("27"),
		DeliveryFee:    dec("3"),
		Tax:            dec("2.16"),
		Total:          dec("32.16"),
	}
}

var fixedNow = time.Date(2024, 3, 9, 17, 30, 0, 0, time.UTC)

func newTestService(repo *stubRepo, carts *stubCarts, pub *recordingPublisher) *Service {
	svc := New(repo, carts, pub, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func placeInput() PlaceInput {
	return PlaceInput{DeliveryAddress: " 1 Main St ", PaymentMethod: "card", SpecialInstructions: "ring twice"}
}

func TestPlace(t *testing.T) {
	repo, carts, pub := newStubRepo(), &stubCarts{cart: boundCart()}, &recordingPublisher{}
	svc := newTestService(repo, carts, pub)

	o, err := svc.Place(context.Background(), "s1", placeInput())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if !regexp.MustCompile(`^ORD-2024-\d{6}$`).MatchString(o.OrderNumber) {
		t.Fatalf("unexpected order number %q", o.OrderNumber)
	}
	if o.Status != domain.OrderPending || len(o.Timeline) != 1 || o.Timeline[0].Message != "Order placed successfully" {
		t.Fatalf("unexpected initial state %+v", o)
	}
	if !o.EstimatedDeliveryAt.Equal(fixedNow.Add(30 * time.Minute)) {
		t.Fatalf("unexpected eta %s", o.EstimatedDeliveryAt)
	}
	if o.RestaurantID != "r1" || o.DeliveryAddress != "1 Main St" || !o.Pricing.Total.Equal(dec("32.16")) {
		t.Fatalf("order not built from cart %+v", o)
	}
	if len(carts.cleared) != 1 || carts.cleared[0] != "s1" {
		t.Fatalf("cart not cleared: %v", carts.cleared)
	}
	if len(pub.published) != 1 || pub.published[0].ID != o.ID {
		t.Fatalf("event not published")
	}
}

func TestPlaceValidation(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubCarts{}, &recordingPublisher{})
	if _, err := svc.Place(context.Background(), "s1", placeInput()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty cart rejection, got %v", err)
	}

	svc = newTestService(newStubRepo(), &stubCarts{cart: boundCart()}, &recordingPublisher{})
	if _, err := svc.Place(context.Background(), "s1", PlaceInput{PaymentMethod: "card"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected missing address rejection, got %v", err)
	}
	if _, err := svc.Place(context.Background(), "s1", PlaceInput{DeliveryAddress: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected missing payment rejection, got %v", err)
	}
}

func TestPlaceKeepsCartWhenCreateFails(t *testing.T) {
	repo, carts := newStubRepo(), &stubCarts{cart: boundCart()}
	repo.createErr = errors.New("db down")
	svc := newTestService(repo, carts, &recordingPublisher{})

	if _, err := svc.Place(context.Background(), "s1", placeInput()); err == nil {
		t.Fatalf("expected error")
	}
	if len(carts.cleared) != 0 {
		t.Fatalf("cart cleared although order failed")
	}
}

func TestPlaceSurvivesPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(newStubRepo(), &stubCarts{cart: boundCart(), warning: "disk full"}, pub)

	if _, err := svc.Place(context.Background(), "s1", placeInput()); err != nil {
		t.Fatalf("publish failure should not fail the order: %v", err)
	}
}

func TestGetHidesOtherSessionsOrders(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubCarts{cart: boundCart()}, &recordingPublisher{})
	o, _ := svc.Place(context.Background(), "s1", placeInput())

	if _, err := svc.Get(context.Background(), "s2", o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "s2", o.ID, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on cancel, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubCarts{cart: boundCart()}, &recordingPublisher{})
	o, _ := svc.Place(context.Background(), "s1", placeInput())

	cancelled, err := svc.Cancel(context.Background(), "s1", o.ID, "changed my mind")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.OrderCancelled || cancelled.Timeline[1].Message != "Order cancelled: changed my mind" {
		t.Fatalf("unexpected cancelled order %+v", cancelled)
	}
	if !repo.lastChange.OnlyIfActive {
		t.Fatalf("cancel must be conditional on an active order")
	}

	if _, err := svc.Cancel(context.Background(), "s1", o.ID, "again"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected second cancel rejected, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubCarts{cart: boundCart()}, &recordingPublisher{})
	o, _ := svc.Place(context.Background(), "s1", placeInput())

	updated, err := svc.UpdateStatus(context.Background(), o.ID, "preparing", "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.OrderPreparing || repo.lastChange.Message != "Order preparing" {
		t.Fatalf("unexpected update %+v message=%q", updated, repo.lastChange.Message)
	}
	if _, err := svc.UpdateStatus(context.Background(), o.ID, "teleported", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unknown status rejected, got %v", err)
	}
}

func TestRate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubCarts{cart: boundCart()}, &recordingPublisher{})
	o, _ := svc.Place(context.Background(), "s1", placeInput())

	for _, bad := range []int{0, 6} {
		if _, err := svc.Rate(context.Background(), "s1", o.ID, bad, ""); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("rating %d: expected invalid input, got %v", bad, err)
		}
	}
	if repo.ratingCalled {
		t.Fatalf("invalid rating reached the repository")
	}
	rated, err := svc.Rate(context.Background(), "s1", o.ID, 4, " tasty ")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if *rated.Rating != 4 || rated.Review != "tasty" {
		t.Fatalf("unexpected rating %+v", rated)
	}
}

func TestReorder(t *testing.T) {
	repo, carts, pub := newStubRepo(), &stubCarts{cart: boundCart()}, &recordingPublisher{}
	svc := newTestService(repo, carts, pub)
	first, _ := svc.Place(context.Background(), "s1", placeInput())

	again, err := svc.Reorder(context.Background(), "s1", first.ID)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if again.ID == first.ID || again.Status != domain.OrderPending || len(again.Items) != 1 {
		t.Fatalf("unexpected reorder %+v", again)
	}
	if again.DeliveryAddress != first.DeliveryAddress || !again.Pricing.Total.Equal(first.Pricing.Total) {
		t.Fatalf("reorder did not copy details")
	}
	if len(carts.cleared) != 1 || len(pub.published) != 2 {
		t.Fatalf("reorder cleared=%d published=%d", len(carts.cleared), len(pub.published))
	}
}

func TestListValidatesStatus(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubCarts{}, &recordingPublisher{})

	if _, err := svc.List(context.Background(), "s1", ListInput{Status: "lost"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := svc.List(context.Background(), "s1", ListInput{Status: "delivered", ActiveOnly: true}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Status != domain.OrderDelivered || !repo.lastFilter.ActiveOnly {
		t.Fatalf("filter not passed through: %+v", repo.lastFilter)
	}
}

func TestOrderNumber(t *testing.T) {
	ts := time.UnixMilli(1700000123456).UTC()
	if got := orderNumber(ts); got != "ORD-2023-123456" {
		t.Fatalf("unexpected order number %q", got)
	}
}

func TestPlaceKeepsCartChangedMeanwhile(t *testing.T) {
	repo, pub := newStubRepo(), &recordingPublisher{}
	carts := &stubCarts{cart: boundCart(), onSnapshot: func(s *stubCarts) {
		s.cart.Items = append(s.cart.Items, domain.CartLineItem{ID: "m2_1", MenuItemID: "m2", RestaurantID: "r1", Quantity: 1})
		s.version++
	}}
	svc := newTestService(repo, carts, pub)

	o, err := svc.Place(context.Background(), "s1", placeInput())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(o.Items) != 1 {
		t.Fatalf("order should hold the snapshot items, got %d", len(o.Items))
	}
	if len(carts.cleared) != 0 || len(carts.cart.Items) != 2 {
		t.Fatalf("cart changed after snapshot was cleared: cleared=%v items=%d", carts.cleared, len(carts.cart.Items))
	}
}
