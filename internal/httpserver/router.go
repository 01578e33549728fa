package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	cartsvc "fooddelivery/internal/service/cart"
	catalogsvc "fooddelivery/internal/service/catalog"
	ordersvc "fooddelivery/internal/service/order"
	sessionsvc "fooddelivery/internal/service/session"
)

type CatalogService interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)
	Search(ctx context.Context, query string) (*catalogsvc.SearchResult, error)
}

type CartService interface {
	Get(ctx context.Context, sessionID string) *cartsvc.Result
	Update(ctx context.Context, sessionID string, in cartsvc.UpdateInput) (*cartsvc.Result, error)
	Clear(ctx context.Context, sessionID string) *cartsvc.Result
	Conflict(ctx context.Context, sessionID, restaurantID string) bool
	Discard(ctx context.Context, sessionID string) error
}

type OrderService interface {
	Place(ctx context.Context, sessionID string, in ordersvc.PlaceInput) (*domain.Order, error)
	List(ctx context.Context, sessionID string, in ordersvc.ListInput) ([]domain.Order, error)
	Get(ctx context.Context, sessionID, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, sessionID, orderID, reason string) (*domain.Order, error)
	Rate(ctx context.Context, sessionID, orderID string, rating int, review string) (*domain.Order, error)
	Reorder(ctx context.Context, sessionID, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status, message string) (*domain.Order, error)
}

type SessionService interface {
	Issue(ctx context.Context) (*sessionsvc.Issued, error)
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) (string, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Catalog     CatalogService
	Carts       CartService
	Orders      OrderService
	Sessions    SessionService
	AdminAPIKey string
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("httpserver: catalog service required")
	case d.Carts == nil:
		return errors.New("httpserver: cart service required")
	case d.Orders == nil:
		return errors.New("httpserver: order service required")
	case d.Sessions == nil:
		return errors.New("httpserver: session service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/sessions", createSessionHandler(deps.Sessions))
	router.DELETE("/sessions", endSessionHandler(deps.Sessions, deps.Carts))

	router.GET("/restaurants", listRestaurantsHandler(deps.Catalog))
	router.GET("/restaurants/:id", getRestaurantHandler(deps.Catalog))
	router.GET("/restaurants/:id/menu", restaurantMenuHandler(deps.Catalog))
	router.GET("/menu-items/:id", getMenuItemHandler(deps.Catalog))
	router.GET("/search", searchHandler(deps.Catalog))

	me := router.Group("/me", sessionMiddleware(deps.Sessions))
	me.GET("/cart", getCartHandler(deps.Carts))
	me.POST("/cart", updateCartHandler(deps.Carts))
	me.DELETE("/cart", clearCartHandler(deps.Carts))
	me.GET("/cart/conflict", cartConflictHandler(deps.Carts))

	me.POST("/orders", placeOrderHandler(deps.Orders))
	me.GET("/orders", listOrdersHandler(deps.Orders))
	me.GET("/orders/:id", getOrderHandler(deps.Orders))
	me.POST("/orders/:id/cancel", cancelOrderHandler(deps.Orders))
	me.POST("/orders/:id/rating", rateOrderHandler(deps.Orders))
	me.POST("/orders/:id/reorder", reorderHandler(deps.Orders))

	admin := router.Group("/orders", apiKeyMiddleware(deps.AdminAPIKey))
	admin.PATCH("/:id/status", updateOrderStatusHandler(deps.Orders))

	return router, nil
}
