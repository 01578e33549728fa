package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fooddelivery/internal/cart"
	"fooddelivery/internal/config"
	"fooddelivery/internal/db"
	"fooddelivery/internal/events"
	"fooddelivery/internal/httpserver"
	"fooddelivery/internal/kvstore"
	"fooddelivery/internal/logging"
	"fooddelivery/internal/migrate"
	menurepo "fooddelivery/internal/repository/menu"
	orderrepo "fooddelivery/internal/repository/order"
	restaurantrepo "fooddelivery/internal/repository/restaurant"
	tokenrepo "fooddelivery/internal/repository/token"
	cartsvc "fooddelivery/internal/service/cart"
	catalogsvc "fooddelivery/internal/service/catalog"
	ordersvc "fooddelivery/internal/service/order"
	sessionsvc "fooddelivery/internal/service/session"
)

const sessionPurgeInterval = time.Minute

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New("api", cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	policy, ok := cart.ParseReplacePolicy(cfg.CartReplacePolicy)
	if !ok {
		logger.Fatal("unknown cart replace policy", zap.String("policy", cfg.CartReplacePolicy))
	}
	store, err := cartStore(cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init cart store", zap.Error(err))
	}

	publisher := events.NewNop()
	if cfg.AMQPURL != "" {
		publisher, err = events.DialAMQP(cfg.AMQPURL, cfg.OrdersExchange, logger)
		if err != nil {
			logger.Fatal("connect to broker", zap.Error(err))
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
	}()

	restaurantRepo := restaurantrepo.NewPostgres(dbpool, logger)
	menuRepo := menurepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(restaurantRepo, menuRepo)
	carts := cart.NewSessions(store, cfg.CartKey, policy, logger)
	cartService := cartsvc.New(carts, catalogService, logger)
	orderService := ordersvc.New(orderRepo, cartService, publisher, logger)
	tokens, err := tokenRepository(cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init session store", zap.Error(err))
	}
	sessionService := sessionsvc.New(cfg.SessionTTL, tokens, logger)

	go purgeSessions(ctx, sessionService, carts, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:     catalogService,
		Carts:       cartService,
		Orders:      orderService,
		Sessions:    sessionService,
		AdminAPIKey: cfg.AdminAPIKey,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	if err := carts.Flush(shutdownCtx); err != nil {
		logger.Warn("carts left stale in store", zap.Error(err))
	}
}

func cartStore(cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (kvstore.Store, error) {
	switch cfg.CartStore {
	case config.StorePostgres:
		return kvstore.NewPostgres(pool, logger), nil
	case config.StoreFile:
		return kvstore.NewFile(cfg.CartStoreFile), nil
	case config.StoreMemory:
		return kvstore.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
}

func tokenRepository(cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (tokenrepo.Repository, error) {
	switch cfg.SessionStore {
	case config.StorePostgres:
		return tokenrepo.NewPostgres(pool, logger), nil
	case config.StoreMemory:
		return tokenrepo.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}

// purgeSessions drops expired sessions and their in-memory cart engines.
// Durable cart copies stay in the store.
func purgeSessions(ctx context.Context, sessions *sessionsvc.Service, carts *cart.Sessions, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			for _, id := range expired {
				carts.Forget(id)
			}
			if len(expired) == 0 {
				continue
			}
			fields := []zap.Field{zap.Int("count", len(expired)), zap.Int("live_carts", carts.Len())}
			if active, err := sessions.Active(ctx); err == nil {
				fields = append(fields, zap.Int("active_sessions", active))
			}
			logger.Info("purged expired sessions", fields...)
		}
	}
}
