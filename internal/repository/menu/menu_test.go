package menu

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/migrate"
)

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var restaurantID string
	err := pool.QueryRow(ctx, `INSERT INTO restaurants (key, name) VALUES ('bistro', 'Bistro') RETURNING id::text`).Scan(&restaurantID)
	if err != nil {
		t.Fatalf("insert restaurant: %v", err)
	}

	repo := NewPostgres(pool, nil)
	item, err := repo.Upsert(ctx, domain.MenuItem{
		RestaurantID: restaurantID,
		Key:          "margherita",
		Name:         "Margherita",
		Category:     "Pizza",
		BasePrice:    decimal.RequireFromString("12.99"),
		Images:       []string{"https://example.com/m.jpg"},
		Sizes:        []domain.SizeOption{{Name: "Large", PriceModifier: decimal.RequireFromString("3")}},
		Toppings:     []domain.ToppingOption{{Name: "Basil", Price: decimal.RequireFromString("0.5")}},
		Available:    true,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	list, err := repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		t.Fatalf("ListByRestaurant: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.BasePrice.Equal(decimal.RequireFromString("12.99")) || len(got.Sizes) != 1 || len(got.Toppings) != 1 || got.Images[0] != "https://example.com/m.jpg" {
		t.Fatalf("unexpected item %+v", got)
	}

	hits, err := repo.Search(ctx, "pizza")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected category match, got %d", len(hits))
	}

	updated, err := repo.Upsert(ctx, domain.MenuItem{
		RestaurantID: restaurantID,
		Key:          "margherita",
		Name:         "Margherita",
		BasePrice:    decimal.RequireFromString("13.49"),
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != item.ID {
		t.Fatalf("expected same ID after update")
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE menu_items, restaurants RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
