package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

const selectColumns = `
SELECT id::text, restaurant_id::text, key, name, COALESCE(description, ''), COALESCE(category, ''), base_price::text, images, sizes, toppings, available, popular, created_at
FROM menu_items
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("menu_repo")}
}

func (r *postgresRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	if _, err := uuid.Parse(restaurantID); err != nil {
		return []domain.MenuItem{}, nil
	}
	items, err := r.query(ctx, selectColumns+`
WHERE restaurant_id = $1
ORDER BY popular DESC, category ASC, name ASC
`, restaurantID)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("list", zap.String("restaurant_id", restaurantID), zap.Int("count", len(items)))
	return items, nil
}

func (r *postgresRepo) Search(ctx context.Context, query string) ([]domain.MenuItem, error) {
	return r.query(ctx, selectColumns+`
WHERE available AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
ORDER BY popular DESC, name ASC
LIMIT 50
`, query)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	item, err := scanMenuItem(r.pool.QueryRow(ctx, selectColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get: not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
INSERT INTO menu_items (restaurant_id, key, name, description, category, base_price, images, sizes, toppings, available, popular)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6::numeric, $7, $8, $9, $10, $11)
ON CONFLICT (restaurant_id, key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    base_price = EXCLUDED.base_price,
    images = EXCLUDED.images,
    sizes = EXCLUDED.sizes,
    toppings = EXCLUDED.toppings,
    available = EXCLUDED.available,
    popular = EXCLUDED.popular
RETURNING id::text, created_at
`
	out := item
	if out.Images == nil {
		out.Images = []string{}
	}
	if out.Sizes == nil {
		out.Sizes = []domain.SizeOption{}
	}
	if out.Toppings == nil {
		out.Toppings = []domain.ToppingOption{}
	}
	err := r.pool.QueryRow(ctx, q,
		out.RestaurantID,
		out.Key,
		out.Name,
		out.Description,
		out.Category,
		out.BasePrice.String(),
		out.Images,
		out.Sizes,
		out.Toppings,
		out.Available,
		out.Popular,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("upsert", zap.String("key", item.Key), zap.String("restaurant_id", item.RestaurantID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted", zap.String("key", out.Key), zap.String("id", out.ID))
	return &out, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("query", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("query rows", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	var price string
	if err := row.Scan(&item.ID, &item.RestaurantID, &item.Key, &item.Name, &item.Description, &item.Category, &price, &item.Images, &item.Sizes, &item.Toppings, &item.Available, &item.Popular, &item.CreatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	item.BasePrice = p
	return &item, nil
}
