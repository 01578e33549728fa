package restaurant

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
SELECT id::text, key, name, COALESCE(cuisine, ''), COALESCE(description, ''), rating::text, delivery_fee::text, delivery_time_minutes, images, is_open, created_at
FROM restaurants
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("restaurant_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Restaurant, error) {
	return r.query(ctx, selectColumns+`ORDER BY name ASC`)
}

func (r *postgresRepo) Search(ctx context.Context, query string) ([]domain.Restaurant, error) {
	return r.query(ctx, selectColumns+`
WHERE name ILIKE '%' || $1 || '%' OR cuisine ILIKE '%' || $1 || '%'
ORDER BY rating DESC, name ASC
`, query)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.get(ctx, selectColumns+`WHERE id = $1`, id)
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Restaurant, error) {
	return r.get(ctx, selectColumns+`WHERE key = $1`, key)
}

func (r *postgresRepo) Upsert(ctx context.Context, in domain.Restaurant) (*domain.Restaurant, error) {
	const q = `
INSERT INTO restaurants (key, name, cuisine, description, rating, delivery_fee, delivery_time_minutes, images, is_open)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5::numeric, $6::numeric, $7, $8, $9)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    cuisine = EXCLUDED.cuisine,
    description = EXCLUDED.description,
    rating = EXCLUDED.rating,
    delivery_fee = EXCLUDED.delivery_fee,
    delivery_time_minutes = EXCLUDED.delivery_time_minutes,
    images = EXCLUDED.images,
    is_open = EXCLUDED.is_open
RETURNING id::text, created_at
`
	images := in.Images
	if images == nil {
		images = []string{}
	}
	out := in
	err := r.pool.QueryRow(ctx, q,
		in.Key,
		in.Name,
		in.Cuisine,
		in.Description,
		in.Rating.String(),
		in.DeliveryFee.String(),
		in.DeliveryTimeMinutes,
		images,
		in.IsOpen,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("upsert", zap.String("key", in.Key), zap.Error(err))
		return nil, err
	}
	out.Images = images
	r.logger.Debug("upserted", zap.String("key", out.Key), zap.String("id", out.ID))
	return &out, nil
}

func (r *postgresRepo) get(ctx context.Context, q string, arg string) (*domain.Restaurant, error) {
	res, err := scanRestaurant(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String("arg", arg), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Restaurant, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Restaurant{}
	for rows.Next() {
		res, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var res domain.Restaurant
	var rating, fee string
	if err := row.Scan(&res.ID, &res.Key, &res.Name, &res.Cuisine, &res.Description, &rating, &fee, &res.DeliveryTimeMinutes, &res.Images, &res.IsOpen, &res.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if res.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, err
	}
	if res.DeliveryFee, err = decimal.NewFromString(fee); err != nil {
		return nil, err
	}
	return &res, nil
}
