package order

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

const returningColumns = `
id::text, order_number, session_id, restaurant_id, restaurant_name, items,
subtotal::text, delivery_fee::text, tax::text, total::text,
status, timeline, delivery_address, payment_method, COALESCE(special_instructions, ''),
rating, COALESCE(review, ''), estimated_delivery_at, delivered_at, created_at, updated_at
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	q := `
INSERT INTO orders (order_number, session_id, restaurant_id, restaurant_name, items,
    subtotal, delivery_fee, tax, total, status, timeline,
    delivery_address, payment_method, special_instructions, estimated_delivery_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12, $13, NULLIF($14, ''), $15)
RETURNING ` + returningColumns

	items := o.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	timeline := o.Timeline
	if timeline == nil {
		timeline = []domain.TimelineEntry{}
	}
	created, err := scanOrder(r.pool.QueryRow(ctx, q,
		o.OrderNumber,
		o.SessionID,
		o.RestaurantID,
		o.RestaurantName,
		items,
		o.Pricing.Subtotal.String(),
		o.Pricing.DeliveryFee.String(),
		o.Pricing.Tax.String(),
		o.Pricing.Total.String(),
		string(o.Status),
		timeline,
		o.DeliveryAddress,
		o.PaymentMethod,
		o.SpecialInstructions,
		o.EstimatedDeliveryAt,
	))
	if err != nil {
		r.logger.Error("create", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, err
	}
	r.logger.Info("order created", zap.String("id", created.ID), zap.String("order_number", created.OrderNumber))
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+returningColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, r.notFound("get", id, err)
	}
	return o, nil
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string, filter ListFilter) ([]domain.Order, error) {
	q := `SELECT ` + returningColumns + ` FROM orders WHERE session_id = $1`
	args := []interface{}{sessionID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		q += ` AND status = $2`
	}
	if filter.ActiveOnly {
		q += ` AND status NOT IN ('delivered', 'cancelled')`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, change StatusChange) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `
UPDATE orders
SET status = $2,
    timeline = timeline || $3::jsonb,
    delivered_at = CASE WHEN $2 = 'delivered' THEN $4 ELSE delivered_at END,
    updated_at = $4
WHERE id = $1`
	if change.OnlyIfActive {
		q += ` AND status NOT IN ('delivered', 'cancelled')`
	}
	q += `
RETURNING ` + returningColumns

	entry := []domain.TimelineEntry{{Status: change.Status, Timestamp: change.At, Message: change.Message}}
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id, string(change.Status), entry, change.At))
	if err != nil {
		return nil, r.notFound("update status", id, err)
	}
	r.logger.Info("order status changed", zap.String("id", id), zap.String("status", string(change.Status)))
	return o, nil
}

func (r *postgresRepo) SetRating(ctx context.Context, id string, rating int, review string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `
UPDATE orders
SET rating = $2, review = NULLIF($3, ''), updated_at = now()
WHERE id = $1
RETURNING ` + returningColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id, rating, review))
	if err != nil {
		return nil, r.notFound("rate", id, err)
	}
	return o, nil
}

func (r *postgresRepo) notFound(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	r.logger.Error(op, zap.String("id", id), zap.Error(err))
	return err
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var subtotal, fee, tax, total, status string
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.SessionID,
		&o.RestaurantID,
		&o.RestaurantName,
		&o.Items,
		&subtotal,
		&fee,
		&tax,
		&total,
		&status,
		&o.Timeline,
		&o.DeliveryAddress,
		&o.PaymentMethod,
		&o.SpecialInstructions,
		&o.Rating,
		&o.Review,
		&o.EstimatedDeliveryAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{subtotal, &o.Pricing.Subtotal},
		{fee, &o.Pricing.DeliveryFee},
		{tax, &o.Pricing.Tax},
		{total, &o.Pricing.Total},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}
	return &o, nil
}
