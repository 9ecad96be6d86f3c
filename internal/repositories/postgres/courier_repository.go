package postgres

import (
	"context"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type EarningsRepository struct {
	db querier
}

func (r *EarningsRepository) Create(ctx context.Context, earning *models.CourierEarning) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO courier_earnings (id, courier_id, order_id, amount, confirmed_at)
        VALUES ($1, $2, $3, $4, $5)
    `, earning.ID, earning.CourierID, earning.OrderID, earning.Amount, earning.ConfirmedAt)
	return mapError(err)
}

func (r *EarningsRepository) GetByOrderID(ctx context.Context, orderID string) (*models.CourierEarning, error) {
	earning := &models.CourierEarning{}
	err := r.db.QueryRow(ctx, `
        SELECT id, courier_id, order_id, amount, confirmed_at
        FROM courier_earnings WHERE order_id = $1
    `, orderID).Scan(&earning.ID, &earning.CourierID, &earning.OrderID, &earning.Amount, &earning.ConfirmedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return earning, nil
}

// period bounds are passed as nullable timestamps so zero values leave the range open
func bounds(from, to time.Time) (*time.Time, *time.Time) {
	var f, t *time.Time
	if !from.IsZero() {
		f = &from
	}
	if !to.IsZero() {
		t = &to
	}
	return f, t
}

func (r *EarningsRepository) ListByCourier(ctx context.Context, courierID string, from, to time.Time, limit int) ([]*models.CourierEarning, error) {
	f, t := bounds(from, to)
	query := `
        SELECT id, courier_id, order_id, amount, confirmed_at
        FROM courier_earnings
        WHERE courier_id = $1
          AND ($2::timestamptz IS NULL OR confirmed_at >= $2)
          AND ($3::timestamptz IS NULL OR confirmed_at < $3)
        ORDER BY confirmed_at DESC
    `
	args := []any{courierID, f, t}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []*models.CourierEarning
	for rows.Next() {
		earning := &models.CourierEarning{}
		if err := rows.Scan(&earning.ID, &earning.CourierID, &earning.OrderID, &earning.Amount, &earning.ConfirmedAt); err != nil {
			return nil, err
		}
		earnings = append(earnings, earning)
	}
	return earnings, rows.Err()
}

func (r *EarningsRepository) Totals(ctx context.Context, courierID string, from, to time.Time) (models.EarningsTotals, error) {
	f, t := bounds(from, to)
	var totals models.EarningsTotals
	err := r.db.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0)::float8, COUNT(*)
        FROM courier_earnings
        WHERE courier_id = $1
          AND ($2::timestamptz IS NULL OR confirmed_at >= $2)
          AND ($3::timestamptz IS NULL OR confirmed_at < $3)
    `, courierID, f, t).Scan(&totals.Total, &totals.Deliveries)
	return totals, err
}

type CourierStatusRepository struct {
	db querier
}

func (r *CourierStatusRepository) Upsert(ctx context.Context, status *models.CourierStatus) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO courier_status (courier_id, is_online, last_update)
        VALUES ($1, $2, $3)
        ON CONFLICT (courier_id) DO UPDATE
        SET is_online = EXCLUDED.is_online, last_update = EXCLUDED.last_update
    `, status.CourierID, status.IsOnline, status.LastUpdate)
	return err
}

func (r *CourierStatusRepository) Get(ctx context.Context, courierID string) (*models.CourierStatus, error) {
	status := &models.CourierStatus{}
	err := r.db.QueryRow(ctx,
		`SELECT courier_id, is_online, last_update FROM courier_status WHERE courier_id = $1`, courierID,
	).Scan(&status.CourierID, &status.IsOnline, &status.LastUpdate)
	if err != nil {
		return nil, mapError(err)
	}
	return status, nil
}

var (
	_ repositories.EarningsRepository      = (*EarningsRepository)(nil)
	_ repositories.CourierStatusRepository = (*CourierStatusRepository)(nil)
)
