package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type OrderRepository struct {
	db querier
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
        INSERT INTO orders (
            id, order_number, customer_id, restaurant_id, courier_id, subtotal,
            delivery_fee, discount, total, payment_method, status, needs_change,
            change_for, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
        )
    `
	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.RestaurantID,
		order.CourierID,
		order.Subtotal,
		order.DeliveryFee,
		order.Discount,
		order.Total,
		string(order.PaymentMethod),
		string(order.Status),
		order.NeedsChange,
		order.ChangeFor,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	for _, item := range order.Items {
		_, err := r.db.Exec(ctx, `
            INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, item.ID, order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item.ProductID, mapError(err))
		}
	}

	for i := range order.Timeline {
		if err := r.AppendTimeline(ctx, &order.Timeline[i]); err != nil {
			return err
		}
	}
	return nil
}

const selectOrders = `
    SELECT id, order_number, customer_id, restaurant_id, courier_id, subtotal,
           delivery_fee, discount, total, payment_method, status, needs_change,
           change_for, created_at, updated_at
    FROM orders
`

func (r *OrderRepository) scanOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var paymentMethod, status string
		if err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.CustomerID,
			&order.RestaurantID,
			&order.CourierID,
			&order.Subtotal,
			&order.DeliveryFee,
			&order.Discount,
			&order.Total,
			&paymentMethod,
			&status,
			&order.NeedsChange,
			&order.ChangeFor,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		order.PaymentMethod = models.PaymentMethod(paymentMethod)
		order.Status = models.OrderStatus(status)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) loadDetails(ctx context.Context, order *models.Order) error {
	itemRows, err := r.db.Query(ctx, `
        SELECT id, product_id, product_name, quantity, unit_price
        FROM order_items WHERE order_id = $1 ORDER BY id
    `, order.ID)
	if err != nil {
		return err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		item := models.OrderItem{OrderID: order.ID}
		if err := itemRows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	timelineRows, err := r.db.Query(ctx, `
        SELECT id, status, notes, actor_id, created_at
        FROM order_timeline WHERE order_id = $1 ORDER BY created_at, id
    `, order.ID)
	if err != nil {
		return err
	}
	defer timelineRows.Close()
	for timelineRows.Next() {
		entry := models.TimelineEntry{OrderID: order.ID}
		var status string
		if err := timelineRows.Scan(&entry.ID, &status, &entry.Notes, &entry.ActorID, &entry.CreatedAt); err != nil {
			return err
		}
		entry.Status = models.OrderStatus(status)
		order.Timeline = append(order.Timeline, entry)
	}
	return timelineRows.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := r.scanOrders(ctx, selectOrders+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, repositories.ErrNotFound
	}
	if err := r.loadDetails(ctx, orders[0]); err != nil {
		return nil, err
	}
	return orders[0], nil
}

func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CustomerID != "" {
		add("customer_id", filter.CustomerID)
	}
	if filter.RestaurantID != "" {
		add("restaurant_id", filter.RestaurantID)
	}
	if filter.CourierID != "" {
		add("courier_id", filter.CourierID)
	}
	if filter.Status != "" {
		add("status", string(filter.Status))
	}

	query := selectOrders
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	orders, err := r.scanOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if err := r.loadDetails(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, courierID string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE orders
        SET status = $2,
            courier_id = CASE WHEN $3 = '' THEN courier_id ELSE $3 END,
            updated_at = $4
        WHERE id = $1
    `, id, string(status), courierID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO order_timeline (id, order_id, status, notes, actor_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, entry.ID, entry.OrderID, string(entry.Status), entry.Notes, entry.ActorID, entry.CreatedAt)
	return mapError(err)
}
