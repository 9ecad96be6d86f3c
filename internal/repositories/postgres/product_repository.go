package postgres

import (
	"context"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type ProductRepository struct {
	db querier
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
        INSERT INTO products (id, restaurant_id, name, description, price, active)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.RestaurantID,
		product.Name,
		product.Description,
		product.Price,
		product.Active,
	)
	if err != nil {
		return mapError(err)
	}

	for _, shiftID := range product.ShiftIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO product_shifts (product_id, shift_id) VALUES ($1, $2)`, product.ID, shiftID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

const selectProducts = `
    SELECT p.id, p.restaurant_id, p.name, p.description, p.price, p.active,
           COALESCE(array_agg(ps.shift_id) FILTER (WHERE ps.shift_id IS NOT NULL), '{}')
    FROM products p
    LEFT JOIN product_shifts ps ON ps.product_id = p.id
`

func (r *ProductRepository) scan(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(
			&product.ID,
			&product.RestaurantID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Active,
			&product.ShiftIDs,
		); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	products, err := r.scan(ctx, selectProducts+` WHERE p.id = ANY($1) GROUP BY p.id`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *ProductRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error) {
	return r.scan(ctx, selectProducts+` WHERE p.restaurant_id = $1 GROUP BY p.id ORDER BY p.name`, restaurantID)
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, price float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
