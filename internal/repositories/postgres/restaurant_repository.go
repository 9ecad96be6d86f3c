package postgres

import (
	"context"
	"fmt"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type RestaurantRepository struct {
	db querier
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	query := `
        INSERT INTO restaurants (id, owner_id, name, active, delivery_fee)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query,
		restaurant.ID,
		restaurant.OwnerID,
		restaurant.Name,
		restaurant.Active,
		restaurant.DeliveryFee,
	)
	if err != nil {
		return mapError(err)
	}

	for _, day := range restaurant.OperatingDays {
		_, err := r.db.Exec(ctx,
			`INSERT INTO operating_days (restaurant_id, day_of_week, enabled) VALUES ($1, $2, $3)`,
			restaurant.ID, day.DayOfWeek, day.Enabled,
		)
		if err != nil {
			return mapError(err)
		}
	}

	for _, shift := range restaurant.Shifts {
		_, err := r.db.Exec(ctx,
			`INSERT INTO shifts (id, restaurant_id, name, start_time, end_time) VALUES ($1, $2, $3, $4, $5)`,
			shift.ID, restaurant.ID, shift.Name, shift.StartTime, shift.EndTime,
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, active, delivery_fee FROM restaurants WHERE id = $1`, id,
	).Scan(
		&restaurant.ID,
		&restaurant.OwnerID,
		&restaurant.Name,
		&restaurant.Active,
		&restaurant.DeliveryFee,
	)
	if err != nil {
		return nil, mapError(err)
	}

	if err := r.loadSchedule(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (r *RestaurantRepository) loadSchedule(ctx context.Context, restaurant *models.Restaurant) error {
	dayRows, err := r.db.Query(ctx,
		`SELECT day_of_week, enabled FROM operating_days WHERE restaurant_id = $1 ORDER BY day_of_week`, restaurant.ID)
	if err != nil {
		return fmt.Errorf("query operating days: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		day := models.OperatingDay{RestaurantID: restaurant.ID}
		if err := dayRows.Scan(&day.DayOfWeek, &day.Enabled); err != nil {
			return err
		}
		restaurant.OperatingDays = append(restaurant.OperatingDays, day)
	}
	if err := dayRows.Err(); err != nil {
		return err
	}

	shiftRows, err := r.db.Query(ctx,
		`SELECT id, name, start_time, end_time FROM shifts WHERE restaurant_id = $1 ORDER BY start_time`, restaurant.ID)
	if err != nil {
		return fmt.Errorf("query shifts: %w", err)
	}
	defer shiftRows.Close()

	for shiftRows.Next() {
		shift := models.Shift{RestaurantID: restaurant.ID}
		if err := shiftRows.Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime); err != nil {
			return err
		}
		restaurant.Shifts = append(restaurant.Shifts, shift)
	}
	return shiftRows.Err()
}

func (r *RestaurantRepository) GetAll(ctx context.Context) ([]*models.Restaurant, error) {
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, name, active, delivery_fee FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}

	var restaurants []*models.Restaurant
	for rows.Next() {
		restaurant := &models.Restaurant{}
		if err := rows.Scan(
			&restaurant.ID,
			&restaurant.OwnerID,
			&restaurant.Name,
			&restaurant.Active,
			&restaurant.DeliveryFee,
		); err != nil {
			rows.Close()
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// a transaction connection cannot run a second query while rows are open
	for _, restaurant := range restaurants {
		if err := r.loadSchedule(ctx, restaurant); err != nil {
			return nil, err
		}
	}
	return restaurants, nil
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}

var _ repositories.RestaurantRepository = (*RestaurantRepository)(nil)
