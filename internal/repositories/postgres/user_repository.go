package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type UserRepository struct {
	db querier
}

const insertUser = `
    INSERT INTO users (id, name, email, phone, role, join_date)
    VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *UserRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"users"},
		[]string{"id", "name", "email", "phone", "role", "join_date"},
		pgx.CopyFromSlice(len(users), func(i int) ([]any, error) {
			return []any{
				users[i].ID,
				users[i].Name,
				users[i].Email,
				users[i].Phone,
				string(users[i].Role),
				users[i].JoinDate,
			}, nil
		}),
	)
	return mapError(err)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.Exec(ctx, insertUser,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		string(user.Role),
		user.JoinDate,
	)
	return mapError(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, phone, role, join_date FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &role, &user.JoinDate)
	if err != nil {
		return nil, mapError(err)
	}
	user.Role = models.Role(role)
	return user, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
