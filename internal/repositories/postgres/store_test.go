package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, repositories.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), repositories.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "courier_earnings_order_key"}, repositories.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	other := errors.New("connection refused")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestBounds(t *testing.T) {
	from, to := bounds(time.Time{}, time.Time{})
	assert.Nil(t, from)
	assert.Nil(t, to)

	now := time.Now()
	from, to = bounds(now, now.Add(time.Hour))
	if assert.NotNil(t, from) && assert.NotNil(t, to) {
		assert.True(t, from.Equal(now))
		assert.True(t, to.Equal(now.Add(time.Hour)))
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	data, err := migrationFiles.ReadFile("migrations/0001_init.up.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(data), "CONSTRAINT courier_earnings_order_key UNIQUE (order_id)")
	assert.Contains(t, string(data), "CONSTRAINT chat_channels_order_type_key UNIQUE (order_id, type)")
}
