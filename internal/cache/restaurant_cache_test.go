package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type countingRepo struct {
	repositories.RestaurantRepository
	restaurants map[string]*models.Restaurant
	calls       int
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	r.calls++
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return restaurant, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedRestaurantReadThrough(t *testing.T) {
	_, rdb := setup(t)
	ctx := context.Background()
	real := &countingRepo{restaurants: map[string]*models.Restaurant{
		"r1": {ID: "r1", Name: "Cantina", Active: true, Shifts: []models.Shift{{ID: "s1", Name: "Lunch", StartTime: "11:00", EndTime: "14:00"}}},
	}}
	repo := NewCachedRestaurantRepository(real, rdb, time.Minute)

	first, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, 1, real.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "Lunch", second.Shifts[0].Name)
}

func TestCachedRestaurantCachesNotFound(t *testing.T) {
	_, rdb := setup(t)
	ctx := context.Background()
	real := &countingRepo{restaurants: map[string]*models.Restaurant{}}
	repo := NewCachedRestaurantRepository(real, rdb, time.Minute)

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, 1, real.calls)
}

func TestCachedRestaurantFallsBackWhenRedisIsDown(t *testing.T) {
	mr, rdb := setup(t)
	ctx := context.Background()
	real := &countingRepo{restaurants: map[string]*models.Restaurant{"r1": {ID: "r1", Name: "Cantina"}}}
	repo := NewCachedRestaurantRepository(real, rdb, time.Minute)

	mr.Close()

	restaurant, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Cantina", restaurant.Name)
}
