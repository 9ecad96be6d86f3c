package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/memory"
)

type published struct {
	topic, event string
	payload      any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, topic, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{topic, event, payload})
	return nil
}

type brokenStatuses struct {
	repositories.CourierStatusRepository
}

func (brokenStatuses) Upsert(context.Context, *models.CourierStatus) error {
	return errors.New("connection reset")
}

func (brokenStatuses) Get(context.Context, string) (*models.CourierStatus, error) {
	return nil, errors.New("connection reset")
}

func TestSetOnlineUpsertsSingleRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store.CourierStatus(), store.Orders(), NewMemoryStore(), &recorder{}, nil)

	_, err := service.SetOnline(ctx, "k1", true)
	require.NoError(t, err)
	_, err = service.SetOnline(ctx, "k1", false)
	require.NoError(t, err)

	status, err := service.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestUnknownCourierIsOffline(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store.CourierStatus(), store.Orders(), NewMemoryStore(), nil, nil)

	status, err := service.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", status.CourierID)
	assert.False(t, status.IsOnline)
}

func TestFallbackWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(brokenStatuses{}, store.Orders(), NewMemoryStore(), nil, nil)

	_, err := service.SetOnline(ctx, "k1", true)
	require.NoError(t, err)

	status, err := service.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
}

func TestRedisStoreExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	redisStore := NewRedisStore(client, time.Hour)
	require.NoError(t, redisStore.Set(ctx, models.CourierStatus{CourierID: "k1", IsOnline: true}))

	status, err := redisStore.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, status.IsOnline)

	mr.FastForward(2 * time.Hour)
	_, err = redisStore.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrUnknownCourier)
}

func TestUpdateLocation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Orders().Create(ctx, &models.Order{ID: "o1", CustomerID: "c1", CourierID: "k1"}))
	rec := &recorder{}
	service := NewService(store.CourierStatus(), store.Orders(), NewMemoryStore(), rec, nil)

	_, err := service.UpdateLocation(ctx, "k1", "o1", models.Location{Lat: -23.55, Lon: -46.63})
	require.NoError(t, err)
	require.Len(t, rec.events, 2)
	assert.Equal(t, "courier-k1", rec.events[0].topic)
	assert.Equal(t, "order-o1", rec.events[1].topic)
	assert.Equal(t, models.EventLocationUpdated, rec.events[0].event)

	_, err = service.UpdateLocation(ctx, "k2", "o1", models.Location{Lat: 1, Lon: 1})
	assert.ErrorIs(t, err, apperrors.ErrAuthorization)

	_, err = service.UpdateLocation(ctx, "k1", "", models.Location{Lat: 91})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
