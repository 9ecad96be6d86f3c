package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

var ErrUnknownCourier = errors.New("courier has no recorded status")

// Store holds courier online flags outside the relational store.
type Store interface {
	Set(ctx context.Context, status models.CourierStatus) error
	Get(ctx context.Context, courierID string) (*models.CourierStatus, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]models.CourierStatus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: make(map[string]models.CourierStatus)}
}

func (m *MemoryStore) Set(_ context.Context, status models.CourierStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status.CourierID] = status
	return nil
}

func (m *MemoryStore) Get(_ context.Context, courierID string) (*models.CourierStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[courierID]
	if !ok {
		return nil, ErrUnknownCourier
	}
	return &status, nil
}

// RedisStore keeps each status as JSON under presence:courier:<id> with a TTL,
// so couriers that never toggle off eventually disappear.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(courierID string) string {
	return "presence:courier:" + courierID
}

func (r *RedisStore) Set(ctx context.Context, status models.CourierStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(status.CourierID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set presence for %s: %w", status.CourierID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, courierID string) (*models.CourierStatus, error) {
	data, err := r.client.Get(ctx, r.key(courierID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnknownCourier
	}
	if err != nil {
		return nil, fmt.Errorf("get presence for %s: %w", courierID, err)
	}
	var status models.CourierStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
