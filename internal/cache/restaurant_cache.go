package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

const notFoundMarker = "notfound"

// CachedRestaurantRepository serves restaurant schedules from Redis and falls
// back to the wrapped repository on a miss or any Redis failure.
type CachedRestaurantRepository struct {
	repositories.RestaurantRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRestaurantRepository(realRepo repositories.RestaurantRepository, rdb *redis.Client, ttl time.Duration) *CachedRestaurantRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRestaurantRepository{
		RestaurantRepository: realRepo,
		redis:                rdb,
		ttl:                  ttl,
	}
}

func restaurantKey(id string) string {
	return fmt.Sprintf("restaurant:%s", id)
}

func (c *CachedRestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	key := restaurantKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repositories.ErrNotFound
		}
		var restaurant models.Restaurant
		if err := json.Unmarshal(data, &restaurant); err != nil {
			log.Printf("[cache] failed to unmarshal cached restaurant (continuing with DB): %v", err)
			break
		}
		return &restaurant, nil
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("[cache] redis error (continuing with DB): %v", err)
	}

	restaurant, err := c.RestaurantRepository.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		if setErr := c.redis.Set(ctx, key, notFoundMarker, c.ttl).Err(); setErr != nil {
			log.Printf("[cache] failed to cache notfound: %v", setErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(restaurant)
	if err != nil {
		log.Printf("[cache] failed to marshal restaurant: %v", err)
		return restaurant, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		log.Printf("[cache] failed to cache restaurant: %v", err)
	}
	return restaurant, nil
}

func (c *CachedRestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if err := c.RestaurantRepository.Create(ctx, restaurant); err != nil {
		return err
	}
	c.Invalidate(ctx, restaurant.ID)
	return nil
}

func (c *CachedRestaurantRepository) Invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, restaurantKey(id)).Err(); err != nil {
		log.Printf("[cache] failed to delete restaurant cache %s: %v", id, err)
	}
}
