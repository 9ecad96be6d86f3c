package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/AlefLorenzo/DeliveryFoods/internal/audit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/availability"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/cache"
	"github.com/AlefLorenzo/DeliveryFoods/internal/chat"
	"github.com/AlefLorenzo/DeliveryFoods/internal/earnings"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/orders"
	"github.com/AlefLorenzo/DeliveryFoods/internal/presence"
	"github.com/AlefLorenzo/DeliveryFoods/internal/ratelimit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/memory"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/postgres"
)

// application holds every service built from one config.
type application struct {
	cfg          *models.Config
	store        repositories.Store
	redis        *redis.Client
	hub          *broadcast.Hub
	broadcaster  *broadcast.Broadcaster
	auditLog     *audit.Logger
	availability *availability.Evaluator
	chat         *chat.Service
	ledger       *earnings.Ledger
	orders       *orders.Manager
	presence     *presence.Service
	closers      []func()
}

func openStore(ctx context.Context, cfg models.StoreConfig) (repositories.Store, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool, cfg.TxMaxWait, cfg.TxTimeout), pool.Close, nil
	default:
		log.Printf("[store] using in-memory store, data is lost on exit")
		return memory.NewStore(memory.WithTxLimits(cfg.TxMaxWait, cfg.TxTimeout)), func() {}, nil
	}
}

func newApplication(ctx context.Context, cfg *models.Config) (*application, error) {
	app := &application{cfg: cfg}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	app.store = store
	app.closers = append(app.closers, closeStore)

	if cfg.Chat.RateLimiter == "redis" || cfg.Presence.Driver == "redis" {
		client, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = client
		app.closers = append(app.closers, func() { client.Close() })
	}

	app.hub = broadcast.NewHub(64)
	app.broadcaster, err = broadcast.NewFromConfig(cfg.Broadcast, app.hub)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if err := app.broadcaster.Close(); err != nil {
			log.Printf("[broadcast] error closing destinations: %v", err)
		}
	})

	restaurants := store.Restaurants()
	if app.redis != nil {
		restaurants = cache.NewCachedRestaurantRepository(restaurants, app.redis, cfg.Redis.CacheTTL)
	}
	app.availability = availability.NewEvaluator(restaurants)
	app.auditLog = audit.NewLogger(store.Audit())

	var limiter ratelimit.Limiter
	switch cfg.Chat.RateLimiter {
	case "redis":
		limiter = ratelimit.NewRedisLimiter(app.redis, cfg.Chat.RateLimit, cfg.Chat.RateWindow)
	default:
		memoryLimiter := ratelimit.NewMemoryLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow)
		go memoryLimiter.RunSweeper(ctx, cfg.Chat.RateWindow)
		limiter = memoryLimiter
	}
	app.chat = chat.NewService(store.Chat(), store.QuickMessages(), limiter, app.broadcaster,
		chat.WithRateLimitScope(cfg.Chat.RateLimitScope))

	var fallback presence.Store
	switch cfg.Presence.Driver {
	case "redis":
		fallback = presence.NewRedisStore(app.redis, cfg.Presence.TTL)
	case "memory", "":
		fallback = presence.NewMemoryStore()
	default:
		app.Close()
		return nil, fmt.Errorf("unsupported presence driver: %s", cfg.Presence.Driver)
	}
	app.presence = presence.NewService(store.CourierStatus(), store.Orders(), fallback, app.broadcaster, app.auditLog)

	app.ledger = earnings.NewLedger(store.Orders(), store.Earnings(), app.broadcaster, app.auditLog)
	app.orders = orders.NewManager(store, app.availability, app.chat, app.broadcaster,
		orders.WithStrictTransitions(cfg.Orders.StrictTransitions),
		orders.WithEarnings(app.ledger),
		orders.WithAudit(app.auditLog),
	)
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
