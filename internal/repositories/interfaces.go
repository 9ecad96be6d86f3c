package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("duplicate resource")
)

type UserRepository interface {
	BulkCreate(ctx context.Context, users []*models.User) error
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	// GetByID returns the restaurant with its operating days and shifts.
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	GetAll(ctx context.Context) ([]*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error)
	GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error)
	UpdatePrice(ctx context.Context, id string, price float64) error
}

type OrderRepository interface {
	// Create stores the order with its items and timeline entries.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	// UpdateStatus overwrites the status and, when courierID is not empty, the assigned courier.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, courierID string, at time.Time) error
	AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error
}

type ChatRepository interface {
	// CreateChannel returns ErrDuplicate when the order already has a channel of that type.
	CreateChannel(ctx context.Context, channel *models.ChatChannel) error
	GetChannel(ctx context.Context, orderID string, channelType models.ChannelType) (*models.ChatChannel, error)
	GetChannelByID(ctx context.Context, id string) (*models.ChatChannel, error)
	ListChannels(ctx context.Context, orderID string) ([]*models.ChatChannel, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, channelID string) ([]*models.ChatMessage, error)
	LastMessage(ctx context.Context, channelID string) (*models.ChatMessage, error)
	MarkRead(ctx context.Context, channelID, userID string) (int, error)
}

type QuickMessageRepository interface {
	Upsert(ctx context.Context, message *models.QuickMessage) error
	GetByID(ctx context.Context, id string) (*models.QuickMessage, error)
	ListByCategory(ctx context.Context, category models.QuickMessageCategory) ([]*models.QuickMessage, error)
}

type EarningsRepository interface {
	// Create returns ErrDuplicate when the order already has an earning.
	Create(ctx context.Context, earning *models.CourierEarning) error
	GetByOrderID(ctx context.Context, orderID string) (*models.CourierEarning, error)
	// ListByCourier returns newest first. Zero from/to leave the range open, limit <= 0 means no limit.
	ListByCourier(ctx context.Context, courierID string, from, to time.Time, limit int) ([]*models.CourierEarning, error)
	Totals(ctx context.Context, courierID string, from, to time.Time) (models.EarningsTotals, error)
}

type CourierStatusRepository interface {
	Upsert(ctx context.Context, status *models.CourierStatus) error
	Get(ctx context.Context, courierID string) (*models.CourierStatus, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByResource(ctx context.Context, resource string) ([]*models.AuditEntry, error)
}

// Store groups the repositories over one backend.
type Store interface {
	Users() UserRepository
	Restaurants() RestaurantRepository
	Products() ProductRepository
	Orders() OrderRepository
	Chat() ChatRepository
	QuickMessages() QuickMessageRepository
	Earnings() EarningsRepository
	CourierStatus() CourierStatusRepository
	Audit() AuditRepository

	// WithinTx runs fn atomically. The Store handed to fn must be used for every
	// read and write that belongs to the transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Close()
}
