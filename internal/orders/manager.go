package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/audit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/availability"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type AvailabilityChecker interface {
	Evaluate(ctx context.Context, restaurantID string, now time.Time) availability.Status
}

type ChannelOpener interface {
	EnsureChannel(ctx context.Context, orderID string, channelType models.ChannelType, a, b string) (*models.ChatChannel, bool, error)
}

type EarningRecorder interface {
	RegisterEarning(ctx context.Context, orderID, courierID string) (*models.CourierEarning, error)
}

// Manager owns order creation and status changes. Everything after the
// commit (audit, chat channels, broadcasts, earnings) is best effort.
type Manager struct {
	store        repositories.Store
	availability AvailabilityChecker
	channels     ChannelOpener
	earnings     EarningRecorder
	audit        *audit.Logger
	publisher    broadcast.Publisher
	strict       bool
	now          func() time.Time
	rng          *rand.Rand
}

type Option func(*Manager)

// WithStrictTransitions rejects status changes outside the transition table.
func WithStrictTransitions(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

func WithEarnings(recorder EarningRecorder) Option {
	return func(m *Manager) {
		m.earnings = recorder
	}
}

func WithAudit(logger *audit.Logger) Option {
	return func(m *Manager) {
		m.audit = logger
	}
}

func NewManager(store repositories.Store, checker AvailabilityChecker, channels ChannelOpener, publisher broadcast.Publisher, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		availability: checker,
		channels:     channels,
		publisher:    publisher,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	CustomerID    string
	RestaurantID  string
	Items         []ItemInput
	PaymentMethod models.PaymentMethod
	Discount      float64
	NeedsChange   bool
	ChangeFor     *float64
}

func (in CreateOrderInput) validate() error {
	if in.CustomerID == "" || in.RestaurantID == "" {
		return apperrors.Validation("customer and restaurant are required")
	}
	if len(in.Items) == 0 {
		return apperrors.Validation("an order needs at least one item")
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return apperrors.Validation("invalid item %q: quantity must be positive", item.ProductID)
		}
	}
	if !in.PaymentMethod.Valid() {
		return apperrors.Validation("unknown payment method %q", in.PaymentMethod)
	}
	if in.Discount < 0 {
		return apperrors.Validation("discount cannot be negative")
	}
	if in.ChangeFor != nil && *in.ChangeFor < 0 {
		return apperrors.Validation("change amount cannot be negative")
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Total is subtotal plus fee minus discount, never below zero.
func Total(subtotal, deliveryFee, discount float64) float64 {
	return roundCents(math.Max(0, subtotal+deliveryFee-discount))
}

// orderNumber is the last six digits of the millisecond clock followed by two
// random digits. Collisions are possible and tolerated.
func (m *Manager) orderNumber(at time.Time) int64 {
	return (at.UnixMilli()%1_000_000)*100 + int64(m.rng.Intn(100))
}

func (m *Manager) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := m.now()
	status := m.availability.Evaluate(ctx, in.RestaurantID, now)
	if !status.IsOpen {
		if status.Message == availability.MessageNotFound {
			return nil, apperrors.NotFound("restaurant %s not found", in.RestaurantID)
		}
		return nil, apperrors.Conflict("restaurant closed: %s", status.Message)
	}

	var (
		order      *models.Order
		restaurant *models.Restaurant
	)
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		restaurant, err = tx.Restaurants().GetByID(ctx, in.RestaurantID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("restaurant %s not found", in.RestaurantID)
		}
		if err != nil {
			return fmt.Errorf("load restaurant: %w", err)
		}

		ids := make([]string, 0, len(in.Items))
		for _, item := range in.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := tx.Products().GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		order = &models.Order{
			ID:            cuid.New(),
			OrderNumber:   m.orderNumber(now),
			CustomerID:    in.CustomerID,
			RestaurantID:  in.RestaurantID,
			DeliveryFee:   restaurant.DeliveryFee,
			Discount:      roundCents(in.Discount),
			PaymentMethod: in.PaymentMethod,
			Status:        models.OrderStatusPending,
			NeedsChange:   in.NeedsChange,
			CreatedAt:     now.UTC(),
			UpdatedAt:     now.UTC(),
		}
		if in.NeedsChange {
			order.ChangeFor = in.ChangeFor
		}

		var subtotal float64
		for _, item := range in.Items {
			product, ok := products[item.ProductID]
			if !ok || product.RestaurantID != in.RestaurantID {
				return apperrors.NotFound("product %s not found", item.ProductID)
			}
			if !product.Active {
				return apperrors.Conflict("product %q is not available", product.Name)
			}
			if !product.AvailableIn(status.ShiftID()) {
				return apperrors.Conflict("product %q is not available during the current shift", product.Name)
			}
			line := models.OrderItem{
				ID:          cuid.New(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
			}
			subtotal += line.LineTotal()
			order.Items = append(order.Items, line)
		}
		order.Subtotal = roundCents(subtotal)
		order.Total = Total(order.Subtotal, order.DeliveryFee, order.Discount)
		order.Timeline = []models.TimelineEntry{{
			ID:        cuid.New(),
			OrderID:   order.ID,
			Status:    models.OrderStatusPending,
			Notes:     "Order placed by customer",
			ActorID:   in.CustomerID,
			CreatedAt: now.UTC(),
		}}

		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	m.afterCreate(ctx, order, restaurant)
	return order, nil
}

func (m *Manager) afterCreate(ctx context.Context, order *models.Order, restaurant *models.Restaurant) {
	m.audit.Record(ctx, order.CustomerID, models.AuditCreateOrder, audit.OrderResource(order.ID), map[string]any{
		"orderNumber":  order.OrderNumber,
		"restaurantId": order.RestaurantID,
		"total":        order.Total,
	})

	if m.channels != nil && restaurant.OwnerID != "" {
		if _, _, err := m.channels.EnsureChannel(ctx, order.ID, models.ChannelCustomerRestaurant, order.CustomerID, restaurant.OwnerID); err != nil {
			log.Printf("[orders] failed to open restaurant chat for order %s: %v", order.ID, err)
		}
	}

	broadcast.Notify(ctx, m.publisher, broadcast.RestaurantTopic(order.RestaurantID), models.EventOrderCreated, order)
	broadcast.Notify(ctx, m.publisher, broadcast.UserTopic(order.CustomerID), models.EventOrderCreated, order)
}

type UpdateStatusInput struct {
	OrderID   string
	Status    models.OrderStatus
	ActorID   string
	ActorRole models.Role
	Notes     string
	CourierID string
}

// UpdateStatus writes whatever status the caller asks for and records it in
// the timeline. Concurrent updates are last write wins.
func (m *Manager) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*models.Order, error) {
	if !in.Status.Valid() {
		return nil, apperrors.Validation("unknown status %q", in.Status)
	}

	var previous, updated *models.Order
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		previous, err = tx.Orders().GetByID(ctx, in.OrderID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("order %s not found", in.OrderID)
		}
		if err != nil {
			return err
		}
		if m.strict && !CanTransition(previous.Status, in.Status) {
			return apperrors.Conflict("cannot move order from %s to %s", previous.Status, in.Status)
		}

		if in.CourierID != "" {
			if err := checkCourier(ctx, tx, previous, in.CourierID); err != nil {
				return err
			}
		}

		courierID := in.CourierID
		if courierID == "" && in.ActorRole == models.RoleCourier && impliesPickup(in.Status) && previous.CourierID == "" {
			courierID = in.ActorID
		}

		at := m.now().UTC()
		if err := tx.Orders().UpdateStatus(ctx, in.OrderID, in.Status, courierID, at); err != nil {
			return err
		}
		if err := tx.Orders().AppendTimeline(ctx, &models.TimelineEntry{
			ID:        cuid.New(),
			OrderID:   in.OrderID,
			Status:    in.Status,
			Notes:     in.Notes,
			ActorID:   in.ActorID,
			CreatedAt: at,
		}); err != nil {
			return err
		}

		updated, err = tx.Orders().GetByID(ctx, in.OrderID)
		return err
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	m.afterStatusChange(ctx, in, previous, updated)
	return updated, nil
}

// checkCourier accepts an explicit courier only when it names a courier user
// and the order has no other courier yet. Courier chats are bound to the
// first assignment, so a reassignment is rejected.
func checkCourier(ctx context.Context, tx repositories.Store, order *models.Order, courierID string) error {
	if order.CourierID != "" && order.CourierID != courierID {
		return apperrors.Conflict("order %s is already assigned to courier %s", order.ID, order.CourierID)
	}
	user, err := tx.Users().GetByID(ctx, courierID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Validation("courier %s not found", courierID)
	}
	if err != nil {
		return err
	}
	if user.Role != models.RoleCourier {
		return apperrors.Validation("user %s is not a courier", courierID)
	}
	return nil
}

func (m *Manager) afterStatusChange(ctx context.Context, in UpdateStatusInput, previous, order *models.Order) {
	if previous.CourierID == "" && order.CourierID != "" {
		m.openCourierChannels(ctx, order)
	}

	m.audit.Record(ctx, in.ActorID, models.AuditUpdateOrderStatus, audit.OrderResource(order.ID), map[string]any{
		"from":  string(previous.Status),
		"to":    string(order.Status),
		"notes": in.Notes,
	})

	broadcast.Notify(ctx, m.publisher, broadcast.OrderTopic(order.ID), models.EventOrderStatusUpdated, order)
	broadcast.Notify(ctx, m.publisher, broadcast.UserTopic(order.CustomerID), models.EventOrderStatusUpdated, order)
	broadcast.Notify(ctx, m.publisher, broadcast.RestaurantTopic(order.RestaurantID), models.EventOrderStatusUpdated, order)
	if order.Status == models.OrderStatusReady {
		broadcast.Notify(ctx, m.publisher, broadcast.CourierFeed, models.EventOrderStatusUpdated, order)
	}

	if order.Status == models.OrderStatusDelivered && order.CourierID != "" && m.earnings != nil {
		if _, err := m.earnings.RegisterEarning(ctx, order.ID, order.CourierID); err != nil {
			log.Printf("[orders] earning not registered for order %s: %v", order.ID, err)
		}
	}
}

// openCourierChannels creates the two courier channels. Each is checked for
// existence first, so repeated calls never duplicate them.
func (m *Manager) openCourierChannels(ctx context.Context, order *models.Order) {
	if m.channels == nil {
		return
	}
	if _, _, err := m.channels.EnsureChannel(ctx, order.ID, models.ChannelCustomerCourier, order.CustomerID, order.CourierID); err != nil {
		log.Printf("[orders] failed to open customer-courier chat for order %s: %v", order.ID, err)
	}

	restaurant, err := m.store.Restaurants().GetByID(ctx, order.RestaurantID)
	if err != nil {
		log.Printf("[orders] failed to load restaurant %s for courier chat: %v", order.RestaurantID, err)
		return
	}
	if _, _, err := m.channels.EnsureChannel(ctx, order.ID, models.ChannelRestaurantCourier, restaurant.OwnerID, order.CourierID); err != nil {
		log.Printf("[orders] failed to open restaurant-courier chat for order %s: %v", order.ID, err)
	}
}

func (m *Manager) Get(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := m.store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

// ListForActor returns the orders the actor may see, newest first. Couriers
// asking for READY orders get the unassigned pickup feed.
func (m *Manager) ListForActor(ctx context.Context, actor models.Actor, status models.OrderStatus, limit int) ([]*models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("unknown status %q", status)
	}
	filter := models.OrderFilter{Status: status, Limit: limit}

	var (
		orders []*models.Order
		err    error
	)
	switch actor.Role {
	case models.RoleAdmin:
		orders, err = m.store.Orders().List(ctx, filter)
	case models.RoleClient:
		filter.CustomerID = actor.ID
		orders, err = m.store.Orders().List(ctx, filter)
	case models.RoleCourier:
		if status == models.OrderStatusReady {
			orders, err = m.courierFeed(ctx, filter)
		} else {
			filter.CourierID = actor.ID
			orders, err = m.store.Orders().List(ctx, filter)
		}
	case models.RoleRestaurant:
		orders, err = m.restaurantOrders(ctx, actor.ID, filter)
	default:
		return nil, apperrors.Authorization("unknown role %q", actor.Role)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (m *Manager) courierFeed(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	limit := filter.Limit
	filter.Limit = 0
	ready, err := m.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	var feed []*models.Order
	for _, order := range ready {
		if order.CourierID == "" {
			feed = append(feed, order)
		}
		if limit > 0 && len(feed) == limit {
			break
		}
	}
	return feed, nil
}

func (m *Manager) restaurantOrders(ctx context.Context, ownerID string, filter models.OrderFilter) ([]*models.Order, error) {
	restaurants, err := m.store.Restaurants().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var orders []*models.Order
	for _, restaurant := range restaurants {
		if restaurant.OwnerID != ownerID {
			continue
		}
		filter.RestaurantID = restaurant.ID
		owned, err := m.store.Orders().List(ctx, filter)
		if err != nil {
			return nil, err
		}
		orders = append(orders, owned...)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}
