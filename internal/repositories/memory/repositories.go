package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type userRepository struct{ v *view }

func (r *userRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	return r.v.write(ctx, func(d *dataset) error {
		for _, u := range users {
			if _, exists := d.users[u.ID]; exists {
				return fmt.Errorf("user %s: %w", u.ID, repositories.ErrDuplicate)
			}
		}
		for _, u := range users {
			d.users[u.ID] = copyUser(u)
		}
		return nil
	})
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.BulkCreate(ctx, []*models.User{user})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	r.v.read(func(d *dataset) {
		if u, ok := d.users[id]; ok {
			user = copyUser(u)
		}
	})
	if user == nil {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	r.v.read(func(d *dataset) { n = len(d.users) })
	return n, nil
}

type restaurantRepository struct{ v *view }

func (r *restaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, exists := d.restaurants[restaurant.ID]; exists {
			return fmt.Errorf("restaurant %s: %w", restaurant.ID, repositories.ErrDuplicate)
		}
		seen := make(map[int]bool)
		for _, day := range restaurant.OperatingDays {
			if seen[day.DayOfWeek] {
				return fmt.Errorf("operating day %d: %w", day.DayOfWeek, repositories.ErrDuplicate)
			}
			seen[day.DayOfWeek] = true
		}
		d.restaurants[restaurant.ID] = copyRestaurant(restaurant)
		return nil
	})
}

func (r *restaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant *models.Restaurant
	r.v.read(func(d *dataset) {
		if found, ok := d.restaurants[id]; ok {
			restaurant = copyRestaurant(found)
		}
	})
	if restaurant == nil {
		return nil, repositories.ErrNotFound
	}
	return restaurant, nil
}

func (r *restaurantRepository) GetAll(ctx context.Context) ([]*models.Restaurant, error) {
	var restaurants []*models.Restaurant
	r.v.read(func(d *dataset) {
		for _, found := range d.restaurants {
			restaurants = append(restaurants, copyRestaurant(found))
		}
	})
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].Name < restaurants[j].Name })
	return restaurants, nil
}

func (r *restaurantRepository) Count(ctx context.Context) (int, error) {
	var n int
	r.v.read(func(d *dataset) { n = len(d.restaurants) })
	return n, nil
}

type productRepository struct{ v *view }

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, exists := d.products[product.ID]; exists {
			return fmt.Errorf("product %s: %w", product.ID, repositories.ErrDuplicate)
		}
		d.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	products := make(map[string]*models.Product, len(ids))
	r.v.read(func(d *dataset) {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				products[id] = copyProduct(p)
			}
		}
	})
	return products, nil
}

func (r *productRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error) {
	var products []*models.Product
	r.v.read(func(d *dataset) {
		for _, p := range d.products {
			if p.RestaurantID == restaurantID {
				products = append(products, copyProduct(p))
			}
		}
	})
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, id string, price float64) error {
	return r.v.write(ctx, func(d *dataset) error {
		p, ok := d.products[id]
		if !ok {
			return repositories.ErrNotFound
		}
		p.Price = price
		return nil
	})
}

type orderRepository struct{ v *view }

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, exists := d.orders[order.ID]; exists {
			return fmt.Errorf("order %s: %w", order.ID, repositories.ErrDuplicate)
		}
		d.orders[order.ID] = copyOrder(order)
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order *models.Order
	r.v.read(func(d *dataset) {
		if o, ok := d.orders[id]; ok {
			order = copyOrder(o)
		}
	})
	if order == nil {
		return nil, repositories.ErrNotFound
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var orders []*models.Order
	r.v.read(func(d *dataset) {
		for _, o := range d.orders {
			if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
				continue
			}
			if filter.RestaurantID != "" && o.RestaurantID != filter.RestaurantID {
				continue
			}
			if filter.CourierID != "" && o.CourierID != filter.CourierID {
				continue
			}
			if filter.Status != "" && o.Status != filter.Status {
				continue
			}
			orders = append(orders, copyOrder(o))
		}
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, courierID string, at time.Time) error {
	return r.v.write(ctx, func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return repositories.ErrNotFound
		}
		o.Status = status
		if courierID != "" {
			o.CourierID = courierID
		}
		o.UpdatedAt = at
		return nil
	})
}

func (r *orderRepository) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	return r.v.write(ctx, func(d *dataset) error {
		o, ok := d.orders[entry.OrderID]
		if !ok {
			return repositories.ErrNotFound
		}
		o.Timeline = append(o.Timeline, *entry)
		return nil
	})
}

type chatRepository struct{ v *view }

func (r *chatRepository) CreateChannel(ctx context.Context, channel *models.ChatChannel) error {
	return r.v.write(ctx, func(d *dataset) error {
		for _, existing := range d.channels {
			if existing.OrderID == channel.OrderID && existing.Type == channel.Type {
				return fmt.Errorf("channel %s for order %s: %w", channel.Type, channel.OrderID, repositories.ErrDuplicate)
			}
		}
		d.channels[channel.ID] = copyChannel(channel)
		return nil
	})
}

func (r *chatRepository) GetChannel(ctx context.Context, orderID string, channelType models.ChannelType) (*models.ChatChannel, error) {
	var channel *models.ChatChannel
	r.v.read(func(d *dataset) {
		for _, ch := range d.channels {
			if ch.OrderID == orderID && ch.Type == channelType {
				channel = copyChannel(ch)
				return
			}
		}
	})
	if channel == nil {
		return nil, repositories.ErrNotFound
	}
	return channel, nil
}

func (r *chatRepository) GetChannelByID(ctx context.Context, id string) (*models.ChatChannel, error) {
	var channel *models.ChatChannel
	r.v.read(func(d *dataset) {
		if ch, ok := d.channels[id]; ok {
			channel = copyChannel(ch)
		}
	})
	if channel == nil {
		return nil, repositories.ErrNotFound
	}
	return channel, nil
}

func (r *chatRepository) ListChannels(ctx context.Context, orderID string) ([]*models.ChatChannel, error) {
	var channels []*models.ChatChannel
	r.v.read(func(d *dataset) {
		for _, ch := range d.channels {
			if ch.OrderID == orderID {
				channels = append(channels, copyChannel(ch))
			}
		}
	})
	sort.Slice(channels, func(i, j int) bool { return channels[i].CreatedAt.Before(channels[j].CreatedAt) })
	return channels, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, ok := d.channels[message.ChannelID]; !ok {
			return fmt.Errorf("channel %s: %w", message.ChannelID, repositories.ErrNotFound)
		}
		d.messages[message.ChannelID] = append(d.messages[message.ChannelID], copyMessage(message))
		return nil
	})
}

func (r *chatRepository) ListMessages(ctx context.Context, channelID string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	r.v.read(func(d *dataset) {
		for _, m := range d.messages[channelID] {
			messages = append(messages, copyMessage(m))
		}
	})
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

func (r *chatRepository) LastMessage(ctx context.Context, channelID string) (*models.ChatMessage, error) {
	messages, err := r.ListMessages(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, repositories.ErrNotFound
	}
	return messages[len(messages)-1], nil
}

func (r *chatRepository) MarkRead(ctx context.Context, channelID, userID string) (int, error) {
	var updated int
	err := r.v.write(ctx, func(d *dataset) error {
		for _, m := range d.messages[channelID] {
			if !slices.Contains(m.ReadBy, userID) {
				m.ReadBy = append(m.ReadBy, userID)
				updated++
			}
		}
		return nil
	})
	return updated, err
}

type quickMessageRepository struct{ v *view }

func (r *quickMessageRepository) Upsert(ctx context.Context, message *models.QuickMessage) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, exists := d.quick[message.ID]; exists {
			return nil
		}
		qc := *message
		d.quick[message.ID] = &qc
		return nil
	})
}

func (r *quickMessageRepository) GetByID(ctx context.Context, id string) (*models.QuickMessage, error) {
	var message *models.QuickMessage
	r.v.read(func(d *dataset) {
		if q, ok := d.quick[id]; ok {
			qc := *q
			message = &qc
		}
	})
	if message == nil {
		return nil, repositories.ErrNotFound
	}
	return message, nil
}

func (r *quickMessageRepository) ListByCategory(ctx context.Context, category models.QuickMessageCategory) ([]*models.QuickMessage, error) {
	var messages []*models.QuickMessage
	r.v.read(func(d *dataset) {
		for _, q := range d.quick {
			if category == "" || q.Category == category {
				qc := *q
				messages = append(messages, &qc)
			}
		}
	})
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Category != messages[j].Category {
			return messages[i].Category < messages[j].Category
		}
		return messages[i].Position < messages[j].Position
	})
	return messages, nil
}

type earningsRepository struct{ v *view }

func (r *earningsRepository) Create(ctx context.Context, earning *models.CourierEarning) error {
	return r.v.write(ctx, func(d *dataset) error {
		if _, exists := d.earnings[earning.OrderID]; exists {
			return fmt.Errorf("earning for order %s: %w", earning.OrderID, repositories.ErrDuplicate)
		}
		ec := *earning
		d.earnings[earning.OrderID] = &ec
		return nil
	})
}

func (r *earningsRepository) GetByOrderID(ctx context.Context, orderID string) (*models.CourierEarning, error) {
	var earning *models.CourierEarning
	r.v.read(func(d *dataset) {
		if e, ok := d.earnings[orderID]; ok {
			ec := *e
			earning = &ec
		}
	})
	if earning == nil {
		return nil, repositories.ErrNotFound
	}
	return earning, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func (r *earningsRepository) ListByCourier(ctx context.Context, courierID string, from, to time.Time, limit int) ([]*models.CourierEarning, error) {
	var earnings []*models.CourierEarning
	r.v.read(func(d *dataset) {
		for _, e := range d.earnings {
			if e.CourierID == courierID && inRange(e.ConfirmedAt, from, to) {
				ec := *e
				earnings = append(earnings, &ec)
			}
		}
	})
	sort.Slice(earnings, func(i, j int) bool { return earnings[i].ConfirmedAt.After(earnings[j].ConfirmedAt) })
	if limit > 0 && len(earnings) > limit {
		earnings = earnings[:limit]
	}
	return earnings, nil
}

func (r *earningsRepository) Totals(ctx context.Context, courierID string, from, to time.Time) (models.EarningsTotals, error) {
	earnings, err := r.ListByCourier(ctx, courierID, from, to, 0)
	if err != nil {
		return models.EarningsTotals{}, err
	}
	var totals models.EarningsTotals
	for _, e := range earnings {
		totals.Total += e.Amount
	}
	totals.Deliveries = len(earnings)
	return totals, nil
}

type courierStatusRepository struct{ v *view }

func (r *courierStatusRepository) Upsert(ctx context.Context, status *models.CourierStatus) error {
	return r.v.write(ctx, func(d *dataset) error {
		sc := *status
		d.statuses[status.CourierID] = &sc
		return nil
	})
}

func (r *courierStatusRepository) Get(ctx context.Context, courierID string) (*models.CourierStatus, error) {
	var status *models.CourierStatus
	r.v.read(func(d *dataset) {
		if s, ok := d.statuses[courierID]; ok {
			sc := *s
			status = &sc
		}
	})
	if status == nil {
		return nil, repositories.ErrNotFound
	}
	return status, nil
}

type auditRepository struct{ v *view }

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.v.write(ctx, func(d *dataset) error {
		d.audit = append(d.audit, copyAudit(entry))
		return nil
	})
}

func (r *auditRepository) ListByResource(ctx context.Context, resource string) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	r.v.read(func(d *dataset) {
		for _, a := range d.audit {
			if a.Resource == resource {
				entries = append(entries, copyAudit(a))
			}
		}
	})
	return entries, nil
}
