package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type dataset struct {
	users       map[string]*models.User
	restaurants map[string]*models.Restaurant
	products    map[string]*models.Product
	orders      map[string]*models.Order
	channels    map[string]*models.ChatChannel
	messages    map[string][]*models.ChatMessage // by channel id
	quick       map[string]*models.QuickMessage
	earnings    map[string]*models.CourierEarning // by order id
	statuses    map[string]*models.CourierStatus
	audit       []*models.AuditEntry
}

func newDataset() *dataset {
	return &dataset{
		users:       make(map[string]*models.User),
		restaurants: make(map[string]*models.Restaurant),
		products:    make(map[string]*models.Product),
		orders:      make(map[string]*models.Order),
		channels:    make(map[string]*models.ChatChannel),
		messages:    make(map[string][]*models.ChatMessage),
		quick:       make(map[string]*models.QuickMessage),
		earnings:    make(map[string]*models.CourierEarning),
		statuses:    make(map[string]*models.CourierStatus),
	}
}

// Store keeps everything in process memory. Writers are serialized; a
// transaction works on a private copy that replaces the live data on commit.
type Store struct {
	writer    chan struct{}
	mu        sync.RWMutex
	data      *dataset
	txMaxWait time.Duration
	txTimeout time.Duration
}

type Option func(*Store)

func WithTxLimits(maxWait, timeout time.Duration) Option {
	return func(s *Store) {
		s.txMaxWait = maxWait
		s.txTimeout = timeout
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		writer:    make(chan struct{}, 1),
		data:      newDataset(),
		txMaxWait: 5 * time.Second,
		txTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) acquire(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s waiting for the store", wait)
	}
}

func (s *Store) release() {
	<-s.writer
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	if err := s.acquire(ctx, s.txMaxWait); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer s.release()

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	s.mu.RLock()
	working := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &view{store: s, tx: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() {}

func (s *Store) root() *view { return &view{store: s} }

func (s *Store) Users() repositories.UserRepository { return s.root().Users() }
func (s *Store) Restaurants() repositories.RestaurantRepository { return s.root().Restaurants() }
func (s *Store) Products() repositories.ProductRepository { return s.root().Products() }
func (s *Store) Orders() repositories.OrderRepository { return s.root().Orders() }
func (s *Store) Chat() repositories.ChatRepository { return s.root().Chat() }
func (s *Store) QuickMessages() repositories.QuickMessageRepository { return s.root().QuickMessages() }
func (s *Store) Earnings() repositories.EarningsRepository { return s.root().Earnings() }
func (s *Store) CourierStatus() repositories.CourierStatusRepository { return s.root().CourierStatus() }
func (s *Store) Audit() repositories.AuditRepository { return s.root().Audit() }

// view routes repository calls either to the live data or to a transaction's copy.
type view struct {
	store *Store
	tx    *dataset
}

func (v *view) read(fn func(d *dataset)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.data)
}

func (v *view) write(ctx context.Context, fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	if err := v.store.acquire(ctx, v.store.txMaxWait); err != nil {
		return err
	}
	defer v.store.release()

	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v *view) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	if v.tx != nil {
		return fn(ctx, v)
	}
	return v.store.WithinTx(ctx, fn)
}

func (v *view) Close() {}

func (v *view) Users() repositories.UserRepository { return &userRepository{v} }
func (v *view) Restaurants() repositories.RestaurantRepository { return &restaurantRepository{v} }
func (v *view) Products() repositories.ProductRepository { return &productRepository{v} }
func (v *view) Orders() repositories.OrderRepository { return &orderRepository{v} }
func (v *view) Chat() repositories.ChatRepository { return &chatRepository{v} }
func (v *view) QuickMessages() repositories.QuickMessageRepository { return &quickMessageRepository{v} }
func (v *view) Earnings() repositories.EarningsRepository { return &earningsRepository{v} }
func (v *view) CourierStatus() repositories.CourierStatusRepository { return &courierStatusRepository{v} }
func (v *view) Audit() repositories.AuditRepository { return &auditRepository{v} }
