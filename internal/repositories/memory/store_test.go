package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

func newOrder(id string) *models.Order {
	return &models.Order{
		ID:           id,
		CustomerID:   "customer-1",
		RestaurantID: "restaurant-1",
		Status:       models.OrderStatusPending,
		Items:        []models.OrderItem{{ID: id + "-item", OrderID: id, ProductID: "p1", Quantity: 1, UnitPrice: 10}},
		CreatedAt:    time.Now(),
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		require.NoError(t, tx.Orders().Create(ctx, newOrder("o1")))

		_, err := tx.Orders().GetByID(ctx, "o1")
		require.NoError(t, err, "writes are visible inside the transaction")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Orders().GetByID(ctx, "o1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Orders().Create(ctx, newOrder("o1")); err != nil {
			return err
		}
		return tx.Orders().AppendTimeline(ctx, &models.TimelineEntry{ID: "t1", OrderID: "o1", Status: models.OrderStatusPending})
	})
	require.NoError(t, err)

	order, err := store.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, order.Timeline, 1)
}

func TestWithinTxHonoursMaxWait(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithTxLimits(20*time.Millisecond, time.Second))

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
			close(started)
			<-done
			return nil
		})
	}()
	<-started

	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error { return nil })
	close(done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for the store")
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Orders().Create(ctx, newOrder("o1")))

	order, err := store.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	order.Items[0].UnitPrice = 99

	again, err := store.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Items[0].UnitPrice)
}

func TestChannelUniquePerOrderAndType(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch := &models.ChatChannel{ID: "c1", OrderID: "o1", Type: models.ChannelCustomerRestaurant, Participants: models.NewParticipants("a", "b")}
	require.NoError(t, store.Chat().CreateChannel(ctx, ch))

	dup := *ch
	dup.ID = "c2"
	err := store.Chat().CreateChannel(ctx, &dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestEarningUniquePerOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now()

	require.NoError(t, store.Earnings().Create(ctx, &models.CourierEarning{ID: "e1", CourierID: "c", OrderID: "o1", Amount: 5, ConfirmedAt: now}))
	err := store.Earnings().Create(ctx, &models.CourierEarning{ID: "e2", CourierID: "c", OrderID: "o1", Amount: 5, ConfirmedAt: now})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	totals, err := store.Earnings().Totals(ctx, "c", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Deliveries)
	assert.InDelta(t, 5.0, totals.Total, 0.001)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Chat().CreateChannel(ctx, &models.ChatChannel{ID: "c1", OrderID: "o1", Type: models.ChannelCustomerRestaurant}))
	sender := "a"
	require.NoError(t, store.Chat().CreateMessage(ctx, &models.ChatMessage{ID: "m1", ChannelID: "c1", SenderID: &sender, Text: "hi", ReadBy: []string{"a"}}))
	require.NoError(t, store.Chat().CreateMessage(ctx, &models.ChatMessage{ID: "m2", ChannelID: "c1", Text: "system"}))

	n, err := store.Chat().MarkRead(ctx, "c1", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Chat().MarkRead(ctx, "c1", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
