package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlefLorenzo/DeliveryFoods/internal/audit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/auth"
	"github.com/AlefLorenzo/DeliveryFoods/internal/availability"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/chat"
	"github.com/AlefLorenzo/DeliveryFoods/internal/earnings"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/orders"
	"github.com/AlefLorenzo/DeliveryFoods/internal/presence"
	"github.com/AlefLorenzo/DeliveryFoods/internal/ratelimit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/memory"
)

type testEnv struct {
	store       *memory.Store
	server      *Server
	handler     http.Handler
	tokens      *auth.TokenService
	broadcaster *broadcast.Broadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	// restaurants without shifts or operating days are always open
	require.NoError(t, store.Restaurants().Create(ctx, &models.Restaurant{
		ID: "r1", OwnerID: "owner1", Name: "Cantina", Active: true, DeliveryFee: 7.90,
	}))
	require.NoError(t, store.Restaurants().Create(ctx, &models.Restaurant{
		ID: "closed", OwnerID: "owner2", Name: "Shut", Active: false,
	}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{
		ID: "burger", RestaurantID: "r1", Name: "Burger", Price: 25, Active: true,
	}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{
		ID: "soup", RestaurantID: "closed", Name: "Soup", Price: 9, Active: true,
	}))

	tokens, err := auth.NewTokenService(models.AuthConfig{JWTSecret: "test-secret", Issuer: "deliveryfoods", TokenTTL: time.Hour})
	require.NoError(t, err)

	hub := broadcast.NewHub(16)
	broadcaster := broadcast.NewBroadcaster(hub)
	auditLog := audit.NewLogger(store.Audit())
	evaluator := availability.NewEvaluator(store.Restaurants())
	chatService := chat.NewService(store.Chat(), store.QuickMessages(), ratelimit.NewMemoryLimiter(10, time.Minute), broadcaster)
	require.NoError(t, chatService.SeedQuickMessages(ctx))
	ledger := earnings.NewLedger(store.Orders(), store.Earnings(), broadcaster, auditLog)
	manager := orders.NewManager(store, evaluator, chatService, broadcaster, orders.WithEarnings(ledger), orders.WithAudit(auditLog))

	server := NewServer(Dependencies{
		Store:        store,
		Orders:       manager,
		Chat:         chatService,
		Earnings:     ledger,
		Presence:     presence.NewService(store.CourierStatus(), store.Orders(), presence.NewMemoryStore(), broadcaster, auditLog),
		Availability: evaluator,
		Tokens:       tokens,
		Hub:          hub,
	})
	return &testEnv{store: store, server: server, handler: server.Router(), tokens: tokens, broadcaster: broadcaster}
}

func (e *testEnv) token(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	token, err := e.tokens.Issue(userID, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (e *testEnv) placeOrder(t *testing.T, customerID string) models.Order {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/orders", e.token(t, customerID, models.RoleClient), map[string]any{
		"restaurantId":  "r1",
		"items":         []map[string]any{{"productId": "burger", "quantity": 2}},
		"paymentMethod": "PIX",
		"discount":      10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Order](t, rec)
}

func (e *testEnv) setStatus(t *testing.T, orderID, token string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", token, body)
}

func TestHealthAndAvailabilityArePublic(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)

	rec := env.do(t, http.MethodGet, "/api/restaurants/closed/availability", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[availability.Status](t, rec)
	assert.False(t, status.IsOpen)

	rec = env.do(t, http.MethodGet, "/api/restaurants/missing/availability", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, availability.MessageNotFound, decode[availability.Status](t, rec).Message)
}

func TestRequestsWithoutValidTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_error", decode[apiError](t, rec).Error)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil).Code)
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	order := env.placeOrder(t, "c1")
	assert.Equal(t, 47.90, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "c1", order.CustomerID)
}

func TestCreateOrderErrors(t *testing.T) {
	env := newTestEnv(t)
	client := env.token(t, "c1", models.RoleClient)

	t.Run("wrong role", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", env.token(t, "k1", models.RoleCourier), map[string]any{
			"restaurantId": "r1", "items": []map[string]any{{"productId": "burger", "quantity": 1}}, "paymentMethod": "PIX",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", client, map[string]any{
			"restaurantId": "r1", "items": []map[string]any{}, "paymentMethod": "CASH",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[apiError](t, rec)
		assert.Equal(t, "validation_error", body.Error)
		assert.Contains(t, body.Details, "createOrderRequest.paymentMethod")
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", client, map[string]any{"restaurant": "r1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("restaurant closed", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", client, map[string]any{
			"restaurantId": "closed", "items": []map[string]any{{"productId": "soup", "quantity": 1}}, "paymentMethod": "PIX",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "conflict", decode[apiError](t, rec).Error)

		list, err := env.store.Orders().List(context.Background(), models.OrderFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestOrderVisibility(t *testing.T) {
	env := newTestEnv(t)
	order := env.placeOrder(t, "c1")
	path := "/api/orders/" + order.ID

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, env.token(t, "c1", models.RoleClient), nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, env.token(t, "owner1", models.RoleRestaurant), nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, env.token(t, "a1", models.RoleAdmin), nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, env.token(t, "c2", models.RoleClient), nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, env.token(t, "owner2", models.RoleRestaurant), nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, env.token(t, "k1", models.RoleCourier), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/orders/nope", env.token(t, "a1", models.RoleAdmin), nil).Code)

	rec := env.do(t, http.MethodGet, "/api/orders", env.token(t, "c2", models.RoleClient), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Order](t, rec))
}

func TestCustomerCancellation(t *testing.T) {
	env := newTestEnv(t)
	client := env.token(t, "c1", models.RoleClient)

	pending := env.placeOrder(t, "c1")
	rec := env.setStatus(t, pending.ID, client, map[string]any{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderStatusCancelled, decode[models.Order](t, rec).Status)

	confirmed := env.placeOrder(t, "c1")
	rec = env.setStatus(t, confirmed.ID, env.token(t, "owner1", models.RoleRestaurant), map[string]any{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.setStatus(t, confirmed.ID, client, map[string]any{"status": "CANCELLED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.setStatus(t, confirmed.ID, client, map[string]any{"status": "PREPARING"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.setStatus(t, confirmed.ID, env.token(t, "c2", models.RoleClient), map[string]any{"status": "CANCELLED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStatusUpdatesByRole(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner1", models.RoleRestaurant)
	courier := env.token(t, "k1", models.RoleCourier)
	order := env.placeOrder(t, "c1")

	assert.Equal(t, http.StatusForbidden, env.setStatus(t, order.ID, owner, map[string]any{"status": "DELIVERED"}).Code)
	assert.Equal(t, http.StatusForbidden, env.setStatus(t, order.ID, env.token(t, "owner2", models.RoleRestaurant), map[string]any{"status": "READY"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.setStatus(t, order.ID, owner, map[string]any{}).Code)

	// not ready yet, so not in the courier feed
	assert.Equal(t, http.StatusForbidden, env.setStatus(t, order.ID, courier, map[string]any{"status": "PICKED_UP"}).Code)

	require.Equal(t, http.StatusOK, env.setStatus(t, order.ID, owner, map[string]any{"status": "READY"}).Code)
	assert.Equal(t, http.StatusForbidden, env.setStatus(t, order.ID, courier, map[string]any{"status": "PICKED_UP", "courierId": "k2"}).Code)

	rec := env.setStatus(t, order.ID, courier, map[string]any{"status": "PICKED_UP"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "k1", decode[models.Order](t, rec).CourierID)

	channels, err := env.store.Chat().ListChannels(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, channels, 3)

	// another courier cannot take over an assigned order
	assert.Equal(t, http.StatusForbidden, env.setStatus(t, order.ID, env.token(t, "k2", models.RoleCourier), map[string]any{"status": "DELIVERED"}).Code)

	require.Equal(t, http.StatusOK, env.setStatus(t, order.ID, courier, map[string]any{"status": "DELIVERED"}).Code)

	rec = env.do(t, http.MethodGet, "/api/courier/earnings/k1?period=all", courier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[map[string]any](t, rec)
	assert.Equal(t, 7.9, totals["total"])
	assert.Equal(t, float64(1), totals["deliveries"])

	rec = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/earnings", courier, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRestaurantCourierAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, u := range []*models.User{
		{ID: "c1", Name: "Ana", Role: models.RoleClient},
		{ID: "k1", Name: "Bruno", Role: models.RoleCourier},
		{ID: "k2", Name: "Carla", Role: models.RoleCourier},
	} {
		require.NoError(t, env.store.Users().Create(ctx, u))
	}
	owner := env.token(t, "owner1", models.RoleRestaurant)
	order := env.placeOrder(t, "c1")

	assert.Equal(t, http.StatusBadRequest, env.setStatus(t, order.ID, owner, map[string]any{"status": "READY", "courierId": "c1"}).Code)

	rec := env.setStatus(t, order.ID, owner, map[string]any{"status": "READY", "courierId": "k1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "k1", decode[models.Order](t, rec).CourierID)

	assert.Equal(t, http.StatusConflict, env.setStatus(t, order.ID, owner, map[string]any{"status": "READY", "courierId": "k2"}).Code)

	stored, err := env.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "k1", stored.CourierID)
}

func TestChatOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	order := env.placeOrder(t, "c1")
	client := env.token(t, "c1", models.RoleClient)
	path := "/api/chat/" + order.ID + "/customer-restaurant"

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, path, env.token(t, "c2", models.RoleClient), map[string]any{"text": "hi"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/chat/"+order.ID+"/sideways", client, map[string]any{"text": "hi"}).Code)

	for i := 0; i < 10; i++ {
		rec := env.do(t, http.MethodPost, path, client, map[string]any{"text": "hello"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := env.do(t, http.MethodPost, path, client, map[string]any{"text": "one more"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	body := decode[apiError](t, rec)
	assert.Equal(t, "rate_limited", body.Error)

	rec = env.do(t, http.MethodGet, path, env.token(t, "owner1", models.RoleRestaurant), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode[[]models.ChatMessage](t, rec)
	assert.Len(t, messages, 11) // opening system message plus ten

	rec = env.do(t, http.MethodPost, path+"/read", env.token(t, "owner1", models.RoleRestaurant), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 11, decode[map[string]int](t, rec)["updated"])

	rec = env.do(t, http.MethodGet, "/api/chat/channels/"+order.ID, client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ChatChannel](t, rec), 1)
}

func TestCustomerCourierChannelOnlyTakesQuickMessages(t *testing.T) {
	env := newTestEnv(t)
	order := env.placeOrder(t, "c1")
	require.Equal(t, http.StatusOK, env.setStatus(t, order.ID, env.token(t, "owner1", models.RoleRestaurant), map[string]any{"status": "READY"}).Code)
	require.Equal(t, http.StatusOK, env.setStatus(t, order.ID, env.token(t, "k1", models.RoleCourier), map[string]any{"status": "PICKED_UP"}).Code)

	courier := env.token(t, "k1", models.RoleCourier)
	path := "/api/chat/" + order.ID + "/CUSTOMER_COURIER"

	rec := env.do(t, http.MethodPost, path, courier, map[string]any{"text": "free text"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/chat/quick-messages?category=COURIER_TO_CUSTOMER", courier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	templates := decode[[]models.QuickMessage](t, rec)
	require.NotEmpty(t, templates)

	rec = env.do(t, http.MethodPost, path, courier, map[string]any{"isTemplate": true, "templateId": templates[0].ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, templates[0].Text, decode[models.ChatMessage](t, rec).Text)
}

func TestQuickMessageAdministration(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"text": "Leave it at the door", "category": "CUSTOMER_TO_COURIER", "order": 9}

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/chat/quick-messages", env.token(t, "c1", models.RoleClient), body).Code)

	rec := env.do(t, http.MethodPost, "/api/chat/quick-messages", env.token(t, "a1", models.RoleAdmin), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[models.QuickMessage](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/api/chat/quick-messages?category=BOGUS", env.token(t, "c1", models.RoleClient), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourierPresenceAndEarningsAccess(t *testing.T) {
	env := newTestEnv(t)
	courier := env.token(t, "k1", models.RoleCourier)

	rec := env.do(t, http.MethodPost, "/api/courier/status", courier, map[string]any{"isOnline": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.CourierStatus](t, rec).IsOnline)

	rec = env.do(t, http.MethodGet, "/api/courier/status?courierId=k1", env.token(t, "c1", models.RoleClient), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.CourierStatus](t, rec).IsOnline)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/courier/status", courier, map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/courier/location", courier, map[string]any{"lat": 91, "lng": 0}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/courier/location", courier, map[string]any{"lat": -23.5, "lng": -46.6}).Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/courier/earnings/k2", courier, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/courier/earnings/k1?period=decade", courier, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/courier/earnings/k2/history", env.token(t, "a1", models.RoleAdmin), nil).Code)
}

func TestRealtimeStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	token := env.token(t, "c1", models.RoleClient)

	forbidden, err := http.Get(ts.URL + "/api/realtime?topic=user-c2&access_token=" + token)
	require.NoError(t, err)
	forbidden.Body.Close()
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/realtime?topic=user-c1&access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": subscribed to user-c1\n", line)

	require.NoError(t, env.broadcaster.Publish(ctx, "user-c1", models.EventOrderCreated, map[string]string{"id": "o1"}))

	var event, data string
	for event == "" || data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	assert.Equal(t, models.EventOrderCreated, event)

	var envelope broadcast.Envelope
	require.NoError(t, json.Unmarshal([]byte(data), &envelope))
	assert.Equal(t, "user-c1", envelope.Topic)
	assert.JSONEq(t, `{"id":"o1"}`, string(envelope.Payload))
}
