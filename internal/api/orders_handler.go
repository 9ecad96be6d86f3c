package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/orders"
)

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	RestaurantID  string             `json:"restaurantId" validate:"required"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string             `json:"paymentMethod" validate:"required,oneof=STRIPE PIX CARD_ON_DELIVERY"`
	Discount      float64            `json:"discount" validate:"min=0"`
	NeedsChange   bool               `json:"needsChange"`
	ChangeFor     *float64           `json:"changeFor" validate:"omitempty,gt=0"`
}

type updateStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	Notes     string `json:"notes" validate:"max=500"`
	CourierID string `json:"courierId"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.orders.CreateOrder(r.Context(), orders.CreateOrderInput{
		CustomerID:    actorFrom(r.Context()).ID,
		RestaurantID:  req.RestaurantID,
		Items:         items,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Discount:      req.Discount,
		NeedsChange:   req.NeedsChange,
		ChangeFor:     req.ChangeFor,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}
	status := models.OrderStatus(r.URL.Query().Get("status"))

	list, err := s.orders.ListForActor(r.Context(), actorFrom(r.Context()), status, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.canViewOrder(r.Context(), actorFrom(r.Context()), order); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()
	actor := actorFrom(ctx)
	status := models.OrderStatus(req.Status)

	order, err := s.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.authorizeTransition(ctx, actor, order, status, req.CourierID); err != nil {
		writeAppError(w, err)
		return
	}

	updated, err := s.orders.UpdateStatus(ctx, orders.UpdateStatusInput{
		OrderID:   order.ID,
		Status:    status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Notes:     req.Notes,
		CourierID: req.CourierID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) registerEarning(w http.ResponseWriter, r *http.Request) {
	earning, err := s.ledger.RegisterEarning(r.Context(), chi.URLParam(r, "id"), actorFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, earning)
}
