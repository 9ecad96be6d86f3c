package api

import (
	"context"
	"errors"
	"slices"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

var (
	restaurantStatuses = []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusCancelled,
	}
	courierStatuses = []models.OrderStatus{
		models.OrderStatusPickedUp,
		models.OrderStatusDelivering,
		models.OrderStatusDelivered,
	}
)

func (s *Server) ownsRestaurant(ctx context.Context, actor models.Actor, restaurantID string) (bool, error) {
	restaurant, err := s.store.Restaurants().GetByID(ctx, restaurantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return restaurant.OwnerID == actor.ID, nil
}

// canViewOrder: admins, the customer, the restaurant owner, the assigned
// courier, and any courier while the order waits unassigned in the feed.
func (s *Server) canViewOrder(ctx context.Context, actor models.Actor, order *models.Order) error {
	allowed := false
	switch actor.Role {
	case models.RoleAdmin:
		allowed = true
	case models.RoleClient:
		allowed = order.CustomerID == actor.ID
	case models.RoleCourier:
		allowed = order.CourierID == actor.ID ||
			(order.CourierID == "" && order.Status == models.OrderStatusReady)
	case models.RoleRestaurant:
		owns, err := s.ownsRestaurant(ctx, actor, order.RestaurantID)
		if err != nil {
			return err
		}
		allowed = owns
	}
	if !allowed {
		return apperrors.Authorization("you cannot access order %s", order.ID)
	}
	return nil
}

// authorizeTransition gates status changes per role. The order manager itself
// accepts any transition.
func (s *Server) authorizeTransition(ctx context.Context, actor models.Actor, order *models.Order, status models.OrderStatus, courierID string) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil

	case models.RoleClient:
		if order.CustomerID != actor.ID {
			return apperrors.Authorization("you cannot update order %s", order.ID)
		}
		if courierID != "" {
			return apperrors.Authorization("customers cannot assign couriers")
		}
		switch status {
		case models.OrderStatusCancelled:
			if order.Status != models.OrderStatusPending {
				return apperrors.Conflict("orders can only be cancelled while %s", models.OrderStatusPending)
			}
			return nil
		case models.OrderStatusDelivered:
			return nil
		}
		return apperrors.Authorization("customers cannot set status %s", status)

	case models.RoleRestaurant:
		owns, err := s.ownsRestaurant(ctx, actor, order.RestaurantID)
		if err != nil {
			return err
		}
		if !owns {
			return apperrors.Authorization("you cannot update order %s", order.ID)
		}
		if !slices.Contains(restaurantStatuses, status) {
			return apperrors.Authorization("restaurants cannot set status %s", status)
		}
		return nil

	case models.RoleCourier:
		if !slices.Contains(courierStatuses, status) {
			return apperrors.Authorization("couriers cannot set status %s", status)
		}
		if courierID != "" && courierID != actor.ID {
			return apperrors.Authorization("couriers can only assign themselves")
		}
		takesOver := order.CourierID == "" && order.Status == models.OrderStatusReady
		if order.CourierID != actor.ID && !takesOver {
			return apperrors.Authorization("order %s is not available to you", order.ID)
		}
		return nil
	}
	return apperrors.Authorization("unknown role %q", actor.Role)
}

func selfOrAdmin(actor models.Actor, userID string) error {
	if actor.Role == models.RoleAdmin || actor.ID == userID {
		return nil
	}
	return apperrors.Authorization("you can only access your own data")
}

// authorizeTopic decides who may subscribe to a real-time topic.
func (s *Server) authorizeTopic(ctx context.Context, actor models.Actor, topic string) error {
	namespace, id, ok := broadcast.SplitTopic(topic)
	if !ok {
		return apperrors.Validation("unknown topic %q", topic)
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	denied := apperrors.Authorization("you cannot subscribe to %s", topic)

	switch namespace {
	case broadcast.NamespaceUser, broadcast.NamespaceCourierEarnings:
		if id != actor.ID {
			return denied
		}
	case broadcast.NamespaceCourierFeed:
		if actor.Role != models.RoleCourier {
			return denied
		}
	case broadcast.NamespaceRestaurant:
		owns, err := s.ownsRestaurant(ctx, actor, id)
		if err != nil {
			return err
		}
		if !owns {
			return denied
		}
	case broadcast.NamespaceOrder:
		order, err := s.store.Orders().GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("order %s not found", id)
		}
		if err != nil {
			return apperrors.Internal(err)
		}
		if err := s.canViewOrder(ctx, actor, order); err != nil {
			return denied
		}
	case broadcast.NamespaceChat:
		channel, err := s.store.Chat().GetChannelByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("chat channel %s not found", id)
		}
		if err != nil {
			return apperrors.Internal(err)
		}
		if !channel.Participants.Has(actor.ID) {
			return denied
		}
	case broadcast.NamespaceCourier:
		if id == actor.ID {
			return nil
		}
		// customers may follow the courier carrying one of their open orders
		assigned, err := s.store.Orders().List(ctx, models.OrderFilter{CourierID: id, CustomerID: actor.ID})
		if err != nil {
			return apperrors.Internal(err)
		}
		for _, order := range assigned {
			if !order.Status.Terminal() {
				return nil
			}
		}
		return denied
	}
	return nil
}
