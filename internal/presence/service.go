package presence

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/audit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// Service tracks whether couriers are online and relays their positions.
// The relational store is authoritative; the presence Store takes over while it fails.
type Service struct {
	statuses  repositories.CourierStatusRepository
	orders    repositories.OrderRepository
	fallback  Store
	publisher broadcast.Publisher
	audit     *audit.Logger
	now       func() time.Time
}

func NewService(statuses repositories.CourierStatusRepository, orders repositories.OrderRepository, fallback Store, publisher broadcast.Publisher, auditLog *audit.Logger) *Service {
	return &Service{
		statuses:  statuses,
		orders:    orders,
		fallback:  fallback,
		publisher: publisher,
		audit:     auditLog,
		now:       time.Now,
	}
}

func (s *Service) SetOnline(ctx context.Context, courierID string, online bool) (*models.CourierStatus, error) {
	status := models.CourierStatus{
		CourierID:  courierID,
		IsOnline:   online,
		LastUpdate: s.now().UTC(),
	}

	if err := s.statuses.Upsert(ctx, &status); err != nil {
		log.Printf("[presence] store unavailable for courier %s, using fallback: %v", courierID, err)
		if ferr := s.fallback.Set(ctx, status); ferr != nil {
			return nil, apperrors.Internal(errors.Join(err, ferr))
		}
	}
	s.audit.Record(ctx, courierID, models.AuditToggleOnline, "courier:"+courierID, map[string]any{"isOnline": online})
	return &status, nil
}

// Get returns the courier status. A courier never seen is reported offline.
func (s *Service) Get(ctx context.Context, courierID string) (*models.CourierStatus, error) {
	status, err := s.statuses.Get(ctx, courierID)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("[presence] store unavailable reading courier %s: %v", courierID, err)
	}

	status, ferr := s.fallback.Get(ctx, courierID)
	switch {
	case ferr == nil:
		return status, nil
	case errors.Is(ferr, ErrUnknownCourier):
		return &models.CourierStatus{CourierID: courierID}, nil
	default:
		return nil, apperrors.Internal(errors.Join(err, ferr))
	}
}

// UpdateLocation broadcasts the courier position on the courier topic and,
// when an order is given, on that order's topic as well.
func (s *Service) UpdateLocation(ctx context.Context, courierID, orderID string, location models.Location) (*models.CourierLocation, error) {
	if err := location.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	if orderID != "" {
		order, err := s.orders.GetByID(ctx, orderID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("order %s not found", orderID)
		}
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if order.CourierID != courierID {
			return nil, apperrors.Authorization("order %s is not assigned to you", orderID)
		}
	}

	update := &models.CourierLocation{
		CourierID: courierID,
		OrderID:   orderID,
		Location:  location,
		Timestamp: s.now().UTC(),
	}
	broadcast.Notify(ctx, s.publisher, broadcast.CourierTopic(courierID), models.EventLocationUpdated, update)
	if orderID != "" {
		broadcast.Notify(ctx, s.publisher, broadcast.OrderTopic(orderID), models.EventLocationUpdated, update)
	}
	return update, nil
}
