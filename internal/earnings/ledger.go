package earnings

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/audit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// Periods accepted by Period.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// EarningAdded is the payload of the earning-added event.
type EarningAdded struct {
	Earning *models.CourierEarning `json:"earning"`
	Totals  models.EarningsTotals  `json:"totals"`
}

// Ledger credits couriers once per delivered order.
type Ledger struct {
	orders    repositories.OrderRepository
	earnings  repositories.EarningsRepository
	publisher broadcast.Publisher
	audit     *audit.Logger
	now       func() time.Time
}

func NewLedger(orders repositories.OrderRepository, earnings repositories.EarningsRepository, publisher broadcast.Publisher, auditLog *audit.Logger) *Ledger {
	return &Ledger{
		orders:    orders,
		earnings:  earnings,
		publisher: publisher,
		audit:     auditLog,
		now:       time.Now,
	}
}

// RegisterEarning records the order's delivery fee for its courier. A second
// registration for the same order is rejected, never ignored.
func (l *Ledger) RegisterEarning(ctx context.Context, orderID, courierID string) (*models.CourierEarning, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if order.CourierID == "" || order.CourierID != courierID {
		return nil, apperrors.Authorization("order %s is not assigned to courier %s", orderID, courierID)
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, apperrors.Conflict("order %s is %s, earnings are only registered after delivery", orderID, order.Status)
	}

	_, err = l.earnings.GetByOrderID(ctx, orderID)
	if err == nil {
		return nil, apperrors.Conflict("duplicate earning: order %s was already credited", orderID)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	earning := &models.CourierEarning{
		ID:          cuid.New(),
		CourierID:   courierID,
		OrderID:     orderID,
		Amount:      order.DeliveryFee,
		ConfirmedAt: l.now().UTC(),
	}
	if err := l.earnings.Create(ctx, earning); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("duplicate earning: order %s was already credited", orderID)
		}
		return nil, apperrors.Internal(err)
	}

	totals, err := l.Totals(ctx, courierID)
	if err == nil {
		broadcast.Notify(ctx, l.publisher, broadcast.CourierEarningsTopic(courierID), models.EventEarningAdded, EarningAdded{
			Earning: earning,
			Totals:  totals,
		})
	} else {
		log.Printf("[earnings] failed to load totals for courier %s, skipping %s event: %v", courierID, models.EventEarningAdded, err)
	}
	l.audit.Record(ctx, courierID, models.AuditRegisterEarning, audit.OrderResource(orderID), map[string]any{
		"amount": earning.Amount,
	})
	return earning, nil
}

func (l *Ledger) Totals(ctx context.Context, courierID string) (models.EarningsTotals, error) {
	return l.ByPeriod(ctx, courierID, time.Time{}, time.Time{})
}

// ByPeriod sums the entries confirmed in [from, to). Zero bounds are open.
func (l *Ledger) ByPeriod(ctx context.Context, courierID string, from, to time.Time) (models.EarningsTotals, error) {
	totals, err := l.earnings.Totals(ctx, courierID, from, to)
	if err != nil {
		return models.EarningsTotals{}, apperrors.Internal(err)
	}
	totals.Total = roundCents(totals.Total)
	if totals.Deliveries > 0 {
		totals.Average = roundCents(totals.Total / float64(totals.Deliveries))
	}
	return totals, nil
}

func (l *Ledger) Today(ctx context.Context, courierID string) (models.EarningsTotals, error) {
	from, to := Bounds(PeriodToday, l.now())
	return l.ByPeriod(ctx, courierID, from, to)
}

func (l *Ledger) Week(ctx context.Context, courierID string) (models.EarningsTotals, error) {
	from, to := Bounds(PeriodWeek, l.now())
	return l.ByPeriod(ctx, courierID, from, to)
}

func (l *Ledger) Month(ctx context.Context, courierID string) (models.EarningsTotals, error) {
	from, to := Bounds(PeriodMonth, l.now())
	return l.ByPeriod(ctx, courierID, from, to)
}

// Period resolves one of today, week, month or all.
func (l *Ledger) Period(ctx context.Context, courierID, period string) (models.EarningsTotals, error) {
	switch period {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll, "":
		from, to := Bounds(period, l.now())
		return l.ByPeriod(ctx, courierID, from, to)
	default:
		return models.EarningsTotals{}, apperrors.Validation("unknown period %q", period)
	}
}

// History returns the newest entries first.
func (l *Ledger) History(ctx context.Context, courierID string, limit int) ([]*models.CourierEarning, error) {
	entries, err := l.earnings.ListByCourier(ctx, courierID, time.Time{}, time.Time{}, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if entries == nil {
		entries = []*models.CourierEarning{}
	}
	return entries, nil
}

// Bounds returns the [from, to) window of a period in now's location. Weeks start on Sunday.
func Bounds(period string, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodToday:
		return day, day.AddDate(0, 0, 1)
	case PeriodWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return time.Time{}, time.Time{}
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
