package availability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

const (
	MessageNotFound    = "Restaurant not found"
	MessageUnavailable = "Availability unavailable"
	MessageInactive    = "Temporarily closed"
	MessageClosedToday = "Closed today"
	MessageClosedLater = "Closed for today"
	MessageOpen        = "Open"
)

type Status struct {
	IsOpen       bool          `json:"isOpen"`
	Message      string        `json:"message"`
	CurrentShift *models.Shift `json:"currentShift,omitempty"`
	NextOpenAt   *time.Time    `json:"nextOpenAt,omitempty"`
	NextOpen     string        `json:"nextOpen,omitempty"` // HH:MM
}

// ShiftID is empty when the restaurant runs without shifts.
func (s Status) ShiftID() string {
	if s.CurrentShift == nil {
		return ""
	}
	return s.CurrentShift.ID
}

type Evaluator struct {
	restaurants repositories.RestaurantRepository
}

func NewEvaluator(restaurants repositories.RestaurantRepository) *Evaluator {
	return &Evaluator{restaurants: restaurants}
}

// Evaluate never returns an error: lookup failures are reported as a closed status.
func (e *Evaluator) Evaluate(ctx context.Context, restaurantID string, now time.Time) Status {
	restaurant, err := e.restaurants.GetByID(ctx, restaurantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return Status{Message: MessageNotFound}
	}
	if err != nil {
		log.Printf("[availability] failed to load restaurant %s: %v", restaurantID, err)
		return Status{Message: MessageUnavailable}
	}
	return EvaluateRestaurant(restaurant, now)
}

// EvaluateRestaurant applies the opening rules to an already loaded restaurant.
// Shift bounds are compared as HH:MM strings, so shifts crossing midnight never match.
func EvaluateRestaurant(restaurant *models.Restaurant, now time.Time) Status {
	if !restaurant.Active {
		return Status{Message: MessageInactive}
	}

	if len(restaurant.OperatingDays) > 0 {
		today := int(now.Weekday())
		open := false
		for _, day := range restaurant.OperatingDays {
			if day.DayOfWeek == today {
				open = day.Enabled
				break
			}
		}
		if !open {
			return Status{Message: MessageClosedToday}
		}
	}

	if len(restaurant.Shifts) == 0 {
		return Status{IsOpen: true, Message: MessageOpen}
	}

	clock := now.Format("15:04")
	for _, shift := range restaurant.Shifts {
		if clock >= shift.StartTime && clock <= shift.EndTime {
			current := shift
			return Status{
				IsOpen:       true,
				Message:      fmt.Sprintf("Open for %s", shift.Name),
				CurrentShift: &current,
			}
		}
	}

	shifts := make([]models.Shift, len(restaurant.Shifts))
	copy(shifts, restaurant.Shifts)
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].StartTime < shifts[j].StartTime })

	for _, shift := range shifts {
		if shift.StartTime > clock {
			nextOpenAt, err := atClock(now, shift.StartTime)
			if err != nil {
				log.Printf("[availability] shift %s has invalid start time %q: %v", shift.ID, shift.StartTime, err)
				continue
			}
			return Status{
				Message:    fmt.Sprintf("Closed - opens at %s (%s)", shift.StartTime, shift.Name),
				NextOpenAt: &nextOpenAt,
				NextOpen:   shift.StartTime,
			}
		}
	}
	return Status{Message: MessageClosedLater}
}

// atClock returns now's date at the given HH:MM in now's location.
func atClock(now time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := now.Date()
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}
