package factories

import (
	"time"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type shiftTemplate struct {
	name       string
	start, end string
}

var shiftTemplates = []shiftTemplate{
	{"Breakfast", "07:00", "10:30"},
	{"Lunch", "11:00", "15:00"},
	{"Dinner", "18:00", "23:00"},
}

type RestaurantFactory struct{}

func (rf *RestaurantFactory) CreateRestaurant(ownerID string) *models.Restaurant {
	id := cuid.New()
	restaurant := &models.Restaurant{
		ID:          id,
		OwnerID:     ownerID,
		Name:        fake.Company().Name(),
		Active:      rng.Float64() > 0.05,
		DeliveryFee: fake.Float64(2, 0, 12),
	}

	// roughly a third of the restaurants take one day off a week
	dayOff := -1
	if rng.Float64() < 0.3 {
		dayOff = rng.Intn(7)
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		restaurant.OperatingDays = append(restaurant.OperatingDays, models.OperatingDay{
			RestaurantID: id,
			DayOfWeek:    int(day),
			Enabled:      int(day) != dayOff,
		})
	}

	restaurant.Shifts = rf.createShifts(id)
	return restaurant
}

// createShifts picks lunch, dinner, both, or all three templates. Some
// restaurants run without shifts and are open all day.
func (rf *RestaurantFactory) createShifts(restaurantID string) []models.Shift {
	var templates []shiftTemplate
	switch rng.Intn(5) {
	case 0:
		return nil
	case 1:
		templates = shiftTemplates[1:2]
	case 2:
		templates = shiftTemplates[2:]
	case 3:
		templates = shiftTemplates[1:]
	default:
		templates = shiftTemplates
	}

	shifts := make([]models.Shift, 0, len(templates))
	for _, t := range templates {
		shifts = append(shifts, models.Shift{
			ID:           cuid.New(),
			RestaurantID: restaurantID,
			Name:         t.name,
			StartTime:    t.start,
			EndTime:      t.end,
		})
	}
	return shifts
}

func generateRandomCuisine() string {
	allCuisines := []string{"Italian", "Indian", "American", "Japanese", "Mexican", "Chinese", "Thai", "Greek", "French", "Mediterranean", "Brazilian", "Burgers"}
	return allCuisines[rng.Intn(len(allCuisines))]
}
