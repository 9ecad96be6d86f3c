package models

type Restaurant struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	Name          string         `json:"name"`
	Active        bool           `json:"active"`
	DeliveryFee   float64        `json:"deliveryFee"`
	OperatingDays []OperatingDay `json:"operatingDays"`
	Shifts        []Shift        `json:"shifts"`
}

type OperatingDay struct {
	RestaurantID string `json:"restaurantId"`
	DayOfWeek    int    `json:"dayOfWeek"` // 0 = Sunday
	Enabled      bool   `json:"enabled"`
}

// Shift is an intraday window. StartTime and EndTime are "HH:MM" and never span midnight.
type Shift struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

type Product struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Active       bool     `json:"active"`
	ShiftIDs     []string `json:"shiftIds,omitempty"` // empty means every shift
}

// AvailableIn reports whether the product may be ordered during the given shift.
// A product restricted to shifts is never available when no shift is running.
func (p *Product) AvailableIn(shiftID string) bool {
	if len(p.ShiftIDs) == 0 {
		return true
	}
	for _, id := range p.ShiftIDs {
		if id == shiftID {
			return true
		}
	}
	return false
}
