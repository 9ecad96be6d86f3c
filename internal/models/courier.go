package models

import "time"

type CourierEarning struct {
	ID          string    `json:"id"`
	CourierID   string    `json:"courierId"`
	OrderID     string    `json:"orderId"`
	Amount      float64   `json:"amount"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

type EarningsTotals struct {
	Total      float64 `json:"total"`
	Deliveries int     `json:"deliveries"`
	Average    float64 `json:"average"`
}

type CourierStatus struct {
	CourierID  string    `json:"courierId"`
	IsOnline   bool      `json:"isOnline"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type CourierLocation struct {
	CourierID string    `json:"courierId"`
	OrderID   string    `json:"orderId,omitempty"`
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}
