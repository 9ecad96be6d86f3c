package models

import "time"

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   int64           `json:"orderNumber"`
	CustomerID    string          `json:"customerId"`
	RestaurantID  string          `json:"restaurantId"`
	CourierID     string          `json:"courierId,omitempty"` // empty until a courier is associated
	Items         []OrderItem     `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	DeliveryFee   float64         `json:"deliveryFee"`
	Discount      float64         `json:"discount"`
	Total         float64         `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        OrderStatus     `json:"status"`
	NeedsChange   bool            `json:"needsChange"`
	ChangeFor     *float64        `json:"changeFor,omitempty"`
	Timeline      []TimelineEntry `json:"timeline"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderItem carries the product price as it was when the order was placed.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

type TimelineEntry struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	ActorID   string      `json:"actorId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// HasParty reports whether userID is the customer or the assigned courier.
func (o *Order) HasParty(userID string) bool {
	return userID != "" && (o.CustomerID == userID || o.CourierID == userID)
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID   string
	RestaurantID string
	CourierID    string
	Status       OrderStatus
	Limit        int
}
