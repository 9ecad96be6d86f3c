package orders

import "github.com/AlefLorenzo/DeliveryFoods/internal/models"

// allowedTransitions is only consulted when strict transitions are enabled.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:  {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:      {models.OrderStatusPickedUp, models.OrderStatusCancelled},
	models.OrderStatusPickedUp:   {models.OrderStatusDelivering, models.OrderStatusDelivered},
	models.OrderStatusDelivering: {models.OrderStatusDelivered},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// impliesPickup reports whether a courier moving the order to status takes it over.
func impliesPickup(status models.OrderStatus) bool {
	return status == models.OrderStatusPickedUp || status == models.OrderStatusDelivering
}
