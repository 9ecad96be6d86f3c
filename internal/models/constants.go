package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusPreparing  OrderStatus = "PREPARING"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusPickedUp   OrderStatus = "PICKED_UP"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusPickedUp,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type ChannelType string

const (
	ChannelCustomerRestaurant ChannelType = "CUSTOMER_RESTAURANT"
	ChannelCustomerCourier    ChannelType = "CUSTOMER_COURIER"
	ChannelRestaurantCourier  ChannelType = "RESTAURANT_COURIER"
)

func (t ChannelType) Valid() bool {
	switch t {
	case ChannelCustomerRestaurant, ChannelCustomerCourier, ChannelRestaurantCourier:
		return true
	}
	return false
}

// TemplateOnly reports whether the channel only accepts canned messages.
func (t ChannelType) TemplateOnly() bool {
	return t == ChannelCustomerCourier
}

type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleRestaurant Role = "RESTAURANT"
	RoleCourier    Role = "COURIER"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleRestaurant, RoleCourier, RoleAdmin:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentStripe         PaymentMethod = "STRIPE"
	PaymentPix            PaymentMethod = "PIX"
	PaymentCardOnDelivery PaymentMethod = "CARD_ON_DELIVERY"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentStripe, PaymentPix, PaymentCardOnDelivery:
		return true
	}
	return false
}

type QuickMessageCategory string

const (
	QuickCourierToCustomer QuickMessageCategory = "COURIER_TO_CUSTOMER"
	QuickCustomerToCourier QuickMessageCategory = "CUSTOMER_TO_COURIER"
)

func (c QuickMessageCategory) Valid() bool {
	return c == QuickCourierToCustomer || c == QuickCustomerToCourier
}

// Real-time event names.
const (
	EventOrderCreated       = "order-created"
	EventOrderStatusUpdated = "order-status-updated"
	EventChatMessage        = "chat-message"
	EventLocationUpdated    = "location-updated"
	EventEarningAdded       = "earning-added"
)

// Audit actions.
const (
	AuditCreateOrder       = "CREATE_ORDER"
	AuditUpdateOrderStatus = "UPDATE_ORDER_STATUS"
	AuditRegisterEarning   = "REGISTER_EARNING"
	AuditToggleOnline      = "TOGGLE_COURIER_STATUS"
)
