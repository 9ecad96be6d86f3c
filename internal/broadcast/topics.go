package broadcast

import "strings"

const CourierFeed = "courier-feed"

func UserTopic(userID string) string { return "user-" + userID }
func RestaurantTopic(restaurantID string) string { return "restaurant-" + restaurantID }
func OrderTopic(orderID string) string { return "order-" + orderID }
func ChatTopic(channelID string) string { return "chat-" + channelID }
func CourierTopic(courierID string) string { return "courier-" + courierID }

func CourierEarningsTopic(courierID string) string {
	return "courier-" + courierID + "-earnings"
}

// Namespaces a topic may belong to.
const (
	NamespaceUser            = "user"
	NamespaceRestaurant      = "restaurant"
	NamespaceOrder           = "order"
	NamespaceChat            = "chat"
	NamespaceCourier         = "courier"
	NamespaceCourierEarnings = "courier-earnings"
	NamespaceCourierFeed     = "courier-feed"
)

// SplitTopic returns the namespace and entity id of a topic. ok is false for
// topics outside the known namespaces.
func SplitTopic(topic string) (namespace, id string, ok bool) {
	if topic == CourierFeed {
		return NamespaceCourierFeed, "", true
	}
	if rest, found := strings.CutPrefix(topic, "courier-"); found {
		if courierID, isEarnings := strings.CutSuffix(rest, "-earnings"); isEarnings && courierID != "" {
			return NamespaceCourierEarnings, courierID, true
		}
		return NamespaceCourier, rest, rest != ""
	}
	namespace, id, found := strings.Cut(topic, "-")
	if !found || id == "" {
		return "", "", false
	}
	switch namespace {
	case NamespaceUser, NamespaceRestaurant, NamespaceOrder, NamespaceChat:
		return namespace, id, true
	}
	return "", "", false
}
