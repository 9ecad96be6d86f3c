package factories

import (
	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type ProductFactory struct{}

// CreateProduct builds an active product for the restaurant. One in five is
// restricted to a single shift when the restaurant has any.
func (pf *ProductFactory) CreateProduct(restaurant *models.Restaurant, cuisine string) *models.Product {
	product := &models.Product{
		ID:           cuid.New(),
		RestaurantID: restaurant.ID,
		Name:         generateRandomProductName(cuisine),
		Description:  fake.Lorem().Sentence(10),
		Price:        fake.Float64(2, 5, 80),
		Active:       rng.Float64() > 0.1,
	}
	if len(restaurant.Shifts) > 0 && rng.Float64() < 0.2 {
		shift := restaurant.Shifts[rng.Intn(len(restaurant.Shifts))]
		product.ShiftIDs = []string{shift.ID}
	}
	return product
}

func generateRandomProductName(cuisine string) string {
	items := map[string][]string{
		"Italian":       {"Margherita Pizza", "Spaghetti Carbonara", "Lasagna", "Tiramisu"},
		"Indian":        {"Chicken Tikka Masala", "Vegetable Curry", "Naan Bread", "Biryani"},
		"American":      {"Cheeseburger", "Hot Dog", "BBQ Ribs", "Apple Pie"},
		"Japanese":      {"Sushi Roll", "Ramen", "Tempura", "Miso Soup"},
		"Mexican":       {"Tacos", "Burrito", "Guacamole", "Quesadilla"},
		"Chinese":       {"Kung Pao Chicken", "Fried Rice", "Dumplings", "Mapo Tofu"},
		"Thai":          {"Pad Thai", "Green Curry", "Tom Yum Soup", "Mango Sticky Rice"},
		"Greek":         {"Gyros", "Greek Salad", "Moussaka", "Baklava"},
		"French":        {"Coq au Vin", "Beef Bourguignon", "Ratatouille", "Crème Brûlée"},
		"Mediterranean": {"Falafel", "Hummus", "Tabbouleh", "Grilled Halloumi"},
		"Brazilian":     {"Feijoada", "Pão de Queijo", "Coxinha", "Moqueca"},
		"Burgers":       {"Classic Cheeseburger", "Veggie Burger", "BBQ Bacon Burger", "Mushroom Swiss Burger"},
	}
	if names, ok := items[cuisine]; ok {
		return names[rng.Intn(len(names))]
	}
	return "Special of the Day"
}
