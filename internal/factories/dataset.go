package factories

import (
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

// Dataset is a consistent set of fake entities ready to be stored.
type Dataset struct {
	Customers   []*models.User
	Couriers    []*models.User
	Owners      []*models.User
	Restaurants []*models.Restaurant
	Products    []*models.Product
}

func (d *Dataset) Users() []*models.User {
	users := make([]*models.User, 0, len(d.Customers)+len(d.Couriers)+len(d.Owners))
	users = append(users, d.Owners...)
	users = append(users, d.Customers...)
	return append(users, d.Couriers...)
}

// Generate builds cfg.Restaurants restaurants, each with its own owner and
// menu, plus customers and couriers. Equal seeds give equal datasets.
func Generate(cfg models.SeedConfig) *Dataset {
	Seed(cfg.Seed)
	if cfg.ReferenceDate.IsZero() {
		cfg.ReferenceDate = time.Now()
	}

	var (
		userFactory       = &UserFactory{}
		restaurantFactory = &RestaurantFactory{}
		productFactory    = &ProductFactory{}
		dataset           = &Dataset{}
	)

	for i := 0; i < cfg.Restaurants; i++ {
		owner := userFactory.CreateUser(models.RoleRestaurant, cfg.ReferenceDate)
		restaurant := restaurantFactory.CreateRestaurant(owner.ID)
		cuisine := generateRandomCuisine()
		for j := 0; j < cfg.ProductsPerMenu; j++ {
			dataset.Products = append(dataset.Products, productFactory.CreateProduct(restaurant, cuisine))
		}
		dataset.Owners = append(dataset.Owners, owner)
		dataset.Restaurants = append(dataset.Restaurants, restaurant)
	}
	for i := 0; i < cfg.Customers; i++ {
		dataset.Customers = append(dataset.Customers, userFactory.CreateUser(models.RoleClient, cfg.ReferenceDate))
	}
	for i := 0; i < cfg.Couriers; i++ {
		dataset.Couriers = append(dataset.Couriers, userFactory.CreateUser(models.RoleCourier, cfg.ReferenceDate))
	}
	return dataset
}
