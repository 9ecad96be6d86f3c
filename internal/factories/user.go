package factories

import (
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

var (
	fake = faker.New()
	rng  = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Seed makes every factory deterministic from here on.
func Seed(seed int64) {
	fake = faker.NewWithSeed(rand.NewSource(seed))
	rng = rand.New(rand.NewSource(seed))
}

type UserFactory struct{}

// CreateUser builds a user who joined during the year before referenceDate.
func (uf *UserFactory) CreateUser(role models.Role, referenceDate time.Time) *models.User {
	name := fake.Person().Name()
	return &models.User{
		ID:       cuid.New(),
		Name:     name,
		Email:    uf.email(name),
		Phone:    fake.Phone().Number(),
		Role:     role,
		JoinDate: fake.Time().TimeBetween(referenceDate.AddDate(-1, 0, 0), referenceDate).UTC(),
	}
}

func (uf *UserFactory) email(name string) string {
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))
	local = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, local)
	// cuid suffix keeps emails unique across fakes with the same name
	return local + "." + cuid.Slug() + "@" + fake.Internet().Domain()
}
