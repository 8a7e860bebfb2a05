package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/testutil"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(testutil.NewStore(t))
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func seedAccount(t *testing.T, repos *repository.Repositories, username, password string, role models.Role) {
	t.Helper()
	require.NoError(t, repos.Account.Create(context.Background(), models.Account{
		Username:     username,
		PasswordHash: hashPassword(t, password),
		Role:         role,
	}))
}

func seedItem(t *testing.T, repos *repository.Repositories, id int, name string, price float64, rule models.PricingRule) {
	t.Helper()
	require.NoError(t, repos.Item.Create(context.Background(), models.Item{
		ID:          id,
		Name:        name,
		Price:       price,
		PricingRule: rule,
	}))
}

func seedReservation(t *testing.T, repos *repository.Repositories, room, lastName, firstName string) {
	t.Helper()
	floor, err := models.FloorOf(room)
	require.NoError(t, err)
	require.NoError(t, repos.Reservation.Create(context.Background(), models.Reservation{
		RoomNumber: room,
		Floor:      floor,
		LastName:   lastName,
		FirstName:  firstName,
	}))
}
