package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-nz/hotel-service/internal/service"
)

func TestDiscountApply(t *testing.T) {
	ctx := context.Background()
	discounts := service.NewDiscountService(newRepos(t), nil)

	_, err := discounts.CreateDiscount(ctx, "SUMMER15", 15)
	require.NoError(t, err)

	total, discount, err := discounts.Apply(ctx, "SUMMER15", 100)
	require.NoError(t, err)
	assert.InDelta(t, 85.00, total, 1e-9)
	assert.Equal(t, "SUMMER15", discount.Code)

	total, discount, err = discounts.Apply(ctx, "BOGUS", 100)
	require.ErrorIs(t, err, service.ErrInvalidDiscountCode)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, discount)
	assert.InDelta(t, 100.00, total, 1e-9)
}

func TestDiscountAdministration(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	discounts := service.NewDiscountService(newRepos(t), clock.Now)

	last, err := discounts.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = discounts.CreateDiscount(ctx, "WELCOME", 10)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = discounts.CreateDiscount(ctx, "AUTUMN", 20)
	require.NoError(t, err)

	_, err = discounts.CreateDiscount(ctx, "AUTUMN", 5)
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = discounts.CreateDiscount(ctx, "  ", 5)
	require.ErrorIs(t, err, service.ErrValidation)

	last, err = discounts.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "AUTUMN", last.Code)

	require.NoError(t, discounts.UpdateDiscount(ctx, "WELCOME", 12.5))
	require.ErrorIs(t, discounts.UpdateDiscount(ctx, "NOPE", 1), service.ErrNotFound)

	total, _, err := discounts.Apply(ctx, "WELCOME", 200)
	require.NoError(t, err)
	assert.InDelta(t, 175.00, total, 1e-9)

	require.NoError(t, discounts.DeleteDiscount(ctx, "WELCOME"))
	require.ErrorIs(t, discounts.DeleteDiscount(ctx, "WELCOME"), service.ErrNotFound)

	list, err := discounts.GetDiscounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AUTUMN", list[0].Code)
}
