package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// ErrInvalidDiscountCode is returned by Apply for an unknown code. It also
// matches ErrNotFound.
var ErrInvalidDiscountCode = errors.New("invalid discount code")

// DiscountService handles discount code lookup and administration
type DiscountService struct {
	repos *repository.Repositories
	clock Clock
}

// NewDiscountService creates a new discount service
func NewDiscountService(repos *repository.Repositories, clock Clock) *DiscountService {
	if clock == nil {
		clock = SystemClock
	}
	return &DiscountService{
		repos: repos,
		clock: clock,
	}
}

// Apply reduces subtotal by the code's percentage. An unknown code returns
// the subtotal unchanged together with ErrInvalidDiscountCode.
func (s *DiscountService) Apply(ctx context.Context, code string, subtotal float64) (float64, *models.Discount, error) {
	discount, err := s.repos.Discount.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return subtotal, nil, fmt.Errorf("%w: %w", ErrInvalidDiscountCode, ErrNotFound)
	}
	if err != nil {
		return subtotal, nil, storeErr("apply discount", err)
	}

	return discount.Apply(subtotal), discount, nil
}

// GetDiscounts lists codes oldest first
func (s *DiscountService) GetDiscounts(ctx context.Context) ([]models.Discount, error) {
	discounts, err := s.repos.Discount.List(ctx)
	return discounts, storeErr("list discounts", err)
}

// Last returns the most recently added code, or nil when there are none
func (s *DiscountService) Last(ctx context.Context) (*models.Discount, error) {
	discounts, err := s.GetDiscounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, nil
	}
	return &discounts[len(discounts)-1], nil
}

// CreateDiscount adds a code. The percentage is stored as given.
func (s *DiscountService) CreateDiscount(ctx context.Context, code string, percentage float64) (*models.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("discount code", "must not be empty")
	}

	discount := models.Discount{
		Code:       code,
		Percentage: percentage,
		CreatedAt:  s.clock(),
	}

	if err := s.repos.Discount.Create(ctx, discount); err != nil {
		return nil, storeErr("create discount", err)
	}

	return &discount, nil
}

// UpdateDiscount changes a code's percentage
func (s *DiscountService) UpdateDiscount(ctx context.Context, code string, percentage float64) error {
	return storeErr("update discount", s.repos.Discount.UpdatePercentage(ctx, strings.TrimSpace(code), percentage))
}

// DeleteDiscount removes a code
func (s *DiscountService) DeleteDiscount(ctx context.Context, code string) error {
	return storeErr("delete discount", s.repos.Discount.Delete(ctx, strings.TrimSpace(code)))
}
