package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// DiscountRepository handles discount code data access
type DiscountRepository struct {
	db *sqlx.DB
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *sqlx.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// GetByCode retrieves a discount by its code
func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	query := r.db.Rebind(`
		SELECT code, percentage, created_at
		FROM discounts
		WHERE code = ?
	`)

	var discount models.Discount
	err := r.db.GetContext(ctx, &discount, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount: %w", notFound(err))
	}

	return &discount, nil
}

// List retrieves all discounts, oldest first
func (r *DiscountRepository) List(ctx context.Context) ([]models.Discount, error) {
	query := `
		SELECT code, percentage, created_at
		FROM discounts
		ORDER BY created_at ASC, code ASC
	`

	var discounts []models.Discount
	err := r.db.SelectContext(ctx, &discounts, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}

	return discounts, nil
}

// Create inserts a discount unless the code exists
func (r *DiscountRepository) Create(ctx context.Context, discount models.Discount) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM discounts WHERE code = ?`), discount.Code)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("discount %q: %w", discount.Code, ErrConflict)
		}

		query := tx.Rebind(`
			INSERT INTO discounts (code, percentage, created_at)
			VALUES (?, ?, ?)
		`)
		if _, err := tx.ExecContext(ctx, query, discount.Code, discount.Percentage, discount.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to create discount: %w", err)
		}

		return nil
	})
}

// UpdatePercentage changes a code's percentage
func (r *DiscountRepository) UpdatePercentage(ctx context.Context, code string, percentage float64) error {
	query := r.db.Rebind(`
		UPDATE discounts
		SET percentage = ?
		WHERE code = ?
	`)

	result, err := r.db.ExecContext(ctx, query, percentage, code)
	if err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}

	return checkAffected(result.RowsAffected())
}

// Delete deletes a discount
func (r *DiscountRepository) Delete(ctx context.Context, code string) error {
	query := r.db.Rebind(`
		DELETE FROM discounts
		WHERE code = ?
	`)

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to delete discount: %w", err)
	}

	return checkAffected(result.RowsAffected())
}
