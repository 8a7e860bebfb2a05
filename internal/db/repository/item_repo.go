package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// ItemRepository handles catalog data access
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id int) (*models.Item, error) {
	query := r.db.Rebind(`
		SELECT item_id, name, price, pricing_rule
		FROM items
		WHERE item_id = ?
	`)

	var item models.Item
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", notFound(err))
	}

	return &item, nil
}

// List retrieves all items
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	query := `
		SELECT item_id, name, price, pricing_rule
		FROM items
		ORDER BY item_id ASC
	`

	var items []models.Item
	err := r.db.SelectContext(ctx, &items, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// Create inserts an item unless its ID is taken
func (r *ItemRepository) Create(ctx context.Context, item models.Item) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM items WHERE item_id = ?`), item.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("item %d: %w", item.ID, ErrConflict)
		}

		query := tx.Rebind(`
			INSERT INTO items (item_id, name, price, pricing_rule)
			VALUES (?, ?, ?, ?)
		`)
		if _, err := tx.ExecContext(ctx, query, item.ID, item.Name, item.Price, item.PricingRule); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		return nil
	})
}

// Update updates an item's name, base price and pricing rule
func (r *ItemRepository) Update(ctx context.Context, item models.Item) error {
	query := r.db.Rebind(`
		UPDATE items
		SET name = ?, price = ?, pricing_rule = ?
		WHERE item_id = ?
	`)

	result, err := r.db.ExecContext(ctx, query, item.Name, item.Price, item.PricingRule, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return checkAffected(result.RowsAffected())
}

// Delete deletes an item
func (r *ItemRepository) Delete(ctx context.Context, id int) error {
	query := r.db.Rebind(`
		DELETE FROM items
		WHERE item_id = ?
	`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return checkAffected(result.RowsAffected())
}
