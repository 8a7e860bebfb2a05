package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// OrderRepository handles room-service order data access
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByID retrieves an order and its lines
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := r.db.Rebind(`
		SELECT id, room_number, subtotal, discount_code, discount_percentage, total, status, created_at
		FROM orders
		WHERE id = ?
	`)

	var order models.Order
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", notFound(err))
	}

	lines, err := r.GetOrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}
	order.Lines = lines

	return &order, nil
}

// GetOrderLines retrieves the lines of an order in entry order
func (r *OrderRepository) GetOrderLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	query := r.db.Rebind(`
		SELECT order_id, line_no, item_id, quantity, unit_price, redemption_code
		FROM order_lines
		WHERE order_id = ?
		ORDER BY line_no ASC
	`)

	var lines []models.OrderLine
	err := r.db.SelectContext(ctx, &lines, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}

	return lines, nil
}

// Create writes an order and all of its lines in one transaction
func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO orders (id, room_number, subtotal, discount_code, discount_percentage, total, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		_, err := tx.ExecContext(ctx, query,
			order.ID,
			order.RoomNumber,
			order.Subtotal,
			order.DiscountCode,
			order.DiscountPercentage,
			order.Total,
			order.Status,
			order.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		lineQuery := tx.Rebind(`
			INSERT INTO order_lines (order_id, line_no, item_id, quantity, unit_price, redemption_code)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		for _, line := range order.Lines {
			_, err = tx.ExecContext(ctx, lineQuery,
				order.ID,
				line.LineNo,
				line.ItemID,
				line.Quantity,
				line.UnitPrice,
				line.RedemptionCode,
			)
			if err != nil {
				return fmt.Errorf("failed to add line %d to order: %w", line.LineNo, err)
			}
		}

		return nil
	})
}

// UpdateStatus moves an order to a new status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	query := r.db.Rebind(`
		UPDATE orders
		SET status = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return checkAffected(result.RowsAffected())
}
