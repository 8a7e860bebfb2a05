package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	Account     *AccountRepository
	Reservation *ReservationRepository
	Item        *ItemRepository
	Discount    *DiscountRepository
	Order       *OrderRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(store *db.Store) *Repositories {
	return &Repositories{
		Account:     NewAccountRepository(store.DB),
		Reservation: NewReservationRepository(store.DB),
		Item:        NewItemRepository(store.DB),
		Discount:    NewDiscountRepository(store.DB),
		Order:       NewOrderRepository(store.DB),
	}
}

// exists reports whether query returns a row. The query must select a
// single constant column.
func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return found, nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(tx)
}

func checkAffected(rowsAffected int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
