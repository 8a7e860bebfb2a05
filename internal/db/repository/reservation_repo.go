package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// ReservationRepository handles reservation data access
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// GetByRoom retrieves the reservation holding a room
func (r *ReservationRepository) GetByRoom(ctx context.Context, roomNumber string) (*models.Reservation, error) {
	query := r.db.Rebind(`
		SELECT room_number, floor, last_name, first_name
		FROM reservations
		WHERE room_number = ?
	`)

	var reservation models.Reservation
	err := r.db.GetContext(ctx, &reservation, query, roomNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", notFound(err))
	}

	return &reservation, nil
}

// ListByLastName retrieves reservations whose last name matches exactly, in
// a stable order so ordinal selection is repeatable
func (r *ReservationRepository) ListByLastName(ctx context.Context, lastName string) ([]models.Reservation, error) {
	query := r.db.Rebind(`
		SELECT room_number, floor, last_name, first_name
		FROM reservations
		WHERE last_name = ?
		ORDER BY room_number ASC
	`)

	var reservations []models.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by last name: %w", err)
	}

	return reservations, nil
}

// List retrieves all reservations
func (r *ReservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	query := `
		SELECT room_number, floor, last_name, first_name
		FROM reservations
		ORDER BY floor ASC, room_number ASC
	`

	var reservations []models.Reservation
	err := r.db.SelectContext(ctx, &reservations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	return reservations, nil
}

// Create inserts a reservation unless the room is already reserved
func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM reservations WHERE room_number = ?`), reservation.RoomNumber)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("room %s: %w", reservation.RoomNumber, ErrConflict)
		}

		query := tx.Rebind(`
			INSERT INTO reservations (room_number, floor, last_name, first_name)
			VALUES (?, ?, ?, ?)
		`)
		_, err = tx.ExecContext(ctx, query,
			reservation.RoomNumber,
			reservation.Floor,
			reservation.LastName,
			reservation.FirstName,
		)
		if err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		return nil
	})
}

// Update rewrites the reservation stored under roomNumber, including a move
// to a different room
func (r *ReservationRepository) Update(ctx context.Context, roomNumber string, reservation models.Reservation) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if reservation.RoomNumber != roomNumber {
			taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM reservations WHERE room_number = ?`), reservation.RoomNumber)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("room %s: %w", reservation.RoomNumber, ErrConflict)
			}
		}

		query := tx.Rebind(`
			UPDATE reservations
			SET room_number = ?, floor = ?, last_name = ?, first_name = ?
			WHERE room_number = ?
		`)
		result, err := tx.ExecContext(ctx, query,
			reservation.RoomNumber,
			reservation.Floor,
			reservation.LastName,
			reservation.FirstName,
			roomNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}

		return checkAffected(result.RowsAffected())
	})
}

// Delete deletes a reservation
func (r *ReservationRepository) Delete(ctx context.Context, roomNumber string) error {
	query := r.db.Rebind(`
		DELETE FROM reservations
		WHERE room_number = ?
	`)

	result, err := r.db.ExecContext(ctx, query, roomNumber)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	return checkAffected(result.RowsAffected())
}
